// Package client implements the interactive console client for the hub's
// TCP control protocol.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/protocol"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

// ErrAuthRejected is returned when the hub refuses the supplied credentials.
var ErrAuthRejected = errors.New("authentication rejected")

// responseTimeout bounds the wait for the reply to one request. The hub
// answers every request in order, so a missing reply means the session died.
const responseTimeout = 5 * time.Second

// Client is one authenticated control session. Requests are issued from the
// console loop; a background reader splits incoming frames into direct
// responses and unsolicited telemetry.
type Client struct {
	conn  net.Conn
	token string
	role  model.Role

	out       io.Writer
	responses chan *protocol.Frame
	readErr   chan error
}

// Dial connects and authenticates. The returned client is ready to issue
// requests; its reader goroutine is already draining telemetry.
func Dial(ctx context.Context, addr, username, password string, out io.Writer) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c := &Client{
		conn:      conn,
		out:       out,
		responses: make(chan *protocol.Frame, 1),
		readErr:   make(chan error, 1),
	}
	go c.readLoop()

	if err := c.login(username, password); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Role returns the role granted at login.
func (c *Client) Role() model.Role {
	return c.role
}

func (c *Client) login(username, password string) error {
	resp, err := c.roundTrip(protocol.NewAuthRequest(username, password))
	if err != nil {
		return err
	}
	if resp.Type != protocol.TypeAuthResponse {
		return fmt.Errorf("unexpected reply to login: %s", resp.Type)
	}

	role, status := protocol.SplitPair(resp.Data)
	if role == "ERROR" || status != "200" {
		return ErrAuthRejected
	}

	c.token = resp.Token
	c.role = model.Role(role)
	return nil
}

// SendCommand issues one control command and returns the hub's status line.
func (c *Client) SendCommand(command model.CommandType, params string) (string, error) {
	resp, err := c.roundTrip(protocol.NewCommandRequest(c.token, command, params))
	if err != nil {
		return "", err
	}
	return resp.Data, nil
}

// ListUsers fetches the usernames of every authenticated session.
func (c *Client) ListUsers() ([]string, error) {
	resp, err := c.roundTrip(protocol.NewListUsersRequest(c.token))
	if err != nil {
		return nil, err
	}
	if resp.Type == protocol.TypeError {
		return nil, fmt.Errorf("request refused: %s", resp.Data)
	}

	count, csv := protocol.SplitPair(resp.Data)
	if count == "0" || csv == "" {
		return nil, nil
	}
	return strings.Split(csv, ","), nil
}

func (c *Client) roundTrip(frame *protocol.Frame) (*protocol.Frame, error) {
	if _, err := io.WriteString(c.conn, frame.Encode()); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	select {
	case resp := <-c.responses:
		return resp, nil
	case err := <-c.readErr:
		return nil, err
	case <-time.After(responseTimeout):
		return nil, errors.New("timed out waiting for response")
	}
}

// readLoop splits the incoming stream: telemetry renders immediately, every
// other frame is the answer to the request in flight.
func (c *Client) readLoop() {
	r := bufio.NewReader(c.conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			c.readErr <- fmt.Errorf("connection lost: %w", err)
			return
		}

		frame, err := protocol.Parse(strings.TrimSuffix(line, protocol.Delimiter))
		if err != nil {
			log.Warn("Discarding unparseable frame", "line", line)
			continue
		}

		if frame.Type == protocol.TypeTelemetry {
			c.renderTelemetry(frame)
			continue
		}
		c.responses <- frame
	}
}
