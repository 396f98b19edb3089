package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/protocol"
)

// fakeHub runs handler for the first accepted connection and returns the
// dial address.
func fakeHub(t *testing.T, handler func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()
	return ln.Addr().String()
}

func readRequest(t *testing.T, r *bufio.Reader) *protocol.Frame {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Errorf("server read error: %v", err)
		return nil
	}
	frame, err := protocol.Parse(strings.TrimSuffix(line, protocol.Delimiter))
	if err != nil {
		t.Errorf("server parse error: %v", err)
		return nil
	}
	return frame
}

func reply(conn net.Conn, frame *protocol.Frame) {
	_, _ = io.WriteString(conn, frame.Encode())
}

func TestDialAuthenticates(t *testing.T) {
	addr := fakeHub(t, func(conn net.Conn) {
		r := bufio.NewReader(conn)
		req := readRequest(t, r)
		if req == nil {
			return
		}
		if req.Type != protocol.TypeAuthRequest {
			t.Errorf("first frame type = %s, want %s", req.Type, protocol.TypeAuthRequest)
		}
		if req.Data != "admin:admin123" {
			t.Errorf("auth data = %q, want %q", req.Data, "admin:admin123")
		}
		reply(conn, protocol.NewAuthOK("TOKENTOKENTOKENTOKENTOKENTOKEN12", model.RoleAdmin))

		// Keep the connection open until the client is done.
		_, _ = r.ReadString('\n')
	})

	c, err := Dial(context.Background(), addr, "admin", "admin123", io.Discard)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer c.Close()

	if c.Role() != model.RoleAdmin {
		t.Errorf("role = %v, want %v", c.Role(), model.RoleAdmin)
	}
}

func TestDialRejected(t *testing.T) {
	addr := fakeHub(t, func(conn net.Conn) {
		r := bufio.NewReader(conn)
		if readRequest(t, r) == nil {
			return
		}
		reply(conn, protocol.NewAuthRejected())
	})

	_, err := Dial(context.Background(), addr, "admin", "wrong", io.Discard)
	if !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("error = %v, want ErrAuthRejected", err)
	}
}

func TestSendCommandRoutesAroundTelemetry(t *testing.T) {
	var rendered bytes.Buffer

	addr := fakeHub(t, func(conn net.Conn) {
		r := bufio.NewReader(conn)
		if readRequest(t, r) == nil {
			return
		}
		reply(conn, protocol.NewAuthOK("TOKENTOKENTOKENTOKENTOKENTOKEN12", model.RoleAdmin))

		req := readRequest(t, r)
		if req == nil {
			return
		}
		if req.Type != protocol.TypeCommandRequest {
			t.Errorf("frame type = %s, want %s", req.Type, protocol.TypeCommandRequest)
		}

		// Telemetry may land between a request and its response; the
		// client must not mistake it for the reply.
		reply(conn, protocol.NewTelemetry(model.VehicleState{
			Battery: 100, Temperature: 22.5, Direction: model.DirectionNorth,
		}))
		reply(conn, protocol.NewCommandOK())

		_, _ = r.ReadString('\n')
	})

	c, err := Dial(context.Background(), addr, "admin", "admin123", &rendered)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer c.Close()

	status, err := c.SendCommand(model.CommandSpeedUp, "10")
	if err != nil {
		t.Fatalf("SendCommand error: %v", err)
	}
	if want := "200:" + protocol.MsgCommandProcessed; status != want {
		t.Errorf("status = %q, want %q", status, want)
	}
}

func TestListUsers(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"two users", "2:admin,observer", []string{"admin", "observer"}},
		{"empty", "0:", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := fakeHub(t, func(conn net.Conn) {
				r := bufio.NewReader(conn)
				if readRequest(t, r) == nil {
					return
				}
				reply(conn, protocol.NewAuthOK("TOKENTOKENTOKENTOKENTOKENTOKEN12", model.RoleAdmin))

				if readRequest(t, r) == nil {
					return
				}
				reply(conn, &protocol.Frame{
					Type:     protocol.TypeListUsersResponse,
					Token:    "NULL",
					Data:     tt.data,
					Checksum: protocol.ChecksumPlaceholder,
				})

				_, _ = r.ReadString('\n')
			})

			c, err := Dial(context.Background(), addr, "admin", "admin123", io.Discard)
			if err != nil {
				t.Fatalf("Dial error: %v", err)
			}
			defer c.Close()

			got, err := c.ListUsers()
			if err != nil {
				t.Fatalf("ListUsers error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("users = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("users[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
