package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/auth"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/service"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/protocol"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/vehicle"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
	"github.com/vehiclehub-io/vehiclehub/pkg/token"
)

// testClient drives one session handler over an in-memory pipe.
type testClient struct {
	conn net.Conn
	r    *bufio.Reader
	done chan struct{}
}

func startSession(t *testing.T) (*testClient, *vehicle.Store, *registry.Registry) {
	t.Helper()

	creds, err := auth.NewStore(options.NewAuthOptions())
	if err != nil {
		t.Fatalf("auth.NewStore error: %v", err)
	}
	store := vehicle.NewStore(6.2442, -75.5812, 22.5)
	sessions := registry.New(4)
	svc := service.New(creds, store, sessions)

	opts := options.NewTcpOptions()
	opts.WriteTimeout = time.Second

	server, client := net.Pipe()
	slot, err := sessions.Reserve(server, "pipe")
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	sess := newSession(slot, server, "pipe", opts, svc, sessions)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.run(ctx)
	}()

	c := &testClient{conn: client, r: bufio.NewReader(client), done: done}
	t.Cleanup(func() {
		_ = client.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("session handler did not stop")
		}
		cancel()
	})
	return c, store, sessions
}

func (c *testClient) sendRaw(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(c.conn, line); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

func (c *testClient) recv(t *testing.T) *protocol.Frame {
	t.Helper()
	line, err := c.r.ReadString('\n')
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	frame, err := protocol.Parse(strings.TrimSuffix(line, protocol.Delimiter))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", line, err)
	}
	return frame
}

func (c *testClient) roundTrip(t *testing.T, frame *protocol.Frame) *protocol.Frame {
	t.Helper()
	c.sendRaw(t, frame.Encode())
	return c.recv(t)
}

// login authenticates and returns the issued token.
func (c *testClient) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := c.roundTrip(t, protocol.NewAuthRequest(username, password))
	if resp.Type != protocol.TypeAuthResponse {
		t.Fatalf("response type = %s, want %s", resp.Type, protocol.TypeAuthResponse)
	}
	if strings.HasPrefix(resp.Data, "ERROR") {
		t.Fatalf("authentication rejected: %s", resp.Data)
	}
	return resp.Token
}

func TestSessionAuthFlow(t *testing.T) {
	c, _, sessions := startSession(t)

	resp := c.roundTrip(t, protocol.NewAuthRequest("admin", "admin123"))

	if resp.Type != protocol.TypeAuthResponse {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeAuthResponse)
	}
	if resp.Data != "ADMIN:200" {
		t.Errorf("data = %q, want %q", resp.Data, "ADMIN:200")
	}
	if len(resp.Token) != token.Length {
		t.Errorf("token length = %d, want %d", len(resp.Token), token.Length)
	}

	users := sessions.Usernames()
	if len(users) != 1 || users[0] != "admin" {
		t.Errorf("registry usernames = %v, want [admin]", users)
	}
}

func TestSessionAuthRejected(t *testing.T) {
	c, _, sessions := startSession(t)

	resp := c.roundTrip(t, protocol.NewAuthRequest("admin", "wrong"))

	if resp.Type != protocol.TypeAuthResponse {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeAuthResponse)
	}
	if resp.Token != "NULL" {
		t.Errorf("token = %q, want NULL", resp.Token)
	}
	if resp.Data != "ERROR:401" {
		t.Errorf("data = %q, want %q", resp.Data, "ERROR:401")
	}
	if got := sessions.Usernames(); len(got) != 0 {
		t.Errorf("rejected login appears in registry: %v", got)
	}
}

func TestSessionAdminCommand(t *testing.T) {
	c, store, _ := startSession(t)
	tok := c.login(t, "admin", "admin123")

	resp := c.roundTrip(t, protocol.NewCommandRequest(tok, model.CommandSpeedUp, "10"))

	if resp.Type != protocol.TypeCommandResponse {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeCommandResponse)
	}
	if want := "200:" + protocol.MsgCommandProcessed; resp.Data != want {
		t.Errorf("data = %q, want %q", resp.Data, want)
	}
	if got := store.Snapshot().Speed; got != 10 {
		t.Errorf("speed = %v, want 10", got)
	}
}

func TestSessionObserverCommandRejected(t *testing.T) {
	c, store, _ := startSession(t)
	tok := c.login(t, "observer", "observer123")

	resp := c.roundTrip(t, protocol.NewCommandRequest(tok, model.CommandSpeedUp, "10"))

	if resp.Type != protocol.TypeCommandResponse {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeCommandResponse)
	}
	if want := "401:" + protocol.MsgUnauthorized; resp.Data != want {
		t.Errorf("data = %q, want %q", resp.Data, want)
	}
	if got := store.Snapshot().Speed; got != 0 {
		t.Errorf("vehicle moved on rejected command: speed = %v", got)
	}
}

func TestSessionCommandTokenMismatch(t *testing.T) {
	c, store, _ := startSession(t)
	c.login(t, "admin", "admin123")

	resp := c.roundTrip(t, protocol.NewCommandRequest("FORGEDFORGEDFORGEDFORGEDFORGED00", model.CommandSpeedUp, "10"))

	if want := "401:" + protocol.MsgUnauthorized; resp.Data != want {
		t.Errorf("data = %q, want %q", resp.Data, want)
	}
	if got := store.Snapshot().Speed; got != 0 {
		t.Errorf("vehicle moved on forged token: speed = %v", got)
	}
}

func TestSessionCommandBeforeAuth(t *testing.T) {
	c, _, _ := startSession(t)

	resp := c.roundTrip(t, protocol.NewCommandRequest("", model.CommandStop, ""))

	if resp.Type != protocol.TypeCommandResponse {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeCommandResponse)
	}
	if want := "401:" + protocol.MsgUnauthorized; resp.Data != want {
		t.Errorf("data = %q, want %q", resp.Data, want)
	}
}

func TestSessionListUsers(t *testing.T) {
	c, _, _ := startSession(t)
	tok := c.login(t, "admin", "admin123")

	resp := c.roundTrip(t, protocol.NewListUsersRequest(tok))

	if resp.Type != protocol.TypeListUsersResponse {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeListUsersResponse)
	}
	if resp.Data != "1:admin" {
		t.Errorf("data = %q, want %q", resp.Data, "1:admin")
	}
}

func TestSessionListUsersRequiresAdmin(t *testing.T) {
	c, _, _ := startSession(t)
	tok := c.login(t, "observer", "observer123")

	resp := c.roundTrip(t, protocol.NewListUsersRequest(tok))

	if resp.Type != protocol.TypeError {
		t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeError)
	}
	if want := "401:" + protocol.MsgUnauthorized; resp.Data != want {
		t.Errorf("data = %q, want %q", resp.Data, want)
	}
}

func TestSessionMalformedFrame(t *testing.T) {
	c, _, _ := startSession(t)

	tests := []struct {
		name string
		line string
	}{
		{"four fields", "FOO|1|2|3\r\n"},
		{"six fields", "A|B|C|D|E|F\r\n"},
		{"unknown type", "PING|0|NULL|x|CHECKSUM\r\n"},
		{"empty type", "|0|NULL|x|CHECKSUM\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.sendRaw(t, tt.line)
			resp := c.recv(t)
			if resp.Type != protocol.TypeError {
				t.Fatalf("type = %s, want %s", resp.Type, protocol.TypeError)
			}
			if want := "400:" + protocol.MsgInvalidMessage; resp.Data != want {
				t.Errorf("data = %q, want %q", resp.Data, want)
			}
		})
	}
}

func TestSessionDisconnectFreesSlot(t *testing.T) {
	c, _, sessions := startSession(t)
	c.login(t, "admin", "admin123")

	if got := sessions.Count(); got != 1 {
		t.Fatalf("active sessions = %d, want 1", got)
	}

	_ = c.conn.Close()
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		t.Fatal("session handler did not stop after disconnect")
	}

	if got := sessions.Count(); got != 0 {
		t.Errorf("active sessions after disconnect = %d, want 0", got)
	}
}
