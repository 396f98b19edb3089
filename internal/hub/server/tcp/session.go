package tcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/looplab/fsm"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/service"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/protocol"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/pkg/metrics"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// session is the per-connection protocol state machine. The handler owns all
// I/O on the connection; session metadata shared with the broadcaster lives
// in the registry and is only touched under the registry lock.
type session struct {
	slot     int
	conn     net.Conn
	peer     string
	opts     *options.TcpOptions
	svc      *service.Service
	sessions *registry.Registry

	logger    log.Logger
	lifecycle *fsm.FSM

	// Authentication outcome, owned by this handler. The token is fixed for
	// the session's lifetime once issued.
	username string
	token    string
	role     model.Role
}

func newSession(slot int, conn net.Conn, peer string, opts *options.TcpOptions, svc *service.Service, sessions *registry.Registry) *session {
	logger := log.WithName("session").WithValues("peer", peer, "slot", slot)
	return &session{
		slot:      slot,
		conn:      conn,
		peer:      peer,
		opts:      opts,
		svc:       svc,
		sessions:  sessions,
		logger:    logger,
		lifecycle: newLifecycle(logger),
	}
}

// run reads frames until the connection closes, answering each request in
// order. Protocol and authorization failures are answered in-band and keep
// the loop alive; transport failures end the session.
func (s *session) run(ctx context.Context) {
	defer s.teardown(ctx)

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, 256), s.opts.MaxLineBytes)
	scanner.Split(splitCRLF)

	for scanner.Scan() {
		line := scanner.Text()
		s.sessions.Touch(s.slot)
		s.logger.Debug("Request received", "frame", line)

		resp := s.handle(ctx, line)
		if err := s.write(resp); err != nil {
			s.logger.Warn("Response write failed", "error", err)
			return
		}
		s.logger.Debug("Response sent", "frame", resp.Type, "data", resp.Data)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("Read failed", "error", err)
	}
}

// handle decodes one line and dispatches it. It always produces a response
// frame; unknown or malformed requests get the 400 error frame.
func (s *session) handle(ctx context.Context, line string) *protocol.Frame {
	frame, err := protocol.Parse(line)
	if err != nil {
		return protocol.NewInvalidMessageError()
	}

	switch frame.Type {
	case protocol.TypeAuthRequest:
		return s.handleAuth(ctx, frame)
	case protocol.TypeCommandRequest:
		return s.handleCommand(frame)
	case protocol.TypeListUsersRequest:
		return s.handleListUsers(frame)
	default:
		return protocol.NewInvalidMessageError()
	}
}

func (s *session) handleAuth(ctx context.Context, frame *protocol.Frame) *protocol.Frame {
	username, password := protocol.SplitPair(frame.Data)

	role, tok, err := s.svc.Authenticate(username, password)
	if err != nil {
		s.logger.Info("Authentication rejected", "username", username)
		return protocol.NewAuthRejected()
	}

	if err := s.sessions.Authorize(s.slot, username, tok, role); err != nil {
		// Slot vanished under us: the registry tore the session down.
		s.logger.Warn("Authorize failed", "error", err)
		return protocol.NewAuthRejected()
	}

	s.username = username
	s.token = tok
	s.role = role
	_ = s.lifecycle.Event(ctx, EventAuthenticate, username, string(role))

	return protocol.NewAuthOK(tok, role)
}

// authorized reports whether the frame carries admin rights: the session
// must have authenticated as Admin and the frame token must equal the
// session token.
func (s *session) authorized(frame *protocol.Frame) bool {
	return s.role == model.RoleAdmin && s.token != "" && frame.Token == s.token
}

func (s *session) handleCommand(frame *protocol.Frame) *protocol.Frame {
	if !s.authorized(frame) {
		s.logger.Info("Command rejected", "role", string(s.role))
		return protocol.NewCommandUnauthorized()
	}

	command, params := protocol.SplitPair(frame.Data)
	s.svc.ProcessCommand(model.CommandType(command), params)
	return protocol.NewCommandOK()
}

func (s *session) handleListUsers(frame *protocol.Frame) *protocol.Frame {
	if !s.authorized(frame) {
		return protocol.NewUnauthorizedError()
	}
	return protocol.NewListUsers(s.svc.ListUsers())
}

func (s *session) write(frame *protocol.Frame) error {
	if s.opts.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	_, err := io.WriteString(s.conn, frame.Encode())
	return err
}

func (s *session) teardown(ctx context.Context) {
	_ = s.lifecycle.Event(ctx, EventClose)
	s.sessions.Remove(s.slot)
	metrics.ActiveSessions.Dec()
}

// splitCRLF frames the stream on CRLF only; a bare newline does not
// terminate a frame. Unterminated trailing bytes at EOF are discarded.
func splitCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, []byte(protocol.Delimiter)); i >= 0 {
		return i + len(protocol.Delimiter), data[:i], nil
	}
	return 0, nil, nil
}
