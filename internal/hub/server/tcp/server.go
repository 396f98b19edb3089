// Package tcp implements the vehicle control listener: connection admission
// against the session registry and the per-connection protocol loop.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/service"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/pkg/metrics"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// Server accepts client connections and runs one session handler per
// admitted connection.
type Server struct {
	opts     *options.TcpOptions
	svc      *service.Service
	sessions *registry.Registry
}

// NewServer creates a new control listener.
func NewServer(opts *options.TcpOptions, svc *service.Service, sessions *registry.Registry) *Server {
	return &Server{
		opts:     opts,
		svc:      svc,
		sessions: sessions,
	}
}

// Start runs the accept loop until the context is cancelled. Cancellation
// closes the listener to unblock a pending Accept and closes every admitted
// connection so each session handler observes the shutdown.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, s.opts.Network, s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}

	log.Info("Control listener started", "addr", s.opts.Addr, "maxClients", s.sessions.Capacity())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
		s.sessions.CloseAll()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			log.Error(err, "Accept failed")
			continue
		}

		peer := conn.RemoteAddr().String()
		slot, err := s.sessions.Reserve(conn, peer)
		if err != nil {
			// At capacity: refuse without a frame exchange.
			metrics.ConnectionsRefusedTotal.Inc()
			log.Warn("Connection refused at capacity", "peer", peer)
			_ = conn.Close()
			continue
		}

		metrics.ActiveSessions.Inc()
		log.Info("Client connected", "peer", peer, "slot", slot)

		sess := newSession(slot, conn, peer, s.opts, s.svc, s.sessions)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.run(ctx)
		}()
	}

	wg.Wait()
	log.Info("Control listener stopped")
	return nil
}
