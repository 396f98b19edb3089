// Package server assembles and runs the hub's sub-servers.
package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/service"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/server/http"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/server/tcp"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/telemetry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/vehicle"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

// Server defines the common interface for all sub-servers (tcp, http,
// telemetry broadcaster).
type Server interface {
	Start(ctx context.Context) error
}

// Manager manages the lifecycle of all sub-servers.
type Manager struct {
	servers []Server
}

// NewManager creates a new server manager and initializes all sub-servers.
// sink may be nil, in which case telemetry is only delivered to connected
// clients.
func NewManager(cfg *Config, svc *service.Service, store *vehicle.Store, sessions *registry.Registry, sink telemetry.Notifier) (*Manager, error) {
	var servers []Server

	// 1. The control listener: the protocol surface clients connect to.
	servers = append(servers, tcp.NewServer(cfg.TcpOptions, svc, sessions))

	// 2. The telemetry broadcaster driving the periodic state fan-out.
	servers = append(servers, telemetry.NewBroadcaster(cfg.VehicleOptions, cfg.TcpOptions.WriteTimeout, store, sessions, sink))

	// 3. The HTTP server for health, metrics and the read-only API.
	servers = append(servers, http.NewServer(cfg.HttpOptions, store, sessions))

	return &Manager{
		servers: servers,
	}, nil
}

// Start launches all servers in parallel and waits for termination. The
// first server to fail cancels the rest through the shared context.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.servers {
		srv := s
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting...")
	return g.Wait()
}
