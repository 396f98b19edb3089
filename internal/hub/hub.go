// Package hub assembles the vehicle hub: a TCP control listener, the
// telemetry broadcaster, the operational HTTP server and the optional MQTT
// telemetry bridge, all built around one simulated vehicle.
package hub

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/auth"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/notifier"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/server"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

// HubServer is the top-level process object: the server manager plus the
// long-running helpers that live outside it.
type HubServer struct {
	creds     *auth.Store
	watchFile bool
	manager   *server.Manager
	notifier  *notifier.MQTTNotifier
}

// Run starts every component and blocks until the context is cancelled or a
// component fails.
func (s *HubServer) Run(ctx context.Context) error {
	if s.notifier != nil {
		defer s.notifier.Close(context.Background())
	}

	g, ctx := errgroup.WithContext(ctx)

	if s.watchFile {
		g.Go(func() error {
			return s.creds.Watch(ctx)
		})
	}
	g.Go(func() error {
		return s.manager.Start(ctx)
	})

	err := g.Wait()
	log.Info("Hub server stopped")
	return err
}
