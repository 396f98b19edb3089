// Package telemetry implements the periodic vehicle state broadcast to every
// authenticated client session.
package telemetry

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/protocol"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/vehicle"
	"github.com/vehiclehub-io/vehiclehub/internal/pkg/metrics"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// Notifier forwards a telemetry snapshot to an external sink, e.g. an MQTT
// broker. Delivery is best effort; failures are logged and do not affect the
// client broadcast.
type Notifier interface {
	Notify(ctx context.Context, state model.VehicleState) error
}

// Broadcaster perturbs the vehicle state on a fixed interval and fans the
// resulting telemetry frame out to every authenticated session. It satisfies
// the sub-server interface so the manager drives its lifecycle.
type Broadcaster struct {
	interval     time.Duration
	writeTimeout time.Duration
	store        *vehicle.Store
	sessions     *registry.Registry
	notifier     Notifier
}

// NewBroadcaster creates a broadcaster over the given vehicle store and
// session registry. notifier may be nil.
func NewBroadcaster(opts *options.VehicleOptions, writeTimeout time.Duration, store *vehicle.Store, sessions *registry.Registry, notifier Notifier) *Broadcaster {
	return &Broadcaster{
		interval:     opts.TelemetryInterval,
		writeTimeout: writeTimeout,
		store:        store,
		sessions:     sessions,
		notifier:     notifier,
	}
}

// Start runs the broadcast loop until the context is cancelled.
func (b *Broadcaster) Start(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	log.Info("Telemetry broadcaster started", "interval", b.interval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("Telemetry broadcaster stopped")
			return nil
		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

// tick produces and delivers one telemetry frame. Unauthenticated sessions
// never receive telemetry; a session whose write fails is skipped this round
// and will be torn down by its own handler once the connection dies.
func (b *Broadcaster) tick(ctx context.Context) {
	state := b.store.Perturb()
	payload := protocol.NewTelemetry(state).Encode()

	var sent, failed int
	b.sessions.ForEachAuthorized(func(conn net.Conn, info model.SessionInfo) {
		if conn == nil {
			return
		}
		if b.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
		}
		if _, err := io.WriteString(conn, payload); err != nil {
			failed++
			metrics.TelemetrySendErrorsTotal.Inc()
			log.Warn("Telemetry write failed", "peer", info.RemoteAddr, "error", err)
			return
		}
		sent++
	})

	metrics.TelemetryFramesTotal.Inc()
	log.Debug("Telemetry broadcast", "speed", state.Speed, "battery", state.Battery, "recipients", sent, "failed", failed)

	if b.notifier != nil {
		if err := b.notifier.Notify(ctx, state); err != nil {
			log.Warn("Telemetry notify failed", "error", err)
		}
	}
}
