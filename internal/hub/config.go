package hub

import (
	"context"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/auth"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/service"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/notifier"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/server"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/telemetry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/vehicle"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// Config is the fully resolved runtime configuration of the hub.
type Config struct {
	TcpOptions     *options.TcpOptions
	HttpOptions    *options.HttpOptions
	MqttOptions    *options.MqttOptions
	VehicleOptions *options.VehicleOptions
	AuthOptions    *options.AuthOptions
}

// NewHubServer wires the hub from its configuration: credential store,
// vehicle simulation, session registry, application service and the
// sub-server manager.
func (cfg *Config) NewHubServer(ctx context.Context) (*HubServer, error) {
	creds, err := auth.NewStore(cfg.AuthOptions)
	if err != nil {
		return nil, err
	}

	store := vehicle.NewStore(cfg.VehicleOptions.Latitude, cfg.VehicleOptions.Longitude, cfg.VehicleOptions.Temperature)
	sessions := registry.New(cfg.TcpOptions.MaxClients)
	svc := service.New(creds, store, sessions)

	var sink telemetry.Notifier
	var mqttNotifier *notifier.MQTTNotifier
	if cfg.MqttOptions.Enabled() {
		mqttNotifier, err = notifier.NewMQTTNotifier(ctx, cfg.MqttOptions)
		if err != nil {
			return nil, err
		}
		sink = mqttNotifier
	}

	manager, err := server.NewManager(&server.Config{
		TcpOptions:     cfg.TcpOptions,
		HttpOptions:    cfg.HttpOptions,
		VehicleOptions: cfg.VehicleOptions,
	}, svc, store, sessions, sink)
	if err != nil {
		return nil, err
	}

	return &HubServer{
		creds:     creds,
		watchFile: cfg.AuthOptions != nil && cfg.AuthOptions.CredentialsFile != "",
		manager:   manager,
		notifier:  mqttNotifier,
	}, nil
}
