// Package notifier bridges telemetry snapshots to an MQTT broker so fleet
// tooling can observe the vehicle without speaking the TCP control protocol.
package notifier

import (
	"context"
	"encoding/json"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	pkgmqtt "github.com/vehiclehub-io/vehiclehub/pkg/mqtt"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// MQTTNotifier publishes telemetry snapshots as JSON to
// {TopicRoot}/telemetry with QoS 0. Telemetry is periodic, so a dropped
// message is superseded by the next one.
type MQTTNotifier struct {
	client pkgmqtt.Client
	topic  string
}

// NewMQTTNotifier creates the notifier and starts its broker connection. The
// connection is managed in the background; publishes fail until it is up.
func NewMQTTNotifier(ctx context.Context, opts *options.MqttOptions) (*MQTTNotifier, error) {
	cfg := opts.ToClientConfig()
	if cfg.ClientID == "" {
		cfg.ClientID = "vehiclehub"
	}
	cfg.ClientID += "-notifier"

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, err
	}

	return &MQTTNotifier{
		client: client,
		topic:  opts.TopicRoot + "/telemetry",
	}, nil
}

// Notify publishes one telemetry snapshot.
func (n *MQTTNotifier) Notify(ctx context.Context, state model.VehicleState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.topic, 0, false, payload)
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close(ctx context.Context) {
	n.client.Disconnect(ctx)
}
