package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/vehiclehub-io/vehiclehub/internal/hub"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// ServerOptions aggregates the flags of every hub component.
type ServerOptions struct {
	TcpOptions     *options.TcpOptions     `json:"tcp" mapstructure:"tcp"`
	HttpOptions    *options.HttpOptions    `json:"http" mapstructure:"http"`
	MqttOptions    *options.MqttOptions    `json:"mqtt" mapstructure:"mqtt"`
	VehicleOptions *options.VehicleOptions `json:"vehicle" mapstructure:"vehicle"`
	AuthOptions    *options.AuthOptions    `json:"auth" mapstructure:"auth"`
	Log            *log.Options            `json:"log" mapstructure:"log"`
}

// NewServerOptions creates a ServerOptions with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		TcpOptions:     options.NewTcpOptions(),
		HttpOptions:    options.NewHttpOptions(),
		MqttOptions:    options.NewMqttOptions(),
		VehicleOptions: options.NewVehicleOptions(),
		AuthOptions:    options.NewAuthOptions(),
		Log:            log.NewOptions(),
	}
}

// AddFlags registers every component's flags on the given FlagSet.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.TcpOptions.AddFlags(fs)
	o.HttpOptions.AddFlags(fs)
	o.MqttOptions.AddFlags(fs)
	o.VehicleOptions.AddFlags(fs)
	o.AuthOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Validate checks all options and aggregates any failures.
func (o *ServerOptions) Validate() error {
	var errs []error
	errs = append(errs, o.TcpOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.VehicleOptions.Validate()...)
	errs = append(errs, o.AuthOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

// Config builds the runtime configuration from the validated options.
func (o *ServerOptions) Config() (*hub.Config, error) {
	return &hub.Config{
		TcpOptions:     o.TcpOptions,
		HttpOptions:    o.HttpOptions,
		MqttOptions:    o.MqttOptions,
		VehicleOptions: o.VehicleOptions,
		AuthOptions:    o.AuthOptions,
	}, nil
}
