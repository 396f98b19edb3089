package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*VehicleOptions)(nil)

// VehicleOptions contains the simulated vehicle's startup state and the
// telemetry cadence.
type VehicleOptions struct {
	// Latitude and Longitude fix the vehicle's reported position. They are
	// never mutated by control commands.
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`

	// Temperature is the initial cabin temperature in °C.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// TelemetryInterval is the period between telemetry broadcasts.
	TelemetryInterval time.Duration `json:"telemetry-interval" mapstructure:"telemetry-interval"`
}

// NewVehicleOptions creates a VehicleOptions object with default parameters.
func NewVehicleOptions() *VehicleOptions {
	return &VehicleOptions{
		Latitude:          6.2442,
		Longitude:         -75.5812,
		Temperature:       22.5,
		TelemetryInterval: 10 * time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *VehicleOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.TelemetryInterval <= 0 {
		errors = append(errors, fmt.Errorf("vehicle.telemetry-interval must be positive, got %s", o.TelemetryInterval))
	}

	return errors
}

// AddFlags adds flags for VehicleOptions to the specified FlagSet.
func (o *VehicleOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.Float64Var(&o.Latitude, "vehicle.latitude", o.Latitude, "Fixed latitude reported in telemetry.")
	fs.Float64Var(&o.Longitude, "vehicle.longitude", o.Longitude, "Fixed longitude reported in telemetry.")
	fs.Float64Var(&o.Temperature, "vehicle.temperature", o.Temperature, "Initial temperature in degrees Celsius.")
	fs.DurationVar(&o.TelemetryInterval, "vehicle.telemetry-interval", o.TelemetryInterval, "Period between telemetry broadcasts.")
}
