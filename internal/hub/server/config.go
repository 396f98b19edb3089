package server

import (
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// Config carries the options of every sub-server the manager runs.
type Config struct {
	TcpOptions     *options.TcpOptions
	HttpOptions    *options.HttpOptions
	VehicleOptions *options.VehicleOptions
}
