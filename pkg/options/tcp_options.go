package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*TcpOptions)(nil)

// TcpOptions contains configuration for the vehicle control TCP listener.
type TcpOptions struct {
	// Network with listener network.
	Network string `json:"network" mapstructure:"network"`

	// Addr with listener address.
	Addr string `json:"addr" mapstructure:"addr"`

	// MaxClients caps the number of concurrently connected clients. Connections
	// beyond this limit are refused without a frame exchange.
	MaxClients int `json:"max-clients" mapstructure:"max-clients"`

	// WriteTimeout bounds a single frame write to a client. A peer that cannot
	// keep up loses frames instead of stalling the broadcaster.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// MaxLineBytes bounds the length of a single request line.
	MaxLineBytes int `json:"max-line-bytes" mapstructure:"max-line-bytes"`
}

// NewTcpOptions creates a TcpOptions object with default parameters.
func NewTcpOptions() *TcpOptions {
	return &TcpOptions{
		Network:      "tcp",
		Addr:         "0.0.0.0:8080",
		MaxClients:   50,
		WriteTimeout: 2 * time.Second,
		MaxLineBytes: 1024,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *TcpOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if err := ValidateAddress(o.Addr); err != nil {
		errors = append(errors, err)
	}
	if o.MaxClients <= 0 {
		errors = append(errors, fmt.Errorf("tcp.max-clients must be positive, got %d", o.MaxClients))
	}
	if o.MaxLineBytes <= 0 {
		errors = append(errors, fmt.Errorf("tcp.max-line-bytes must be positive, got %d", o.MaxLineBytes))
	}

	return errors
}

// AddFlags adds flags related to the TCP listener to the specified FlagSet.
func (o *TcpOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Network, "tcp.network", o.Network, "Specify the network for the control listener.")
	fs.StringVar(&o.Addr, "tcp.addr", o.Addr, "Specify the control listener bind address and port.")
	fs.IntVar(&o.MaxClients, "tcp.max-clients", o.MaxClients, "Maximum number of concurrently connected clients.")
	fs.DurationVar(&o.WriteTimeout, "tcp.write-timeout", o.WriteTimeout, "Per-frame write deadline for client connections.")
	fs.IntVar(&o.MaxLineBytes, "tcp.max-line-bytes", o.MaxLineBytes, "Maximum length of a single request line in bytes.")
}
