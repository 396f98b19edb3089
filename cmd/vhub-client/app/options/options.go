package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/vehiclehub-io/vehiclehub/pkg/log"
	"github.com/vehiclehub-io/vehiclehub/pkg/options"
)

// ClientOptions holds the connection settings of the console client.
type ClientOptions struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	Log *log.Options `json:"log" mapstructure:"log"`
}

// NewClientOptions creates a ClientOptions with default values.
func NewClientOptions() *ClientOptions {
	logOpts := log.NewOptions()
	// Interactive output and telemetry tables share stdout; keep the
	// logger quiet unless asked otherwise.
	logOpts.Level = "warn"

	return &ClientOptions{
		Addr: "127.0.0.1:8080",
		Log:  logOpts,
	}
}

// AddFlags registers the client flags on the given FlagSet.
func (o *ClientOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "Address of the hub control listener.")
	fs.StringVarP(&o.Username, "username", "u", o.Username, "Username to authenticate with.")
	fs.StringVarP(&o.Password, "password", "p", o.Password, "Password to authenticate with.")
	o.Log.AddFlags(fs)
}

// Validate checks the options.
func (o *ClientOptions) Validate() error {
	var errs []error
	if err := options.ValidateAddress(o.Addr); err != nil {
		errs = append(errs, err)
	}
	if o.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if o.Password == "" {
		errs = append(errs, errors.New("password is required"))
	}
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}
