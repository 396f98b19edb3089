package options

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

var _ IOptions = (*AuthOptions)(nil)

// AuthOptions contains configuration for the credential store.
type AuthOptions struct {
	// CredentialsFile is an optional JSON file with additional credentials.
	// When set, the file is watched and reloaded on change.
	CredentialsFile string `json:"credentials-file" mapstructure:"credentials-file"`

	// DisableDefaults drops the built-in admin/observer demo credentials.
	// Requires CredentialsFile to be set.
	DisableDefaults bool `json:"disable-defaults" mapstructure:"disable-defaults"`
}

// NewAuthOptions creates an AuthOptions object with default parameters.
func NewAuthOptions() *AuthOptions {
	return &AuthOptions{}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *AuthOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.DisableDefaults && o.CredentialsFile == "" {
		errors = append(errors, fmt.Errorf("auth.disable-defaults requires auth.credentials-file"))
	}
	if o.CredentialsFile != "" {
		if _, err := os.Stat(o.CredentialsFile); err != nil {
			errors = append(errors, fmt.Errorf("auth.credentials-file: %w", err))
		}
	}

	return errors
}

// AddFlags adds flags for AuthOptions to the specified FlagSet.
func (o *AuthOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.CredentialsFile, "auth.credentials-file", o.CredentialsFile, "Optional JSON file with client credentials, reloaded on change.")
	fs.BoolVar(&o.DisableDefaults, "auth.disable-defaults", o.DisableDefaults, "Drop the built-in demo credentials.")
}
