package core

import (
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
)

// CredentialValidator checks a username/password pair against the credential
// table. Implemented by the auth store.
type CredentialValidator interface {
	// Lookup returns the role granted to the pair, or ErrInvalidCredentials.
	Lookup(username, password string) (model.Role, error)
}
