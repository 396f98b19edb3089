// Package service implements the hub's business logic: authentication,
// command processing and user listing. It sits between the protocol servers
// and the state-owning packages (vehicle store, session registry).
package service

import (
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/registry"
	"github.com/vehiclehub-io/vehiclehub/internal/hub/vehicle"
)

// Service orchestrates calls between the credential validator, the vehicle
// state store and the session registry.
type Service struct {
	creds    core.CredentialValidator
	vehicle  *vehicle.Store
	sessions *registry.Registry
}

// New creates the core service. Dependency injection happens here.
func New(creds core.CredentialValidator, store *vehicle.Store, sessions *registry.Registry) *Service {
	return &Service{
		creds:    creds,
		vehicle:  store,
		sessions: sessions,
	}
}
