package service

import (
	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/pkg/metrics"
	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

// ProcessCommand applies a control command to the vehicle. Authorization has
// already happened at the session layer; unknown commands are accepted and
// ignored by the store.
func (s *Service) ProcessCommand(command model.CommandType, params string) {
	s.vehicle.Apply(command, params)
	metrics.CommandsTotal.WithLabelValues(string(command)).Inc()
	log.Info("Command processed", "command", string(command), "params", params)
}

// ListUsers returns the usernames of every authenticated session.
func (s *Service) ListUsers() []string {
	return s.sessions.Usernames()
}
