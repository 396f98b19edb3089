package service

import (
	"fmt"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
	"github.com/vehiclehub-io/vehiclehub/internal/pkg/metrics"
	"github.com/vehiclehub-io/vehiclehub/pkg/token"
)

// Authenticate validates the pair and, on success, issues a fresh session
// token. The token is fixed for the session's lifetime; there is no
// re-issuance path.
func (s *Service) Authenticate(username, password string) (model.Role, string, error) {
	role, err := s.creds.Lookup(username, password)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("rejected").Inc()
		return model.RoleUnauthenticated, "", err
	}

	tok, err := token.New()
	if err != nil {
		metrics.AuthTotal.WithLabelValues("rejected").Inc()
		return model.RoleUnauthenticated, "", fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.AuthTotal.WithLabelValues("success").Inc()
	return role, tok, nil
}
