package model

import "time"

// Role is the authorization level of a connected client.
type Role string

const (
	// RoleUnauthenticated is the role of every freshly admitted connection.
	RoleUnauthenticated Role = ""

	// RoleObserver may receive telemetry but not issue commands.
	RoleObserver Role = "OBSERVER"

	// RoleAdmin may issue control commands and list connected users.
	RoleAdmin Role = "ADMIN"
)

// Authorized reports whether the role has passed authentication.
func (r Role) Authorized() bool {
	return r == RoleObserver || r == RoleAdmin
}

// SessionInfo is a read-only snapshot of a registered session, taken under
// the registry lock. It carries no connection handle.
type SessionInfo struct {
	Slot         int       `json:"slot"`
	RemoteAddr   string    `json:"remoteAddr"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	LastActivity time.Time `json:"lastActivity"`
}
