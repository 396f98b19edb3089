// Package registry holds the fixed-capacity table of admitted client
// sessions. All mutations and scans are serialized by a single lock so that
// the broadcaster and the per-connection handlers always observe a
// consistent table.
package registry

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
)

// ErrFull is returned by Reserve when every slot is taken.
var ErrFull = errors.New("session registry is full")

type session struct {
	conn         net.Conn
	remoteAddr   string
	username     string
	token        string
	role         model.Role
	lastActivity time.Time
	active       bool
}

// Registry is an arena-style slot table. A slot is either empty or holds
// exactly one active session; slot indices are stable for the session's
// lifetime and reused only after teardown.
type Registry struct {
	mu       sync.Mutex
	slots    []session
	capacity int
}

// New creates a Registry with the given capacity.
func New(capacity int) *Registry {
	return &Registry{
		slots:    make([]session, capacity),
		capacity: capacity,
	}
}

// Capacity returns the fixed slot count.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Reserve claims the first free slot for a new connection and returns its
// index. The session starts unauthenticated with a fresh activity timestamp.
func (r *Registry) Reserve(conn net.Conn, remoteAddr string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		if r.slots[i].active {
			continue
		}
		r.slots[i] = session{
			conn:         conn,
			remoteAddr:   remoteAddr,
			role:         model.RoleUnauthenticated,
			lastActivity: time.Now(),
			active:       true,
		}
		return i, nil
	}
	return -1, ErrFull
}

// Authorize records the outcome of a successful authentication on the slot.
func (r *Registry) Authorize(slot int, username, token string, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validActive(slot) {
		return fmt.Errorf("no active session in slot %d", slot)
	}
	r.slots[slot].username = username
	r.slots[slot].token = token
	r.slots[slot].role = role
	return nil
}

// Touch refreshes the slot's last-activity timestamp.
func (r *Registry) Touch(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validActive(slot) {
		r.slots[slot].lastActivity = time.Now()
	}
}

// Remove tears down the slot: the connection is closed and the slot freed
// for reuse. Removing an empty or out-of-range slot is a no-op.
func (r *Registry) Remove(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validActive(slot) {
		return
	}
	if c := r.slots[slot].conn; c != nil {
		_ = c.Close()
	}
	r.slots[slot] = session{}
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range r.slots {
		if r.slots[i].active {
			n++
		}
	}
	return n
}

// Authorized returns a snapshot of every session that has authenticated.
func (r *Registry) Authorized() []model.SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var infos []model.SessionInfo
	for i := range r.slots {
		if r.slots[i].active && r.slots[i].role.Authorized() {
			infos = append(infos, model.SessionInfo{
				Slot:         i,
				RemoteAddr:   r.slots[i].remoteAddr,
				Username:     r.slots[i].username,
				Role:         r.slots[i].role,
				LastActivity: r.slots[i].lastActivity,
			})
		}
	}
	return infos
}

// Usernames returns the usernames of every authenticated session, in slot
// order. Unauthenticated sessions are excluded.
func (r *Registry) Usernames() []string {
	var names []string
	for _, info := range r.Authorized() {
		names = append(names, info.Username)
	}
	return names
}

// ForEachAuthorized runs fn for every authenticated session while holding
// the registry lock. fn must not call back into the registry and must bound
// its own blocking (e.g. with a write deadline) so a slow peer cannot stall
// the table.
func (r *Registry) ForEachAuthorized(fn func(conn net.Conn, info model.SessionInfo)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		if r.slots[i].active && r.slots[i].role.Authorized() {
			fn(r.slots[i].conn, model.SessionInfo{
				Slot:         i,
				RemoteAddr:   r.slots[i].remoteAddr,
				Username:     r.slots[i].username,
				Role:         r.slots[i].role,
				LastActivity: r.slots[i].lastActivity,
			})
		}
	}
}

// CloseAll closes every active connection. Blocked session reads fail
// immediately, which drives each handler into its own teardown path.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		if r.slots[i].active && r.slots[i].conn != nil {
			_ = r.slots[i].conn.Close()
		}
	}
}

func (r *Registry) validActive(slot int) bool {
	return slot >= 0 && slot < len(r.slots) && r.slots[slot].active
}
