package tcp

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/vehiclehub-io/vehiclehub/pkg/log"
)

// Session lifecycle states.
const (
	// StatePending is the state of an admitted but unauthenticated session.
	StatePending = "pending"
	// StateAuthorized is reached after a successful AUTH_REQUEST.
	StateAuthorized = "authorized"
	// StateClosed is terminal.
	StateClosed = "closed"
)

// Session lifecycle events.
const (
	// EventAuthenticate fires on a successful authentication. A session may
	// re-authenticate, which re-enters StateAuthorized with a fresh token.
	EventAuthenticate = "authenticate"
	// EventClose fires exactly once during teardown.
	EventClose = "close"
)

// newLifecycle builds the per-session state machine. The callbacks carry the
// transition logging so state changes are visible without instrumenting every
// call site.
func newLifecycle(logger log.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: EventAuthenticate, Src: []string{StatePending, StateAuthorized}, Dst: StateAuthorized},
			{Name: EventClose, Src: []string{StatePending, StateAuthorized}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_" + StateAuthorized: func(_ context.Context, e *fsm.Event) {
				if len(e.Args) == 2 {
					logger.Info("Session authorized", "username", e.Args[0], "role", e.Args[1])
				}
			},
			"enter_" + StateClosed: func(_ context.Context, e *fsm.Event) {
				logger.Info("Client disconnected")
			},
		},
	)
}
