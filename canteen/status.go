/*
status.go - Order status state machine

PURPOSE:
  Order status is a closed enumeration with an explicit transition table.
  Any transition not in the table is rejected, which is what makes the
  refund-on-cancel side effect fire exactly once: there is no edge into
  cancelled from cancelled.

STATE MACHINE:
  pending -> accepted -> ready -> completed   (forward path, canteen-driven)
  pending -> cancelled                        (refunding)
  accepted -> cancelled                       (refunding)

  completed and cancelled are terminal.

CANCELLATION POLICY:
  Cancellation is allowed from pending and accepted only, on every path
  (the dedicated cancel operation and the generic status update share this
  table). Once food is ready it can no longer be cancelled.
*/
package canteen

// Status is an order's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusReady, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// transitions is the complete set of valid status changes.
var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusCancelled},
	StatusAccepted: {StatusReady, StatusCancelled},
	StatusReady:    {StatusCompleted},
}

// CanTransition reports whether from -> to is a valid transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is valid from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Cancellable reports whether an order in this status may still be
// cancelled (and refunded).
func (s Status) Cancellable() bool {
	return CanTransition(s, StatusCancelled)
}
