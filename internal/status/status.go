// Package status owns the material-request status lifecycle. Every mutating
// entry point (handler or client) consults this table before issuing a write,
// so an invalid transition is rejected locally instead of relying on whichever
// button a UI happens to render.
package status

// Request statuses. The lifecycle is linear with one absorbing branch:
// pending -> confirmed -> preparing -> ready -> shipped -> completed,
// and pending -> cancelled.
const (
	Pending   = "pending"
	Confirmed = "confirmed"
	Preparing = "preparing"
	Ready     = "ready"
	Shipped   = "shipped"
	Completed = "completed"
	Cancelled = "cancelled"
)

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var transitions = map[string][]string{
	Pending:   {Confirmed, Cancelled},
	Confirmed: {Preparing},
	Preparing: {Ready},
	Ready:     {Shipped},
	Shipped:   {Completed},
	Completed: {},
	Cancelled: {},
}

var priorities = map[string]bool{
	PriorityLow:    true,
	PriorityNormal: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// IsValid reports whether s is a known request status.
func IsValid(s string) bool {
	_, ok := transitions[s]
	return ok
}

// IsValidPriority reports whether p is a known priority value.
func IsValidPriority(p string) bool {
	return priorities[p]
}

// CanTransition reports whether a request currently in `from` may move to `to`.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns the valid follow-up statuses for the given status.
// The returned slice must not be modified.
func Next(from string) []string {
	return transitions[from]
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s string) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// InProgress lists the statuses counted as "in progress" by the dashboard.
func InProgress() []string {
	return []string{Confirmed, Preparing, Ready, Shipped}
}
