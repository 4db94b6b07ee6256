// Package domain provides core business rules for the reports bounded context.
package domain

// Status is the lifecycle state of a report.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusAssigned        Status = "assigned"
	StatusInProgress      Status = "in_progress"
	StatusSuspended       Status = "suspended"
	StatusResolved        Status = "resolved"
	StatusRejected        Status = "rejected"
)

// transitions is the complete set of permitted status changes. Anything not
// listed here is an invalid transition, including every move out of a
// terminal state.
var transitions = map[Status][]Status{
	StatusPendingApproval: {StatusAssigned, StatusRejected},
	StatusAssigned:        {StatusInProgress},
	StatusInProgress:      {StatusResolved, StatusSuspended},
	StatusSuspended:       {StatusInProgress},
}

// staffTransitions are the transitions driven by the report's assigned
// technical staff member. The remaining transitions out of pending_approval
// belong to PRO/admin triage.
var staffTransitions = map[Status][]Status{
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusResolved, StatusSuspended},
	StatusSuspended:  {StatusInProgress},
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusAssigned, StatusInProgress,
		StatusSuspended, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions exist out of s.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// RequiresAssignee reports whether the invariant demands a non-null assignee
// for status s. The assignee is set iff the report has left triage without
// being rejected.
func (s Status) RequiresAssignee() bool {
	return s != StatusPendingApproval && s != StatusRejected
}

// CanTransition reports whether from → to is a permitted status change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsStaffTransition reports whether from → to is driven by the assigned
// technical staff member rather than PRO/admin triage.
func IsStaffTransition(from, to Status) bool {
	for _, next := range staffTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OpenStatuses returns the statuses that count toward a staff member's open
// report load for least-loaded routing: assigned but not yet terminal.
func OpenStatuses() []Status {
	return []Status{StatusAssigned, StatusInProgress, StatusSuspended}
}
