package domain

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from Status
		to   Status
	}{
		{StatusPendingApproval, StatusAssigned},
		{StatusPendingApproval, StatusRejected},
		{StatusAssigned, StatusInProgress},
		{StatusInProgress, StatusResolved},
		{StatusInProgress, StatusSuspended},
		{StatusSuspended, StatusInProgress},
	}

	allowedSet := make(map[[2]Status]bool, len(allowed))
	for _, tc := range allowed {
		allowedSet[[2]Status{tc.from, tc.to}] = true
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tc.from, tc.to)
		}
	}

	// Every pair not in the table must be rejected, including transitions out
	// of resolved and rejected and self-transitions.
	all := []Status{
		StatusPendingApproval, StatusAssigned, StatusInProgress,
		StatusSuspended, StatusResolved, StatusRejected,
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]Status{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []Status{
		StatusPendingApproval, StatusAssigned, StatusInProgress,
		StatusSuspended, StatusResolved, StatusRejected,
	}
	for _, terminal := range []Status{StatusResolved, StatusRejected} {
		if !terminal.IsTerminal() {
			t.Errorf("%s should be terminal", terminal)
		}
		for _, to := range all {
			if CanTransition(terminal, to) {
				t.Errorf("terminal status %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestIsStaffTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusAssigned, StatusInProgress, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusSuspended, true},
		{StatusSuspended, StatusInProgress, true},
		{StatusPendingApproval, StatusAssigned, false},
		{StatusPendingApproval, StatusRejected, false},
	}
	for _, tc := range tests {
		if got := IsStaffTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("IsStaffTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRequiresAssignee(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPendingApproval, false},
		{StatusRejected, false},
		{StatusAssigned, true},
		{StatusInProgress, true},
		{StatusSuspended, true},
		{StatusResolved, true},
	}
	for _, tc := range tests {
		if got := tc.status.RequiresAssignee(); got != tc.want {
			t.Errorf("RequiresAssignee(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
