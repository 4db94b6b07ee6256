package repository

import (
	"strings"
	"testing"
)

func TestAssignCandidateQueryCountsOnlyOpenReports(t *testing.T) {
	query := strings.ToLower(assignCandidateQuery)

	requiredFragments := []string{
		"left join reports r on r.assignee_id = u.id and r.status = any($3)",
		"where om.office_id = $1 and u.user_type = $2",
		"group by u.id",
		"limit 1",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected candidate query fragment %q to be present", fragment)
		}
	}
}

func TestAssignCandidateQueryBreaksTiesOnLowestUserID(t *testing.T) {
	query := strings.ToLower(assignCandidateQuery)

	if !strings.Contains(query, "order by count(r.id) asc, u.id asc") {
		t.Fatal("expected candidate query to order by open-report count with lowest user id as tie-break")
	}
}

func TestAssignCandidateQueryKeepsStatusFilterOnJoin(t *testing.T) {
	// The status filter must live on the LEFT JOIN condition. Moving it into
	// the WHERE clause would drop staff with zero open reports.
	query := strings.ToLower(assignCandidateQuery)

	if strings.Contains(query, "where r.status") {
		t.Fatal("candidate query must not filter report status in the WHERE clause")
	}
}

func TestAssignReportQueryGuardsExpectedStatus(t *testing.T) {
	query := strings.ToLower(assignReportQuery)

	requiredFragments := []string{
		"update reports set status = $3, assignee_id = $4",
		"where id = $1 and status = $2",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected assignment query fragment %q to be present", fragment)
		}
	}
}
