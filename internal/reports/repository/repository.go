package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cityreport_backend/internal/reports/domain"
	"cityreport_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Report represents the report database model. Relations are fully loaded by
// the repository; the engine never triggers hidden queries.
type Report struct {
	ID              uuid.UUID  `db:"id"`
	Title           string     `db:"title"`
	Description     string     `db:"description"`
	CategoryID      uuid.UUID  `db:"category_id"`
	Images          []string   `db:"images"`
	Latitude        float64    `db:"latitude"`
	Longitude       float64    `db:"longitude"`
	Status          string     `db:"status"`
	Anonymous       bool       `db:"anonymous"`
	RejectionReason *string    `db:"rejection_reason"`
	CreatorID       uuid.UUID  `db:"creator_id"`
	AssigneeID      *uuid.UUID `db:"assignee_id"`
	CoAssigneeID    *uuid.UUID `db:"co_assignee_id"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Repository provides database operations for reports.
type Repository struct {
	pool *pgxpool.Pool
}

const reportNotFoundMsg = "report not found"

const reportColumns = `id, title, description, category_id, images, latitude, longitude,
	status, anonymous, rejection_reason, creator_id, assignee_id, co_assignee_id,
	created_at, updated_at`

// assignCandidateQuery picks the least-loaded technical staff member of an
// office. Load counts only open reports, and ties break on lowest user id.
const assignCandidateQuery = `
	SELECT u.id
	FROM users u
	JOIN office_members om ON om.user_id = u.id
	LEFT JOIN reports r ON r.assignee_id = u.id AND r.status = ANY($3)
	WHERE om.office_id = $1 AND u.user_type = $2
	GROUP BY u.id
	ORDER BY COUNT(r.id) ASC, u.id ASC
	LIMIT 1`

// assignReportQuery writes the assignment with a compare-and-set on the
// expected current status.
const assignReportQuery = `UPDATE reports SET status = $3, assignee_id = $4, updated_at = $5
	WHERE id = $1 AND status = $2`

// New creates a new reports repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.CategoryID, &r.Images, &r.Latitude,
		&r.Longitude, &r.Status, &r.Anonymous, &r.RejectionReason, &r.CreatorID,
		&r.AssigneeID, &r.CoAssigneeID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new report.
func (r *Repository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (
			id, title, description, category_id, images, latitude, longitude,
			status, anonymous, creator_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err := r.pool.Exec(ctx, query,
		report.ID, report.Title, report.Description, report.CategoryID,
		report.Images, report.Latitude, report.Longitude, report.Status,
		report.Anonymous, report.CreatorID, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(reportNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// ListByStatus retrieves all reports in the given status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status string) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, status)
}

// ListByCreator retrieves all reports filed by the given user, newest first.
func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE creator_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, creatorID)
}

// ListByAssignee retrieves all reports assigned to the given staff member,
// newest first.
func (r *Repository) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE assignee_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, assigneeID)
}

func (r *Repository) list(ctx context.Context, query string, arg any) ([]Report, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

// UpdateCategory changes a report's category without touching status or
// assignment.
func (r *Repository) UpdateCategory(ctx context.Context, id, categoryID uuid.UUID) error {
	query := `UPDATE reports SET category_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, categoryID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update report category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reportNotFoundMsg)
	}

	return nil
}

// UpdateStatus moves a report from one status to another with a
// compare-and-set on the current status, so concurrent or retried transitions
// apply at most once.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	query := `UPDATE reports SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`

	result, err := r.pool.Exec(ctx, query, id, from, to, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.casFailure(ctx, id)
	}

	return nil
}

// Reject moves a pending report to rejected and records the reason.
func (r *Repository) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE reports SET status = $3, rejection_reason = $4, updated_at = $5
		WHERE id = $1 AND status = $2`

	result, err := r.pool.Exec(ctx, query,
		id, domain.StatusPendingApproval, domain.StatusRejected, reason, time.Now())
	if err != nil {
		return fmt.Errorf("failed to reject report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.casFailure(ctx, id)
	}

	return nil
}

// SetCoAssignee hands a report off to an external maintainer. Re-invocations
// overwrite the previous co-assignee; no history is kept.
func (r *Repository) SetCoAssignee(ctx context.Context, id, maintainerID uuid.UUID) error {
	query := `UPDATE reports SET co_assignee_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, maintainerID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set co-assignee: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reportNotFoundMsg)
	}

	return nil
}

// AssignLeastLoaded routes a pending report to the technical staff member of
// the given office with the fewest open assigned reports, in one transaction.
//
// A per-office advisory lock serializes concurrent accepts for the same
// office, so the load read and the assignment write behave as one atomic
// operation: two concurrent accepts cannot both pick the same least-loaded
// member without the second seeing the first one's assignment. Ties break on
// lowest user id, which keeps retries deterministic. The report row itself is
// guarded by a compare-and-set on pending_approval.
func (r *Repository) AssignLeastLoaded(ctx context.Context, reportID, officeID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, officeID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to lock office for assignment: %w", err)
	}

	openStatuses := make([]string, 0, 3)
	for _, s := range domain.OpenStatuses() {
		openStatuses = append(openStatuses, string(s))
	}

	var assigneeID uuid.UUID
	err = tx.QueryRow(ctx, assignCandidateQuery, officeID, "technical_staff", openStatuses).Scan(&assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.RoutingUnavailable("no staff available for office")
		}
		return uuid.Nil, fmt.Errorf("failed to select least-loaded staff: %w", err)
	}

	result, err := tx.Exec(ctx, assignReportQuery,
		reportID, domain.StatusPendingApproval, domain.StatusAssigned, assigneeID, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to assign report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return uuid.Nil, r.casFailure(ctx, reportID)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit assignment: %w", err)
	}

	return assigneeID, nil
}

// casFailure distinguishes a missing report from a lost compare-and-set race
// after an UPDATE matched zero rows.
func (r *Repository) casFailure(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check report existence: %w", err)
	}
	if !exists {
		return apperr.NotFound(reportNotFoundMsg)
	}
	return apperr.Conflict("report was modified concurrently")
}
