// Package inapp provides persistent in-app notifications.
package inapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cityreport_backend/platform/apperr"
)

const (
	opCreate      = "inapp.Create"
	opList        = "inapp.List"
	opMarkRead    = "inapp.MarkRead"
	opMarkAllRead = "inapp.MarkAllRead"
	opUnreadCount = "inapp.UnreadCount"

	errRepoNotConfigured = "in-app notification repository not configured"
	errUserIDRequired    = "userId is required"

	notificationColumns = "id, user_id, title, content, report_id, previous_status, new_status, chat_id, category, is_read, created_at"
)

// Notification is a persisted in-app notification. Status-change
// notifications carry the transition pair; chat notifications carry the
// conversation reference. Title and content are display copy only.
type Notification struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	ReportID       *uuid.UUID `json:"reportId,omitempty"`
	PreviousStatus *string    `json:"previousStatus,omitempty"`
	NewStatus      *string    `json:"newStatus,omitempty"`
	ChatID         *uuid.UUID `json:"chatId,omitempty"`
	Category       string     `json:"category"`
	IsRead         bool       `json:"isRead"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// CreateParams describes a notification to persist.
type CreateParams struct {
	UserID         uuid.UUID
	Title          string
	Content        string
	ReportID       *uuid.UUID
	PreviousStatus *string
	NewStatus      *string
	ChatID         *uuid.UUID
	Category       string // "info", "success", "warning", "error"
}

// Repository provides database operations for in-app notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new in-app notification repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists a notification.
func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if r == nil || r.pool == nil {
		return Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if p.UserID == uuid.Nil {
		return Notification{}, apperr.Validation(errUserIDRequired).WithOp(opCreate)
	}

	category := p.Category
	if category == "" {
		category = "info"
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, content, report_id, previous_status, new_status, chat_id, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+notificationColumns+`
	`, uuid.New(), p.UserID, p.Title, p.Content, p.ReportID, p.PreviousStatus, p.NewStatus, p.ChatID, category).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.ReportID, &n.PreviousStatus, &n.NewStatus, &n.ChatID, &n.Category, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Notification{}, apperr.Validation("invalid userId or reportId").WithOp(opCreate)
		}
		return Notification{}, apperr.Internal(fmt.Sprintf("create in-app notification failed: %v", err)).WithOp(opCreate)
	}

	return n, nil
}

// List returns a page of the user's notifications, newest first, with the
// total count.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	if userID == uuid.Nil {
		return nil, 0, apperr.Validation(errUserIDRequired).WithOp(opList)
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count notifications failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list notifications failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.ReportID, &n.PreviousStatus, &n.NewStatus, &n.ChatID, &n.Category, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan notification failed: %v", err)).WithOp(opList)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// GetByID retrieves a notification owned by the given user.
func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (Notification, error) {
	var n Notification
	err := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.ReportID, &n.PreviousStatus, &n.NewStatus, &n.ChatID, &n.Category, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, apperr.NotFound("notification not found")
		}
		return Notification{}, apperr.Internal(fmt.Sprintf("get notification failed: %v", err))
	}
	return n, nil
}

// MarkRead marks one notification read. Scoped to the owning user.
func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark notification read failed: %v", err)).WithOp(opMarkRead)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("notification not found").WithOp(opMarkRead)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark all read failed: %v", err)).WithOp(opMarkAllRead)
	}
	return nil
}

// UnreadCount returns the user's unread notification count.
func (r *Repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opUnreadCount)
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("unread count failed: %v", err)).WithOp(opUnreadCount)
	}
	return count, nil
}

var _ Store = (*Repository)(nil)
