package inapp

import (
	"context"
	"strings"

	"cityreport_backend/internal/notification/sse"
	"cityreport_backend/platform/apperr"
	"cityreport_backend/platform/logger"

	"github.com/google/uuid"
)

// Store abstracts notification persistence.
type Store interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type Service struct {
	repo Store
	sse  *sse.Service
	log  *logger.Logger
}

func NewService(repo Store, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// SetSSE injects the SSE service (circular dependency avoidance).
func (s *Service) SetSSE(sseSvc *sse.Service) {
	s.sse = sseSvc
}

// SendParams mirrors CreateParams field for field so the conversion in Send
// stays valid.
type SendParams struct {
	UserID         uuid.UUID
	Title          string
	Content        string
	ReportID       *uuid.UUID
	PreviousStatus *string
	NewStatus      *string
	ChatID         *uuid.UUID
	Category       string // "info", "success", "warning", "error"
}

// Send persists the notification and pushes it via SSE if the user is online.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	if s == nil || s.repo == nil {
		return Notification{}, apperr.Internal("in-app notification service not configured")
	}

	if strings.TrimSpace(p.Title) == "" {
		return Notification{}, apperr.Validation("notification title is required")
	}

	notif, err := s.repo.Create(ctx, CreateParams(p))
	if err != nil {
		return Notification{}, err
	}

	if s.sse != nil {
		event := sse.Event{
			Type:    sse.EventNotificationCreated,
			Message: notif.Title,
			Data:    notif,
		}
		if notif.ReportID != nil {
			event.ReportID = *notif.ReportID
		}
		s.sse.Publish(notif.UserID, event)
	}

	return notif, nil
}

// List returns a page of the user's notifications.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, userID, limit, offset)
}

// MarkRead marks one notification read.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of the user read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
