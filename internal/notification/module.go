// Package notification provides persistent in-app notifications, their HTTP
// surface, real-time push over SSE, and best-effort email mirroring through
// the background queue.
package notification

import (
	"context"
	"fmt"

	apphttp "cityreport_backend/internal/http"
	notifhandler "cityreport_backend/internal/notification/handler"
	"cityreport_backend/internal/notification/inapp"
	"cityreport_backend/internal/notification/sse"
	"cityreport_backend/internal/scheduler"
	"cityreport_backend/platform/httpkit"
	"cityreport_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// statusLabels translate machine statuses into notification copy.
var statusLabels = map[string]string{
	"pending_approval": "pending approval",
	"assigned":         "assigned",
	"in_progress":      "in progress",
	"suspended":        "suspended",
	"resolved":         "resolved",
	"rejected":         "rejected",
}

// Module represents the notification domain module
type Module struct {
	Inapp *inapp.Service
	SSE   *sse.Service

	handler    *notifhandler.HTTPHandler
	emailQueue scheduler.EmailScheduler
	log        *logger.Logger
}

// NewModule creates a new notification module with all dependencies wired.
// emailQueue may be nil when background email delivery is disabled.
func NewModule(pool *pgxpool.Pool, emailQueue scheduler.EmailScheduler, log *logger.Logger) *Module {
	repo := inapp.New(pool)
	svc := inapp.NewService(repo, log)
	sseSvc := sse.New()
	svc.SetSSE(sseSvc)

	return &Module{
		Inapp:      svc,
		SSE:        sseSvc,
		handler:    notifhandler.NewHTTPHandler(svc),
		emailQueue: emailQueue,
		log:        log,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes registers the module's routes under /api/v1/notifications
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.handler.RegisterRoutes(notifications)

	ctx.Protected.GET("/notifications/stream", m.SSE.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		identity := httpkit.GetIdentity(c)
		if identity == nil || !identity.IsAuthenticated() {
			return uuid.Nil, false
		}
		return identity.UserID(), true
	}))
}

// EmitStatusChange notifies the report creator of a committed status
// transition. The in-app row is the authoritative delivery; the email mirror
// is best-effort.
func (m *Module) EmitStatusChange(ctx context.Context, targetUserID, reportID uuid.UUID, previousStatus, newStatus string) error {
	title := fmt.Sprintf("Your report is now %s", label(newStatus))
	content := fmt.Sprintf("The status of your report changed from %s to %s.", label(previousStatus), label(newStatus))

	notif, err := m.Inapp.Send(ctx, inapp.SendParams{
		UserID:         targetUserID,
		Title:          title,
		Content:        content,
		ReportID:       &reportID,
		PreviousStatus: &previousStatus,
		NewStatus:      &newStatus,
		Category:       categoryFor(newStatus),
	})
	if err != nil {
		return err
	}

	m.mirrorByEmail(ctx, notif)
	return nil
}

// EmitChatMessage notifies a chat participant of a new message.
func (m *Module) EmitChatMessage(ctx context.Context, targetUserID, reportID, chatID uuid.UUID) error {
	notif, err := m.Inapp.Send(ctx, inapp.SendParams{
		UserID:   targetUserID,
		Title:    "New message on your report",
		Content:  "You received a new message in a report conversation.",
		ReportID: &reportID,
		ChatID:   &chatID,
		Category: "info",
	})
	if err != nil {
		return err
	}

	m.SSE.Publish(targetUserID, sse.Event{
		Type:     sse.EventChatMessage,
		ReportID: reportID,
		Data:     map[string]interface{}{"chatId": chatID},
	})

	m.mirrorByEmail(ctx, notif)
	return nil
}

func (m *Module) mirrorByEmail(ctx context.Context, notif inapp.Notification) {
	if m.emailQueue == nil {
		return
	}

	err := m.emailQueue.EnqueueNotificationEmail(ctx, scheduler.NotificationEmailPayload{
		NotificationID: notif.ID.String(),
		UserID:         notif.UserID.String(),
	})
	if err != nil && m.log != nil {
		m.log.Warn("notification email enqueue failed",
			"notificationId", notif.ID.String(),
			"error", err.Error(),
		)
	}
}

func label(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

func categoryFor(status string) string {
	switch status {
	case "resolved":
		return "success"
	case "rejected":
		return "warning"
	default:
		return "info"
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
