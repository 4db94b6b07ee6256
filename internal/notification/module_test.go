package notification

import (
	"context"
	"testing"

	"cityreport_backend/internal/notification/inapp"
	"cityreport_backend/internal/notification/sse"
	"cityreport_backend/internal/scheduler"
	"cityreport_backend/platform/logger"

	"github.com/google/uuid"
)

type testEmailQueue struct {
	calls []scheduler.NotificationEmailPayload
}

func (q *testEmailQueue) EnqueueNotificationEmail(_ context.Context, payload scheduler.NotificationEmailPayload) error {
	q.calls = append(q.calls, payload)
	return nil
}

type testNotificationStore struct {
	created []inapp.CreateParams
}

func (s *testNotificationStore) Create(_ context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	s.created = append(s.created, p)
	return inapp.Notification{
		ID:             uuid.New(),
		UserID:         p.UserID,
		Title:          p.Title,
		Content:        p.Content,
		ReportID:       p.ReportID,
		PreviousStatus: p.PreviousStatus,
		NewStatus:      p.NewStatus,
		ChatID:         p.ChatID,
		Category:       p.Category,
	}, nil
}

func (s *testNotificationStore) List(_ context.Context, _ uuid.UUID, _, _ int) ([]inapp.Notification, int, error) {
	return nil, 0, nil
}

func (s *testNotificationStore) MarkRead(_ context.Context, _, _ uuid.UUID) error { return nil }

func (s *testNotificationStore) MarkAllRead(_ context.Context, _ uuid.UUID) error { return nil }

func (s *testNotificationStore) UnreadCount(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}

func newTestModule(store inapp.Store, queue scheduler.EmailScheduler) *Module {
	log := logger.New("development")
	svc := inapp.NewService(store, log)
	sseSvc := sse.New()
	svc.SetSSE(sseSvc)
	return &Module{Inapp: svc, SSE: sseSvc, emailQueue: queue, log: log}
}

func TestStatusLabels(t *testing.T) {
	cases := map[string]string{
		"pending_approval": "pending approval",
		"in_progress":      "in progress",
		"resolved":         "resolved",
		"something_else":   "something_else",
	}
	for status, want := range cases {
		if got := label(status); got != want {
			t.Errorf("label(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	cases := map[string]string{
		"resolved":    "success",
		"rejected":    "warning",
		"assigned":    "info",
		"in_progress": "info",
	}
	for status, want := range cases {
		if got := categoryFor(status); got != want {
			t.Errorf("categoryFor(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestEmitStatusChangePersistsTransitionPair(t *testing.T) {
	store := &testNotificationStore{}
	queue := &testEmailQueue{}
	m := newTestModule(store, queue)

	reportID := uuid.New()
	err := m.EmitStatusChange(context.Background(), uuid.New(), reportID, "pending_approval", "assigned")
	if err != nil {
		t.Fatalf("EmitStatusChange failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(store.created))
	}
	p := store.created[0]
	if p.PreviousStatus == nil || *p.PreviousStatus != "pending_approval" {
		t.Errorf("previous status not persisted, got %v", p.PreviousStatus)
	}
	if p.NewStatus == nil || *p.NewStatus != "assigned" {
		t.Errorf("new status not persisted, got %v", p.NewStatus)
	}
	if p.ReportID == nil || *p.ReportID != reportID {
		t.Errorf("report reference not persisted, got %v", p.ReportID)
	}
	if len(queue.calls) != 1 {
		t.Errorf("expected 1 email mirror enqueue, got %d", len(queue.calls))
	}
}

func TestEmitChatMessagePersistsChatReference(t *testing.T) {
	store := &testNotificationStore{}
	m := newTestModule(store, &testEmailQueue{})

	reportID := uuid.New()
	chatID := uuid.New()
	err := m.EmitChatMessage(context.Background(), uuid.New(), reportID, chatID)
	if err != nil {
		t.Fatalf("EmitChatMessage failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(store.created))
	}
	p := store.created[0]
	if p.ChatID == nil || *p.ChatID != chatID {
		t.Errorf("chat reference not persisted, got %v", p.ChatID)
	}
	if p.ReportID == nil || *p.ReportID != reportID {
		t.Errorf("report reference not persisted, got %v", p.ReportID)
	}
	if p.PreviousStatus != nil || p.NewStatus != nil {
		t.Errorf("chat notification must not carry a status transition, got %v -> %v", p.PreviousStatus, p.NewStatus)
	}
}

func TestEmitStatusChangeFailsWithoutStore(t *testing.T) {
	queue := &testEmailQueue{}
	m := NewModule(nil, queue, logger.New("development"))

	err := m.EmitStatusChange(context.Background(), uuid.New(), uuid.New(), "pending_approval", "assigned")
	if err == nil {
		t.Fatal("expected error when the notification store is not configured")
	}
	if len(queue.calls) != 0 {
		t.Errorf("email mirror must not run when the in-app write failed, got %d calls", len(queue.calls))
	}
}
