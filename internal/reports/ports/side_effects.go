package ports

import (
	"context"

	"github.com/google/uuid"
)

// ChatKind tags a report-scoped conversation by its second participant.
type ChatKind string

const (
	ChatKindCitizenStaff    ChatKind = "citizen_staff"
	ChatKindMaintainerStaff ChatKind = "maintainer_staff"
)

// Chat is the provisioner's view of a conversation.
type Chat struct {
	ID       uuid.UUID
	ReportID uuid.UUID
	StaffID  uuid.UUID
	SecondID uuid.UUID
	Kind     ChatKind
}

// ChatProvisioner creates the conversation between two parties tied to a
// report. EnsureChat is idempotent on the (report, unordered pair) key: a
// second call returns the first-created chat.
type ChatProvisioner interface {
	EnsureChat(ctx context.Context, reportID, staffID, secondID uuid.UUID, kind ChatKind) (*Chat, error)
}

// NotificationEmitter records a status-change notification for a target user.
// Delivery is external; only creation happens here.
type NotificationEmitter interface {
	EmitStatusChange(ctx context.Context, targetUserID, reportID uuid.UUID, previousStatus, newStatus string) error
}

// ImageURLSigner resolves stored image keys to time-limited URLs for report
// reads. Upload and storage mechanics are external.
type ImageURLSigner interface {
	SignedURL(ctx context.Context, key string) (string, error)
}
