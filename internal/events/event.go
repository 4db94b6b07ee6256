package events

import (
	"github.com/google/uuid"
)

// Event names for cross-module subscriptions.
const (
	EventNameReportCreated       = "report.created"
	EventNameReportStatusChanged = "report.status_changed"
	EventNameReportCoAssigned    = "report.co_assigned"
	EventNameChatMessageSent     = "chat.message_sent"
)

// ReportCreated is published when a citizen files a new report.
type ReportCreated struct {
	BaseEvent
	ReportID   uuid.UUID
	CreatorID  uuid.UUID
	CategoryID uuid.UUID
	Anonymous  bool
}

// EventName returns the event identifier.
func (ReportCreated) EventName() string { return EventNameReportCreated }

// ReportStatusChanged is published after a report status transition has been
// durably committed.
type ReportStatusChanged struct {
	BaseEvent
	ReportID       uuid.UUID
	CreatorID      uuid.UUID
	AssigneeID     *uuid.UUID
	PreviousStatus string
	NewStatus      string
	ActorID        uuid.UUID
}

// EventName returns the event identifier.
func (ReportStatusChanged) EventName() string { return EventNameReportStatusChanged }

// ReportCoAssigned is published when a technical staff member hands a report
// off to an external maintainer.
type ReportCoAssigned struct {
	BaseEvent
	ReportID     uuid.UUID
	AssigneeID   uuid.UUID
	MaintainerID uuid.UUID
}

// EventName returns the event identifier.
func (ReportCoAssigned) EventName() string { return EventNameReportCoAssigned }

// ChatMessageSent is published when a participant posts a message in a
// report-scoped chat.
type ChatMessageSent struct {
	BaseEvent
	ChatID      uuid.UUID
	ReportID    uuid.UUID
	MessageID   uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
}

// EventName returns the event identifier.
func (ChatMessageSent) EventName() string { return EventNameChatMessageSent }
