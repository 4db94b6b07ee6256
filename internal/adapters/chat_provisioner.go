package adapters

import (
	"context"

	"github.com/google/uuid"

	chatsvc "cityreport_backend/internal/chat/service"
	"cityreport_backend/internal/reports/ports"
)

// ChatProvisioner adapts the chat service for the report engine. The
// underlying Ensure call is idempotent, so re-accepting after a partial
// failure reuses the existing conversation.
type ChatProvisioner struct {
	chats *chatsvc.Service
}

// NewChatProvisioner creates a new chat provisioner adapter.
func NewChatProvisioner(chats *chatsvc.Service) *ChatProvisioner {
	return &ChatProvisioner{chats: chats}
}

// EnsureChat creates or returns the report conversation for the given pair.
func (a *ChatProvisioner) EnsureChat(ctx context.Context, reportID, staffID, secondID uuid.UUID, kind ports.ChatKind) (*ports.Chat, error) {
	chat, err := a.chats.Ensure(ctx, reportID, staffID, secondID, string(kind))
	if err != nil {
		return nil, err
	}

	return &ports.Chat{
		ID:       chat.ID,
		ReportID: chat.ReportID,
		StaffID:  chat.StaffID,
		SecondID: chat.SecondID,
		Kind:     ports.ChatKind(chat.Kind),
	}, nil
}

// Compile-time check that ChatProvisioner implements ports.ChatProvisioner.
var _ ports.ChatProvisioner = (*ChatProvisioner)(nil)
