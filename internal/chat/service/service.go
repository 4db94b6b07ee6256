package service

import (
	"context"
	"strings"

	"cityreport_backend/internal/chat/repository"
	"cityreport_backend/internal/chat/transport"
	"cityreport_backend/internal/events"
	"cityreport_backend/platform/apperr"
	"cityreport_backend/platform/logger"

	"github.com/google/uuid"
)

// Chat kinds.
const (
	KindCitizenStaff    = "citizen_staff"
	KindMaintainerStaff = "maintainer_staff"
)

// MessageNotifier delivers an in-app notification for a new chat message.
// Implemented by the adapters package against the notification module.
type MessageNotifier interface {
	EmitChatMessage(ctx context.Context, targetUserID, reportID, chatID uuid.UUID) error
}

// Service provides report-scoped chat operations.
type Service struct {
	repo     *repository.Repository
	notifier MessageNotifier
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new chat service.
func New(repo *repository.Repository, notifier MessageNotifier, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, eventBus: eventBus, log: log}
}

// Ensure provisions the chat for a report and participant pair, returning
// the existing chat when one is already there. Safe to call repeatedly.
func (s *Service) Ensure(ctx context.Context, reportID, staffID, secondID uuid.UUID, kind string) (*repository.Chat, error) {
	if kind != KindCitizenStaff && kind != KindMaintainerStaff {
		return nil, apperr.Validation("unknown chat kind")
	}
	if staffID == secondID {
		return nil, apperr.Validation("a chat needs two distinct participants")
	}
	return s.repo.Ensure(ctx, reportID, staffID, secondID, kind)
}

// ListMine lists the chats the user takes part in.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]transport.ChatResponse, error) {
	chats, err := s.repo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ChatResponse, len(chats))
	for i := range chats {
		out[i] = toChatResponse(&chats[i])
	}
	return out, nil
}

// ListMessages lists a chat's messages. Participants only.
func (s *Service) ListMessages(ctx context.Context, chatID, userID uuid.UUID, limit, offset int) (*transport.MessageListResponse, error) {
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.repo.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]transport.MessageResponse, len(messages))
	for i := range messages {
		items[i] = toMessageResponse(&messages[i])
	}
	return &transport.MessageListResponse{Items: items, Total: len(items)}, nil
}

// SendMessage posts a message and notifies the other participant.
// Participants only.
func (s *Service) SendMessage(ctx context.Context, chatID, senderID uuid.UUID, req transport.SendMessageRequest) (*transport.MessageResponse, error) {
	chat, err := s.requireParticipant(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperr.Validation("message body is required")
	}

	message, err := s.repo.CreateMessage(ctx, chatID, senderID, body)
	if err != nil {
		return nil, err
	}

	recipientID := chat.StaffID
	if senderID == chat.StaffID {
		recipientID = chat.SecondID
	}

	resp := toMessageResponse(message)
	var sideEffectErr *apperr.Error
	if s.notifier != nil {
		if err := s.notifier.EmitChatMessage(ctx, recipientID, chat.ReportID, chat.ID); err != nil {
			if s.log != nil {
				s.log.SideEffectFailure(chat.ReportID.String(), "message_notification", err)
			}
			sideEffectErr = apperr.SideEffect("notification emission failed", err)
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.ChatMessageSent{
			BaseEvent:   events.NewBaseEvent(),
			ChatID:      chat.ID,
			ReportID:    chat.ReportID,
			MessageID:   message.ID,
			SenderID:    senderID,
			RecipientID: recipientID,
		})
	}

	if sideEffectErr != nil {
		return &resp, sideEffectErr
	}
	return &resp, nil
}

func (s *Service) requireParticipant(ctx context.Context, chatID, userID uuid.UUID) (*repository.Chat, error) {
	chat, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.StaffID != userID && chat.SecondID != userID {
		return nil, apperr.Forbidden("not a participant of this chat")
	}
	return chat, nil
}

func toChatResponse(c *repository.Chat) transport.ChatResponse {
	return transport.ChatResponse{
		ID:        c.ID,
		ReportID:  c.ReportID,
		StaffID:   c.StaffID,
		SecondID:  c.SecondID,
		Kind:      c.Kind,
		CreatedAt: c.CreatedAt,
	}
}

func toMessageResponse(m *repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
