package transport

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest is the request body for posting a chat message.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// ChatResponse is the response body for a chat.
type ChatResponse struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"reportId"`
	StaffID   uuid.UUID `json:"staffId"`
	SecondID  uuid.UUID `json:"secondId"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageResponse is the response body for a chat message.
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chatId"`
	SenderID  uuid.UUID `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageListResponse is the response body for a page of messages.
type MessageListResponse struct {
	Items []MessageResponse `json:"items"`
	Total int               `json:"total"`
}
