package repository

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

const chatNotFoundMessage = "chat not found"

// Chat represents a report-scoped conversation between two participants.
// StaffID is always the municipal side; SecondID is the citizen or the
// external maintainer depending on Kind.
type Chat struct {
	ID        uuid.UUID `db:"id"`
	ReportID  uuid.UUID `db:"report_id"`
	StaffID   uuid.UUID `db:"staff_id"`
	SecondID  uuid.UUID `db:"second_id"`
	Kind      string    `db:"kind"`
	CreatedAt time.Time `db:"created_at"`
}

// Message represents a chat message.
type Message struct {
	ID        uuid.UUID `db:"id"`
	ChatID    uuid.UUID `db:"chat_id"`
	SenderID  uuid.UUID `db:"sender_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository provides database operations for chats and messages.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new chat repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const chatColumns = `id, report_id, staff_id, second_id, kind, created_at`

func scanChat(row pgx.Row) (*Chat, error) {
	var c Chat
	err := row.Scan(&c.ID, &c.ReportID, &c.StaffID, &c.SecondID, &c.Kind, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure creates the chat for a report and participant pair, or returns the
// existing one. A unique index on (report_id, participant pair) makes
// concurrent provisioning converge on a single row.
func (r *Repository) Ensure(ctx context.Context, reportID, staffID, secondID uuid.UUID, kind string) (*Chat, error) {
	insert := `
		INSERT INTO chats (id, report_id, staff_id, second_id, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + chatColumns

	chat, err := scanChat(r.pool.QueryRow(ctx, insert, uuid.New(), reportID, staffID, secondID, kind))
	if err == nil {
		return chat, nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	// Lost the race or the chat already existed; read the winner.
	return r.getByParticipants(ctx, reportID, staffID, secondID)
}

func (r *Repository) getByParticipants(ctx context.Context, reportID, staffID, secondID uuid.UUID) (*Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats
		WHERE report_id = $1
		  AND LEAST(staff_id, second_id) = LEAST($2::uuid, $3::uuid)
		  AND GREATEST(staff_id, second_id) = GREATEST($2::uuid, $3::uuid)`

	chat, err := scanChat(r.pool.QueryRow(ctx, query, reportID, staffID, secondID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(chatNotFoundMessage)
		}
		return nil, fmt.Errorf("get chat by participants: %w", err)
	}
	return chat, nil
}

// GetByID retrieves a chat by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1`

	chat, err := scanChat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(chatNotFoundMessage)
		}
		return nil, fmt.Errorf("get chat by id: %w", err)
	}
	return chat, nil
}

// ListByParticipant lists the chats a user takes part in, newest first.
func (r *Repository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats
		WHERE staff_id = $1 OR second_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		out = append(out, *chat)
	}
	return out, rows.Err()
}

// CreateMessage appends a message to a chat.
func (r *Repository) CreateMessage(ctx context.Context, chatID, senderID uuid.UUID, body string) (*Message, error) {
	query := `
		INSERT INTO chat_messages (id, chat_id, sender_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, sender_id, body, created_at`

	var m Message
	err := r.pool.QueryRow(ctx, query, uuid.New(), chatID, senderID, body).Scan(
		&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &m, nil
}

// ListMessages lists a chat's messages oldest first.
func (r *Repository) ListMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]Message, error) {
	query := `
		SELECT id, chat_id, sender_id, body, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
