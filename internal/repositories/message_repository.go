package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"hangout-service/internal/models"
)

// MessageRepository defines interactions for chat messages. Messages are
// append-only; expiry purges them wholesale with their chat.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, chatID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message in a group chat.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, chat_id, sender_id, content, created_at`,
		chatID, senderID, content).
		StructScan(&msg)
	return msg, err
}

// ListMessages returns chat messages in creation order.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, chat_id, sender_id, content, created_at FROM messages WHERE chat_id=$1 ORDER BY created_at ASC, id ASC`, chatID)
	return msgs, err
}
