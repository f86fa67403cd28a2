package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"hangout-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository abstracts group chat persistence, including the
// exactly-once provisioning step tied to full hangout acceptance.
type ChatRepository interface {
	ProvisionForHangout(ctx context.Context, hangoutID int, expiresAt time.Time) (models.GroupChat, bool, error)
	GetChat(ctx context.Context, chatID int) (models.GroupChat, error)
	ListChatsForUser(ctx context.Context, userID int) ([]models.GroupChat, error)
	ListParticipants(ctx context.Context, chatID int) ([]models.ChatParticipant, error)
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
	SetKeepChat(ctx context.Context, chatID int, userID int, keep bool) error
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]models.GroupChat, error)
	DeleteChat(ctx context.Context, chatID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const chatColumns = `id, hangout_id, expires_at, is_permanent, created_at`

// ProvisionForHangout creates the chat, enrolls every hangout participant,
// and stamps the request accepted — all in one transaction. The conditional
// insert on the hangout_id unique constraint makes the whole step
// exactly-once: the second of two racing last-acceptors inserts nothing and
// gets created=false, never a duplicate chat.
func (r *ChatRepo) ProvisionForHangout(ctx context.Context, hangoutID int, expiresAt time.Time) (models.GroupChat, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.GroupChat{}, false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var chat models.GroupChat
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO group_chats (hangout_id, expires_at) VALUES ($1, $2)
         ON CONFLICT (hangout_id) DO NOTHING
         RETURNING `+chatColumns,
		hangoutID, expiresAt).
		StructScan(&chat)
	if errors.Is(err, sql.ErrNoRows) {
		// Already provisioned; surface the existing chat as a no-op.
		err = tx.GetContext(ctx, &chat,
			`SELECT `+chatColumns+` FROM group_chats WHERE hangout_id=$1`, hangoutID)
		if err != nil {
			return models.GroupChat{}, false, err
		}
		if err = tx.Commit(); err != nil {
			return models.GroupChat{}, false, err
		}
		return chat, false, nil
	}
	if err != nil {
		return models.GroupChat{}, false, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO chat_participants (chat_id, user_id)
         SELECT $1, user_id FROM hangout_participants WHERE hangout_id=$2`,
		chat.ID, hangoutID); err != nil {
		return models.GroupChat{}, false, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE hangout_requests SET status=$1, group_chat_id=$2 WHERE id=$3`,
		models.StatusAccepted, chat.ID, hangoutID); err != nil {
		return models.GroupChat{}, false, err
	}

	if err = tx.Commit(); err != nil {
		return models.GroupChat{}, false, err
	}
	return chat, true, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.GroupChat, error) {
	var chat models.GroupChat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM group_chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupChat{}, ErrChatNotFound
	}
	return chat, err
}

// ListChatsForUser returns chats the user belongs to, newest first.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int) ([]models.GroupChat, error) {
	var chats []models.GroupChat
	err := r.db.SelectContext(ctx, &chats,
		`SELECT c.id, c.hangout_id, c.expires_at, c.is_permanent, c.created_at
         FROM group_chats c
         INNER JOIN chat_participants cp ON cp.chat_id = c.id
         WHERE cp.user_id=$1
         ORDER BY c.created_at DESC`, userID)
	return chats, err
}

// ListParticipants returns all members of a chat.
func (r *ChatRepo) ListParticipants(ctx context.Context, chatID int) ([]models.ChatParticipant, error) {
	var participants []models.ChatParticipant
	err := r.db.SelectContext(ctx, &participants,
		`SELECT chat_id, user_id, keep_chat, joined_at FROM chat_participants WHERE chat_id=$1 ORDER BY user_id`, chatID)
	return participants, err
}

// IsParticipant checks chat membership.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// SetKeepChat flips the keep flag on the user's own participant row.
// Capability checks belong to the caller.
func (r *ChatRepo) SetKeepChat(ctx context.Context, chatID int, userID int, keep bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_participants SET keep_chat=$1 WHERE chat_id=$2 AND user_id=$3`, keep, chatID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return nil
}

// ListExpiringBefore returns non-permanent chats whose deadline has passed.
// The sweeper still applies the full expiry predicate per chat, keep flags
// included, before deleting anything.
func (r *ChatRepo) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]models.GroupChat, error) {
	var chats []models.GroupChat
	err := r.db.SelectContext(ctx, &chats,
		`SELECT `+chatColumns+` FROM group_chats WHERE is_permanent = FALSE AND expires_at <= $1 ORDER BY expires_at`, deadline)
	return chats, err
}

// DeleteChat removes the chat; participants and messages follow by cascade.
func (r *ChatRepo) DeleteChat(ctx context.Context, chatID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE hangout_requests SET group_chat_id = NULL WHERE group_chat_id=$1`, chatID); err != nil {
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM group_chats WHERE id=$1`, chatID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		err = ErrChatNotFound
		return err
	}
	return tx.Commit()
}
