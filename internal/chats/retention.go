package chats

import (
	"context"
	"errors"
	"time"

	"hangout-service/internal/models"
	"hangout-service/internal/observability"
	"hangout-service/internal/repositories"
)

var (
	// ErrNotPro rejects keep_chat=true from users without the pro tier.
	ErrNotPro = errors.New("keeping a chat requires the pro tier")
	// ErrNotChatParticipant rejects actions by non-members.
	ErrNotChatParticipant = errors.New("user is not a chat participant")
	// ErrChatExpired rejects writes to a chat past its deadline.
	ErrChatExpired = errors.New("chat has expired")
)

// RetentionService owns the keep toggle and the expiry view of a chat. The
// pro capability is read from the identity collaborator, never stored here.
type RetentionService struct {
	chats repositories.ChatRepository
	users repositories.UserRepository
	now   func() time.Time
}

// NewRetentionService constructs a RetentionService.
func NewRetentionService(chats repositories.ChatRepository, users repositories.UserRepository) *RetentionService {
	return &RetentionService{chats: chats, users: users, now: time.Now}
}

// SetKeepChat flips the caller's own keep flag. Turning it on requires the
// pro capability; one kept flag holds the chat open for every member.
// Turning it off never needs the capability.
func (s *RetentionService) SetKeepChat(ctx context.Context, chatID int, userID int, keep bool) error {
	if _, err := s.chats.GetChat(ctx, chatID); err != nil {
		return err
	}

	member, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotChatParticipant
	}

	if keep {
		user, err := s.users.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsPro {
			return ErrNotPro
		}
	}

	if err := s.chats.SetKeepChat(ctx, chatID, userID, keep); err != nil {
		return err
	}

	_ = observability.PublishEvent(ctx, "chats.keep", observability.EventEnvelope{
		EventType: "hangout_events",
		EventName: "chat_keep_toggled",
		Payload: map[string]interface{}{
			"chat_id": chatID,
			"user_id": userID,
			"keep":    keep,
		},
	})
	return nil
}

// EnsureWritable verifies membership and liveness before a message write.
func (s *RetentionService) EnsureWritable(ctx context.Context, chatID int, userID int) error {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return err
	}

	member, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotChatParticipant
	}

	participants, err := s.chats.ListParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	if models.IsExpired(chat, participants, s.now()) {
		return ErrChatExpired
	}
	return nil
}
