package models

import "time"

// GroupChat is the ephemeral chat provisioned when a hangout reaches full
// acceptance. At most one exists per hangout.
type GroupChat struct {
	ID          int       `db:"id" json:"id"`
	HangoutID   int       `db:"hangout_id" json:"hangout_id"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
	IsPermanent bool      `db:"is_permanent" json:"is_permanent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChatParticipant is one chat member. KeepChat may only be set true by a
// pro-tier user and exempts the chat from expiry for everyone.
type ChatParticipant struct {
	ChatID   int       `db:"chat_id" json:"chat_id"`
	UserID   int       `db:"user_id" json:"user_id"`
	KeepChat bool      `db:"keep_chat" json:"keep_chat"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// Message is an append-only chat message, ordered by creation time.
type Message struct {
	ID        int       `db:"id" json:"id"`
	ChatID    int       `db:"chat_id" json:"chat_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatEvent is broadcast through websockets to chat viewers.
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}

// IsKept reports whether any participant holds the chat open.
func IsKept(participants []ChatParticipant) bool {
	for _, p := range participants {
		if p.KeepChat {
			return true
		}
	}
	return false
}

// IsExpired is the single expiry predicate. A chat is expired only when it
// is not permanent, no participant keeps it, and its deadline has passed.
// Readers must never consult is_permanent alone.
func IsExpired(chat GroupChat, participants []ChatParticipant, now time.Time) bool {
	if chat.IsPermanent || IsKept(participants) {
		return false
	}
	return !now.Before(chat.ExpiresAt)
}

// TimeRemaining returns how long the chat has left, zero when already
// expired, and false when the chat does not expire at all.
func TimeRemaining(chat GroupChat, participants []ChatParticipant, now time.Time) (time.Duration, bool) {
	if chat.IsPermanent || IsKept(participants) {
		return 0, false
	}
	remaining := chat.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
