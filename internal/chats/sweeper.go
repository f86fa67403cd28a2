package chats

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"hangout-service/internal/models"
	"hangout-service/internal/observability"
	"hangout-service/internal/repositories"
)

// ExpiryNotifier tells live viewers their chat is gone. The websocket hub
// implements it.
type ExpiryNotifier interface {
	BroadcastExpiry(chatID int)
}

// Sweeper purges expired chats on a schedule. It lives outside the hangout
// state machine: expiry evaluation stays a pure read everywhere else, and
// only this job deletes anything.
type Sweeper struct {
	chats    repositories.ChatRepository
	notifier ExpiryNotifier
	cron     *cron.Cron
	spec     string
	now      func() time.Time
}

// NewSweeper constructs a sweeper with a cron spec such as "@every 1h".
// notifier may be nil.
func NewSweeper(chats repositories.ChatRepository, notifier ExpiryNotifier, spec string) *Sweeper {
	return &Sweeper{
		chats:    chats,
		notifier: notifier,
		cron:     cron.New(),
		spec:     spec,
		now:      time.Now,
	}
}

// Start registers and launches the sweep job.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("chat sweeper started spec=%q", s.spec)
	return nil
}

// Stop halts scheduling; a running sweep finishes on its own.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.now()
	candidates, err := s.chats.ListExpiringBefore(ctx, now)
	if err != nil {
		log.Printf("chat sweep: list candidates failed: %v", err)
		return
	}

	for _, chat := range candidates {
		participants, err := s.chats.ListParticipants(ctx, chat.ID)
		if err != nil {
			log.Printf("chat sweep: list participants for chat %d failed: %v", chat.ID, err)
			continue
		}
		// A keep flag set after the deadline still saves the chat.
		if !models.IsExpired(chat, participants, now) {
			continue
		}

		if err := s.chats.DeleteChat(ctx, chat.ID); err != nil {
			log.Printf("chat sweep: delete chat %d failed: %v", chat.ID, err)
			continue
		}

		if s.notifier != nil {
			s.notifier.BroadcastExpiry(chat.ID)
		}
		observability.IncChatSwept()
		_ = observability.PublishEvent(ctx, "chats.expired", observability.EventEnvelope{
			EventType: "hangout_events",
			EventName: "chat_expired",
			Payload: map[string]interface{}{
				"chat_id":    chat.ID,
				"hangout_id": chat.HangoutID,
				"expired_at": chat.ExpiresAt,
			},
		})
		log.Printf("chat sweep: removed expired chat %d (hangout %d)", chat.ID, chat.HangoutID)
	}
}
