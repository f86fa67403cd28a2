package hangouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hangout-service/internal/models"
	"hangout-service/internal/observability"
	"hangout-service/internal/repositories"
)

var (
	// ErrNoInvitees rejects a hangout with nobody besides the creator.
	ErrNoInvitees = errors.New("hangout needs at least one participant besides the creator")
	// ErrTerminalHangout rejects mutations of a request that already
	// reached accepted, declined or rescheduled.
	ErrTerminalHangout = errors.New("hangout is in a terminal state")
	// ErrHangoutNotPending rejects participant add/remove once responses
	// have settled the request.
	ErrHangoutNotPending = errors.New("hangout is no longer pending")
	// ErrInvalidResponse rejects statuses outside the response domain.
	ErrInvalidResponse = errors.New("invalid participant response")
	// ErrNotCreator rejects participant management by anyone else.
	ErrNotCreator = errors.New("only the creator may manage participants")
	// ErrCreatorRemoval keeps the creator's participant row in place.
	ErrCreatorRemoval = errors.New("creator cannot be removed from a hangout")
)

// Service drives the hangout request lifecycle: creation, per-participant
// responses, aggregate status, and chat provisioning on full acceptance.
type Service struct {
	hangouts repositories.HangoutRepository
	chats    repositories.ChatRepository
	chatTTL  time.Duration
	now      func() time.Time
}

// NewService constructs the lifecycle service.
func NewService(hangouts repositories.HangoutRepository, chats repositories.ChatRepository, chatTTL time.Duration) *Service {
	return &Service{
		hangouts: hangouts,
		chats:    chats,
		chatTTL:  chatTTL,
		now:      time.Now,
	}
}

// Create validates the window, requires at least one invitee besides the
// creator, and materializes the request with every participant pending.
// The repository deduplicates invitees and always includes the creator, so
// the creator's own acceptance counts toward the aggregate.
func (s *Service) Create(ctx context.Context, window models.AvailabilityWindow, creatorID int, participantIDs []int) (models.HangoutRequest, error) {
	if err := window.Validate(); err != nil {
		return models.HangoutRequest{}, err
	}

	invitees := 0
	seen := map[int]struct{}{creatorID: {}}
	for _, id := range participantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		invitees++
	}
	if invitees == 0 {
		return models.HangoutRequest{}, ErrNoInvitees
	}

	request := models.HangoutRequest{
		CreatorID: creatorID,
		DayOfWeek: window.DayOfWeek,
		StartTime: window.StartTime,
		EndTime:   window.EndTime,
	}
	created, err := s.hangouts.CreateHangout(ctx, request, participantIDs)
	if err != nil {
		return models.HangoutRequest{}, err
	}

	observability.IncHangoutStatus(string(models.StatusPending))
	s.publishEvent(ctx, "hangouts.created", "hangout_created", map[string]interface{}{
		"hangout_id": created.ID,
		"creator_id": created.CreatorID,
	})
	return created, nil
}

// Respond records one participant's response and re-evaluates the aggregate
// status from a fresh read of every participant row.
//
// Decline policy: a single decline settles the whole request as declined.
// Reschedule behaves the same way; the follow-up request is created
// separately by the caller.
func (s *Service) Respond(ctx context.Context, hangoutID int, userID int, status models.Status) error {
	if !status.Valid() || status == models.StatusPending {
		return fmt.Errorf("%w: %q", ErrInvalidResponse, status)
	}

	hangout, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return err
	}

	if hangout.Status.Terminal() {
		// Re-accepting an accepted hangout is an idempotent no-op;
		// everything else is a conflict.
		if hangout.Status == models.StatusAccepted && status == models.StatusAccepted {
			if _, err := s.hangouts.GetParticipant(ctx, hangoutID, userID); err != nil {
				return err
			}
			return nil
		}
		return ErrTerminalHangout
	}

	if err := s.hangouts.SetParticipantStatus(ctx, hangoutID, userID, status); err != nil {
		return err
	}

	switch status {
	case models.StatusDeclined:
		if err := s.hangouts.SetStatus(ctx, hangoutID, models.StatusDeclined); err != nil {
			return err
		}
		observability.IncHangoutStatus(string(models.StatusDeclined))
		s.publishEvent(ctx, "hangouts.declined", "hangout_declined", map[string]interface{}{
			"hangout_id": hangoutID,
			"user_id":    userID,
		})
		return nil

	case models.StatusRescheduled:
		if err := s.hangouts.SetStatus(ctx, hangoutID, models.StatusRescheduled); err != nil {
			return err
		}
		observability.IncHangoutStatus(string(models.StatusRescheduled))
		return nil
	}

	// Accepted: the aggregate check must run against the rows as they are
	// now, not a cached set, or two racing acceptors can both miss the
	// final state.
	participants, err := s.hangouts.ListParticipants(ctx, hangoutID)
	if err != nil {
		return err
	}
	if !models.AllAccepted(participants) {
		return nil
	}
	return s.provision(ctx, hangoutID, userID)
}

// provision creates the group chat exactly once. The storage layer holds
// the uniqueness guard, so losing the race is a silent no-op here.
func (s *Service) provision(ctx context.Context, hangoutID int, userID int) error {
	chat, created, err := s.chats.ProvisionForHangout(ctx, hangoutID, s.now().Add(s.chatTTL))
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	observability.IncHangoutStatus(string(models.StatusAccepted))
	observability.IncChatProvisioned()
	s.publishEvent(ctx, "hangouts.accepted", "hangout_accepted", map[string]interface{}{
		"hangout_id": hangoutID,
		"user_id":    userID,
	})
	s.publishEvent(ctx, "chats.provisioned", "chat_provisioned", map[string]interface{}{
		"hangout_id": hangoutID,
		"chat_id":    chat.ID,
		"expires_at": chat.ExpiresAt,
	})
	return nil
}

// AddParticipant invites another user while the request is still pending.
// The new row starts pending and never triggers aggregate re-evaluation.
func (s *Service) AddParticipant(ctx context.Context, hangoutID int, actorID int, userID int) error {
	hangout, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return err
	}
	if hangout.Status != models.StatusPending {
		return ErrHangoutNotPending
	}
	if hangout.CreatorID != actorID {
		return ErrNotCreator
	}
	return s.hangouts.AddParticipant(ctx, hangoutID, userID)
}

// RemoveParticipant uninvites a user while the request is still pending.
// The creator's own row stays; it anchors the aggregate acceptance check.
func (s *Service) RemoveParticipant(ctx context.Context, hangoutID int, actorID int, userID int) error {
	hangout, err := s.hangouts.GetHangout(ctx, hangoutID)
	if err != nil {
		return err
	}
	if hangout.Status != models.StatusPending {
		return ErrHangoutNotPending
	}
	if hangout.CreatorID != actorID {
		return ErrNotCreator
	}
	if userID == hangout.CreatorID {
		return ErrCreatorRemoval
	}
	return s.hangouts.RemoveParticipant(ctx, hangoutID, userID)
}

func (s *Service) publishEvent(ctx context.Context, routingKey, name string, payload map[string]interface{}) {
	_ = observability.PublishEvent(ctx, routingKey, observability.EventEnvelope{
		EventType: "hangout_events",
		EventName: name,
		Payload:   payload,
	})
}
