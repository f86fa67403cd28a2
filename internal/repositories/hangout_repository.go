package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"hangout-service/internal/models"
)

var (
	ErrHangoutNotFound     = errors.New("hangout not found")
	ErrParticipantNotFound = errors.New("hangout participant not found")
	ErrAlreadyParticipant  = errors.New("user is already a participant")
)

// HangoutRepository abstracts hangout request and participant persistence.
type HangoutRepository interface {
	CreateHangout(ctx context.Context, request models.HangoutRequest, participantIDs []int) (models.HangoutRequest, error)
	GetHangout(ctx context.Context, hangoutID int) (models.HangoutRequest, error)
	ListHangoutsForUser(ctx context.Context, userID int) ([]models.HangoutRequest, error)
	ListParticipants(ctx context.Context, hangoutID int) ([]models.HangoutParticipant, error)
	GetParticipant(ctx context.Context, hangoutID int, userID int) (models.HangoutParticipant, error)
	SetParticipantStatus(ctx context.Context, hangoutID int, userID int, status models.Status) error
	AddParticipant(ctx context.Context, hangoutID int, userID int) error
	RemoveParticipant(ctx context.Context, hangoutID int, userID int) error
	SetStatus(ctx context.Context, hangoutID int, status models.Status) error
}

// HangoutRepo is a sqlx implementation of HangoutRepository.
type HangoutRepo struct {
	db *sqlx.DB
}

// NewHangoutRepo constructs a HangoutRepo.
func NewHangoutRepo(db *sqlx.DB) *HangoutRepo {
	return &HangoutRepo{db: db}
}

const hangoutColumns = `id, creator_id, day_of_week, start_time::text AS start_time, end_time::text AS end_time, status, group_chat_id, created_at`

// CreateHangout creates the request and its participant rows atomically.
// Participant ids are deduplicated and the creator is always included, so
// the "all accepted" check covers the creator too.
func (r *HangoutRepo) CreateHangout(ctx context.Context, request models.HangoutRequest, participantIDs []int) (models.HangoutRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.HangoutRequest{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var created models.HangoutRequest
	if err = tx.QueryRowxContext(ctx,
		`INSERT INTO hangout_requests (creator_id, day_of_week, start_time, end_time, status)
         VALUES ($1, $2, $3, $4, $5) RETURNING `+hangoutColumns,
		request.CreatorID, request.DayOfWeek, request.StartTime, request.EndTime, models.StatusPending).
		StructScan(&created); err != nil {
		return models.HangoutRequest{}, err
	}

	memberSet := map[int]struct{}{request.CreatorID: {}}
	for _, id := range participantIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]int, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO hangout_participants (hangout_id, user_id, status) VALUES ($1, $2, $3)`,
			created.ID, id, models.StatusPending); err != nil {
			return models.HangoutRequest{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.HangoutRequest{}, err
	}
	return created, nil
}

// GetHangout fetches a single request.
func (r *HangoutRepo) GetHangout(ctx context.Context, hangoutID int) (models.HangoutRequest, error) {
	var hangout models.HangoutRequest
	err := r.db.GetContext(ctx, &hangout,
		`SELECT `+hangoutColumns+` FROM hangout_requests WHERE id=$1`, hangoutID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.HangoutRequest{}, ErrHangoutNotFound
	}
	return hangout, err
}

// ListHangoutsForUser returns requests the user created or participates in.
func (r *HangoutRepo) ListHangoutsForUser(ctx context.Context, userID int) ([]models.HangoutRequest, error) {
	var hangouts []models.HangoutRequest
	err := r.db.SelectContext(ctx, &hangouts,
		`SELECT DISTINCT h.id, h.creator_id, h.day_of_week, h.start_time::text AS start_time, h.end_time::text AS end_time, h.status, h.group_chat_id, h.created_at
         FROM hangout_requests h
         LEFT JOIN hangout_participants hp ON hp.hangout_id = h.id
         WHERE h.creator_id=$1 OR hp.user_id=$1
         ORDER BY h.created_at DESC, h.id DESC`, userID)
	return hangouts, err
}

// ListParticipants returns all participant rows for a hangout. Callers that
// evaluate aggregate acceptance must use this fresh read, never a cached set.
func (r *HangoutRepo) ListParticipants(ctx context.Context, hangoutID int) ([]models.HangoutParticipant, error) {
	var participants []models.HangoutParticipant
	err := r.db.SelectContext(ctx, &participants,
		`SELECT id, hangout_id, user_id, status, created_at FROM hangout_participants WHERE hangout_id=$1 ORDER BY id`, hangoutID)
	return participants, err
}

// GetParticipant fetches one participant row by hangout and user.
func (r *HangoutRepo) GetParticipant(ctx context.Context, hangoutID int, userID int) (models.HangoutParticipant, error) {
	var participant models.HangoutParticipant
	err := r.db.GetContext(ctx, &participant,
		`SELECT id, hangout_id, user_id, status, created_at FROM hangout_participants WHERE hangout_id=$1 AND user_id=$2`,
		hangoutID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.HangoutParticipant{}, ErrParticipantNotFound
	}
	return participant, err
}

// SetParticipantStatus updates exactly one participant row.
func (r *HangoutRepo) SetParticipantStatus(ctx context.Context, hangoutID int, userID int, status models.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hangout_participants SET status=$1 WHERE hangout_id=$2 AND user_id=$3`,
		status, hangoutID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// AddParticipant inserts a pending participant row without touching others.
func (r *HangoutRepo) AddParticipant(ctx context.Context, hangoutID int, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO hangout_participants (hangout_id, user_id, status) VALUES ($1, $2, $3)
         ON CONFLICT (hangout_id, user_id) DO NOTHING`,
		hangoutID, userID, models.StatusPending)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrAlreadyParticipant
	}
	return nil
}

// RemoveParticipant deletes a participant row.
func (r *HangoutRepo) RemoveParticipant(ctx context.Context, hangoutID int, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM hangout_participants WHERE hangout_id=$1 AND user_id=$2`, hangoutID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// SetStatus updates the aggregate request status.
func (r *HangoutRepo) SetStatus(ctx context.Context, hangoutID int, status models.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hangout_requests SET status=$1 WHERE id=$2`, status, hangoutID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrHangoutNotFound
	}
	return nil
}
