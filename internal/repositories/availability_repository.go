package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hangout-service/internal/models"
)

var ErrWindowNotFound = errors.New("availability window not found")

// AvailabilityRepository abstracts weekly availability persistence.
type AvailabilityRepository interface {
	ListWindows(ctx context.Context, userID int) ([]models.AvailabilityWindow, error)
	AddWindow(ctx context.Context, window models.AvailabilityWindow) (models.AvailabilityWindow, error)
	GetWindow(ctx context.Context, windowID int) (models.AvailabilityWindow, error)
	DeleteWindow(ctx context.Context, windowID int, userID int) error
}

// AvailabilityRepo is a sqlx implementation of AvailabilityRepository.
type AvailabilityRepo struct {
	db *sqlx.DB
}

// NewAvailabilityRepo constructs an AvailabilityRepo.
func NewAvailabilityRepo(db *sqlx.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

const windowColumns = `id, user_id, day_of_week, start_time::text AS start_time, end_time::text AS end_time, created_at`

// ListWindows returns all windows for a user ordered by weekday then start.
func (r *AvailabilityRepo) ListWindows(ctx context.Context, userID int) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := r.db.SelectContext(ctx, &windows,
		`SELECT `+windowColumns+` FROM availability WHERE user_id=$1 ORDER BY day_of_week, start_time`, userID)
	return windows, err
}

// AddWindow inserts a window for its owning user.
func (r *AvailabilityRepo) AddWindow(ctx context.Context, window models.AvailabilityWindow) (models.AvailabilityWindow, error) {
	var created models.AvailabilityWindow
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO availability (user_id, day_of_week, start_time, end_time) VALUES ($1, $2, $3, $4)
         RETURNING `+windowColumns,
		window.UserID, window.DayOfWeek, window.StartTime, window.EndTime).
		StructScan(&created)
	return created, err
}

// GetWindow fetches a single window by id.
func (r *AvailabilityRepo) GetWindow(ctx context.Context, windowID int) (models.AvailabilityWindow, error) {
	var window models.AvailabilityWindow
	err := r.db.GetContext(ctx, &window,
		`SELECT `+windowColumns+` FROM availability WHERE id=$1`, windowID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AvailabilityWindow{}, ErrWindowNotFound
	}
	return window, err
}

// DeleteWindow removes a window owned by the user. Deleting someone else's
// window reports not found rather than leaking its existence.
func (r *AvailabilityRepo) DeleteWindow(ctx context.Context, windowID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM availability WHERE id=$1 AND user_id=$2`, windowID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrWindowNotFound
	}
	return nil
}
