package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow marks a window that fails validation.
var ErrInvalidWindow = errors.New("invalid availability window")

const clockLayout = "15:04:05"

// AvailabilityWindow is one recurring weekly availability interval
// [StartTime, EndTime) on a fixed weekday. Times are wall-clock HH:MM:SS
// with no timezone; all users are assumed to share a reference zone.
type AvailabilityWindow struct {
	ID        int       `db:"id" json:"id,omitempty"`
	UserID    int       `db:"user_id" json:"user_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Validate checks weekday range, clock format and start < end. Overnight
// wraparound is not supported.
func (w AvailabilityWindow) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidWindow, w.DayOfWeek)
	}
	if _, err := time.Parse(clockLayout, w.StartTime); err != nil {
		return fmt.Errorf("%w: start_time %q", ErrInvalidWindow, w.StartTime)
	}
	if _, err := time.Parse(clockLayout, w.EndTime); err != nil {
		return fmt.Errorf("%w: end_time %q", ErrInvalidWindow, w.EndTime)
	}
	if w.StartTime >= w.EndTime {
		return fmt.Errorf("%w: start %s not before end %s", ErrInvalidWindow, w.StartTime, w.EndTime)
	}
	return nil
}

// Overlap intersects two windows. The result carries w's user id as the
// reference user, has no persisted identity, and is valid only when both
// windows share a weekday and the intersection is non-empty.
//
// Zero-padded HH:MM:SS strings compare correctly byte-wise, which is the
// same ordering the database applies to TIME columns.
func (w AvailabilityWindow) Overlap(other AvailabilityWindow) (AvailabilityWindow, bool) {
	if w.DayOfWeek != other.DayOfWeek {
		return AvailabilityWindow{}, false
	}

	start := maxClock(w.StartTime, other.StartTime)
	end := minClock(w.EndTime, other.EndTime)
	if start >= end {
		return AvailabilityWindow{}, false
	}

	return AvailabilityWindow{
		UserID:    w.UserID,
		DayOfWeek: w.DayOfWeek,
		StartTime: start,
		EndTime:   end,
	}, true
}

func maxClock(a, b string) string {
	if a > b {
		return a
	}
	return b
}

func minClock(a, b string) string {
	if a < b {
		return a
	}
	return b
}
