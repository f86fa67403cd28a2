package models

import "time"

// Status is the shared response domain for hangout requests and their
// participants.
type Status string

const (
	StatusPending     Status = "pending"
	StatusAccepted    Status = "accepted"
	StatusDeclined    Status = "declined"
	StatusRescheduled Status = "rescheduled"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusRescheduled:
		return true
	}
	return false
}

// Terminal reports whether a request in this status accepts no further
// transitions. A rescheduled request is terminal too; the follow-up request
// is created separately.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusRescheduled
}

// HangoutRequest is a proposed hangout over one chosen time window.
// GroupChatID is set exactly once, when every participant has accepted and
// the group chat is provisioned.
type HangoutRequest struct {
	ID          int       `db:"id" json:"id"`
	CreatorID   int       `db:"creator_id" json:"creator_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Status      Status    `db:"status" json:"status"`
	GroupChatID *int      `db:"group_chat_id" json:"group_chat_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// HangoutParticipant is one invited user's individual response. The creator
// always has a participant row of their own.
type HangoutParticipant struct {
	ID        int       `db:"id" json:"id"`
	HangoutID int       `db:"hangout_id" json:"hangout_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AllAccepted reports whether every participant has individually accepted.
// An empty slice is not considered accepted.
func AllAccepted(participants []HangoutParticipant) bool {
	if len(participants) == 0 {
		return false
	}
	for _, p := range participants {
		if p.Status != StatusAccepted {
			return false
		}
	}
	return true
}
