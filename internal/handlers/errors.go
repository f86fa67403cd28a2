package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hangout-service/internal/chats"
	"hangout-service/internal/hangouts"
	"hangout-service/internal/models"
	"hangout-service/internal/repositories"
	"hangout-service/internal/scheduling"
)

// statusForError maps domain sentinel errors onto HTTP statuses: validation
// 400, missing records 404, capability failures 403, state conflicts 409,
// anything else a retryable 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidWindow),
		errors.Is(err, hangouts.ErrNoInvitees),
		errors.Is(err, hangouts.ErrInvalidResponse),
		errors.Is(err, scheduling.ErrSameUser):
		return http.StatusBadRequest

	case errors.Is(err, repositories.ErrWindowNotFound),
		errors.Is(err, repositories.ErrHangoutNotFound),
		errors.Is(err, repositories.ErrParticipantNotFound),
		errors.Is(err, repositories.ErrChatNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, chats.ErrNotPro),
		errors.Is(err, chats.ErrNotChatParticipant),
		errors.Is(err, hangouts.ErrNotCreator):
		return http.StatusForbidden

	case errors.Is(err, hangouts.ErrTerminalHangout),
		errors.Is(err, hangouts.ErrHangoutNotPending),
		errors.Is(err, hangouts.ErrCreatorRemoval),
		errors.Is(err, repositories.ErrAlreadyParticipant),
		errors.Is(err, chats.ErrChatExpired):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes the mapped status, hiding internals behind a generic
// message for server-side failures.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
