package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hangout-service/internal/hangouts"
	"hangout-service/internal/models"
	"hangout-service/internal/repositories"
	"hangout-service/internal/telemetry"
)

// HangoutHandler manages hangout request endpoints.
type HangoutHandler struct {
	service     *hangouts.Service
	hangoutRepo repositories.HangoutRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

// NewHangoutHandler constructs a HangoutHandler.
func NewHangoutHandler(service *hangouts.Service, hangoutRepo repositories.HangoutRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *HangoutHandler {
	return &HangoutHandler{
		service:     service,
		hangoutRepo: hangoutRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// Create handles POST /hangouts. The window is typically one returned by
// the overlap endpoint, but any valid window is accepted.
func (h *HangoutHandler) Create(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		DayOfWeek      int    `json:"day_of_week"`
		StartTime      string `json:"start_time" binding:"required"`
		EndTime        string `json:"end_time" binding:"required"`
		ParticipantIDs []int  `json:"participant_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Invitees must exist before rows are written for them.
	users, err := h.userRepo.BulkUsers(c.Request.Context(), req.ParticipantIDs)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		respondError(c, err)
		return
	}
	if len(users) != len(dedupe(req.ParticipantIDs)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown participant id"})
		return
	}

	window := models.AvailabilityWindow{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	hangout, err := h.service.Create(c.Request.Context(), window, userID, req.ParticipantIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Hangout created")
	c.JSON(http.StatusCreated, gin.H{"hangout_id": hangout.ID, "hangout": hangout})
}

// List handles GET /hangouts.
func (h *HangoutHandler) List(c *gin.Context) {
	userID := c.GetInt("userID")
	hangoutList, err := h.hangoutRepo.ListHangoutsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hangouts": hangoutList})
}

// Get handles GET /hangouts/:hangout_id, returning the request with its
// participants and their usernames.
func (h *HangoutHandler) Get(c *gin.Context) {
	hangoutID, ok := hangoutIDParam(c)
	if !ok {
		return
	}

	hangout, err := h.hangoutRepo.GetHangout(c.Request.Context(), hangoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	participants, err := h.hangoutRepo.ListParticipants(c.Request.Context(), hangoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	userIDs := make([]int, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	usernameByID, err := h.usernames(c, userIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	type participantResponse struct {
		models.HangoutParticipant
		Username string `json:"username,omitempty"`
	}
	resp := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		resp = append(resp, participantResponse{HangoutParticipant: p, Username: usernameByID[p.UserID]})
	}

	c.JSON(http.StatusOK, gin.H{"hangout": hangout, "participants": resp})
}

// Respond handles POST /hangouts/:hangout_id/respond, updating the
// caller's own participant status.
func (h *HangoutHandler) Respond(c *gin.Context) {
	hangoutID, ok := hangoutIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status models.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.service.Respond(c.Request.Context(), hangoutID, userID, req.Status); err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Hangout response recorded")
	c.Status(http.StatusNoContent)
}

// AddParticipant handles POST /hangouts/:hangout_id/participants.
func (h *HangoutHandler) AddParticipant(c *gin.Context) {
	hangoutID, ok := hangoutIDParam(c)
	if !ok {
		return
	}

	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.userRepo.GetUser(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}

	actorID := c.GetInt("userID")
	if err := h.service.AddParticipant(c.Request.Context(), hangoutID, actorID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Hangout participant added")
	c.Status(http.StatusNoContent)
}

// RemoveParticipant handles DELETE /hangouts/:hangout_id/participants/:user_id.
func (h *HangoutHandler) RemoveParticipant(c *gin.Context) {
	hangoutID, ok := hangoutIDParam(c)
	if !ok {
		return
	}
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	actorID := c.GetInt("userID")
	if err := h.service.RemoveParticipant(c.Request.Context(), hangoutID, actorID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Hangout participant removed")
	c.Status(http.StatusNoContent)
}

func (h *HangoutHandler) usernames(c *gin.Context, ids []int) (map[int]string, error) {
	usernameByID := map[int]string{}
	if len(ids) == 0 {
		return usernameByID, nil
	}
	users, err := h.userRepo.BulkUsers(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		usernameByID[u.ID] = u.Username
	}
	return usernameByID, nil
}

func (h *HangoutHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func hangoutIDParam(c *gin.Context) (int, bool) {
	hangoutID, err := strconv.Atoi(c.Param("hangout_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hangout id"})
		return 0, false
	}
	return hangoutID, true
}

func dedupe(ids []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
