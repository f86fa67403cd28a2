package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hangout-service/internal/models"
	"hangout-service/internal/repositories"
	"hangout-service/internal/scheduling"
	"hangout-service/internal/telemetry"
)

// AvailabilityHandler manages weekly availability windows and overlap
// discovery.
type AvailabilityHandler struct {
	windows repositories.AvailabilityRepository
	engine  *scheduling.OverlapEngine
	cache   *scheduling.OverlapCache
	audit   *telemetry.AuditEmitter
}

// NewAvailabilityHandler constructs an AvailabilityHandler. cache may be
// nil.
func NewAvailabilityHandler(windows repositories.AvailabilityRepository, engine *scheduling.OverlapEngine, cache *scheduling.OverlapCache, audit *telemetry.AuditEmitter) *AvailabilityHandler {
	return &AvailabilityHandler{windows: windows, engine: engine, cache: cache, audit: audit}
}

// ListMine handles GET /availability.
func (h *AvailabilityHandler) ListMine(c *gin.Context) {
	userID := c.GetInt("userID")
	windows, err := h.windows.ListWindows(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// ListForUser handles GET /availability/:user_id.
func (h *AvailabilityHandler) ListForUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	windows, err := h.windows.ListWindows(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// Add handles POST /availability.
func (h *AvailabilityHandler) Add(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		DayOfWeek int    `json:"day_of_week"`
		StartTime string `json:"start_time" binding:"required"`
		EndTime   string `json:"end_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window := models.AvailabilityWindow{
		UserID:    userID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := window.Validate(); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.windows.AddWindow(c.Request.Context(), window)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		respondError(c, err)
		return
	}

	h.cache.InvalidateUser(c.Request.Context(), userID)
	h.emitAudit(c, "INFO", "Availability window added")
	c.JSON(http.StatusCreated, created)
}

// Delete handles DELETE /availability/:window_id.
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	windowID, err := strconv.Atoi(c.Param("window_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.windows.DeleteWindow(c.Request.Context(), windowID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.cache.InvalidateUser(c.Request.Context(), userID)
	h.emitAudit(c, "INFO", "Availability window removed")
	c.Status(http.StatusNoContent)
}

// Overlaps handles GET /overlaps/:user_id, intersecting the caller's
// windows with the target user's.
func (h *AvailabilityHandler) Overlaps(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	overlaps, err := h.engine.FindOverlaps(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlaps": overlaps})
}

func (h *AvailabilityHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
