package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hangout-service/internal/chats"
	"hangout-service/internal/models"
	"hangout-service/internal/repositories"
	"hangout-service/internal/telemetry"
	"hangout-service/internal/ws"
)

// ChatHandler manages group chat endpoints.
type ChatHandler struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	retention   *chats.RetentionService
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
	now         func() time.Time
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, retention *chats.RetentionService, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		retention:   retention,
		hub:         hub,
		audit:       audit,
		now:         time.Now,
	}
}

type chatResponse struct {
	models.GroupChat
	// TimeRemainingMS drives the countdown in clients; null when the chat
	// is permanent or kept.
	TimeRemainingMS *int64 `json:"time_remaining_ms"`
}

func (h *ChatHandler) describe(c *gin.Context, chat models.GroupChat) (chatResponse, []models.ChatParticipant, error) {
	participants, err := h.chatRepo.ListParticipants(c.Request.Context(), chat.ID)
	if err != nil {
		return chatResponse{}, nil, err
	}

	resp := chatResponse{GroupChat: chat}
	if remaining, expires := models.TimeRemaining(chat, participants, h.now()); expires {
		ms := remaining.Milliseconds()
		resp.TimeRemainingMS = &ms
	}
	return resp, participants, nil
}

// ListChats returns the chats the authenticated user belongs to.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chatList, err := h.chatRepo.ListChatsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]chatResponse, 0, len(chatList))
	for _, chat := range chatList {
		resp, _, err := h.describe(c, chat)
		if err != nil {
			respondError(c, err)
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{"chats": responses})
}

// GetChat returns one chat with its participants and their usernames.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	chat, err := h.chatRepo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	member, err := h.chatRepo.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
		return
	}

	resp, participants, err := h.describe(c, chat)
	if err != nil {
		respondError(c, err)
		return
	}

	userIDs := make([]int, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := h.userRepo.BulkUsers(c.Request.Context(), userIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	usernameByID := map[int]string{}
	for _, u := range users {
		usernameByID[u.ID] = u.Username
	}

	type participantResponse struct {
		models.ChatParticipant
		Username string `json:"username,omitempty"`
	}
	members := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		members = append(members, participantResponse{ChatParticipant: p, Username: usernameByID[p.UserID]})
	}

	c.JSON(http.StatusOK, gin.H{"chat": resp, "participants": members})
}

// Keep handles POST /chats/:chat_id/keep.
func (h *ChatHandler) Keep(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Keep *bool `json:"keep" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.retention.SetKeepChat(c.Request.Context(), chatID, userID, *req.Keep); err != nil {
		if statusForError(err) == http.StatusForbidden {
			h.emitAudit(c, "ERROR", "keep chat not allowed")
		}
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Keep chat toggled")
	c.Status(http.StatusNoContent)
}

// GetMessages returns messages in the chat in creation order.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	member, err := h.chatRepo.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	usernameByID := map[int]string{}
	if len(senderIDs) > 0 {
		users, err := h.userRepo.BulkUsers(c.Request.Context(), senderIDs)
		if err != nil {
			respondError(c, err)
			return
		}
		for _, u := range users {
			usernameByID[u.ID] = u.Username
		}
	}

	type messageResponse struct {
		models.Message
		SenderUsername string `json:"sender_username,omitempty"`
	}
	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{Message: m, SenderUsername: usernameByID[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostMessage persists and broadcasts a message. Writes to an expired chat
// are refused even before the sweeper has purged it.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.retention.EnsureWritable(c.Request.Context(), chatID, userID); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		respondError(c, err)
		return
	}

	h.hub.BroadcastMessage(chatID, msg)
	h.emitAudit(c, "INFO", "Chat message sent")
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func chatIDParam(c *gin.Context) (int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return chatID, true
}
