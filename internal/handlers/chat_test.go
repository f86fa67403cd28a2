package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hangout-service/internal/chats"
	"hangout-service/internal/mocks"
	"hangout-service/internal/models"
	"hangout-service/internal/ws"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/chats", handler.ListChats)
	r.GET("/chats/:chat_id", handler.GetChat)
	r.POST("/chats/:chat_id/keep", handler.Keep)
	r.GET("/chats/:chat_id/messages", handler.GetMessages)
	r.POST("/chats/:chat_id/messages", handler.PostMessage)
	return r
}

func newChatHandler(chatRepo *mocks.ChatRepositoryMock, messageRepo *mocks.MessageRepositoryMock, userRepo *mocks.UserRepositoryMock) *ChatHandler {
	retention := chats.NewRetentionService(chatRepo, userRepo)
	return NewChatHandler(chatRepo, messageRepo, userRepo, retention, ws.NewHub(), nil)
}

func TestListChatsSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newChatHandler(chatRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	expiresAt := time.Now().Add(48 * time.Hour)
	chatRepo.On("ListChatsForUser", mock.Anything, 1).
		Return([]models.GroupChat{{ID: 3, HangoutID: 9, ExpiresAt: expiresAt}}, nil).Once()
	chatRepo.On("ListParticipants", mock.Anything, 3).
		Return([]models.ChatParticipant{{ChatID: 3, UserID: 1}, {ChatID: 3, UserID: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chats []struct {
			ID              int    `json:"id"`
			TimeRemainingMS *int64 `json:"time_remaining_ms"`
		} `json:"chats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chats, 1)
	require.NotNil(t, resp.Chats[0].TimeRemainingMS)
	assert.Greater(t, *resp.Chats[0].TimeRemainingMS, int64(0))

	chatRepo.AssertExpectations(t)
}

func TestListChatsKeptChatHasNoCountdown(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newChatHandler(chatRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("ListChatsForUser", mock.Anything, 1).
		Return([]models.GroupChat{{ID: 4, HangoutID: 2, ExpiresAt: time.Now().Add(-time.Hour)}}, nil).Once()
	chatRepo.On("ListParticipants", mock.Anything, 4).
		Return([]models.ChatParticipant{{ChatID: 4, UserID: 1, KeepChat: true}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chats []struct {
			TimeRemainingMS *int64 `json:"time_remaining_ms"`
		} `json:"chats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chats, 1)
	assert.Nil(t, resp.Chats[0].TimeRemainingMS)

	chatRepo.AssertExpectations(t)
}

func TestGetChatNotParticipant(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newChatHandler(chatRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, 5).Return(models.GroupChat{ID: 5}, nil).Once()
	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestKeepChatProUser(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newChatHandler(chatRepo, new(mocks.MessageRepositoryMock), userRepo)
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, 7).Return(models.GroupChat{ID: 7}, nil).Once()
	chatRepo.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil).Once()
	userRepo.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, IsPro: true}, nil).Once()
	chatRepo.On("SetKeepChat", mock.Anything, 7, 1, true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/7/keep", bytes.NewBufferString(`{"keep":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestKeepChatRequiresPro(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newChatHandler(chatRepo, new(mocks.MessageRepositoryMock), userRepo)
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, 7).Return(models.GroupChat{ID: 7}, nil).Once()
	chatRepo.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil).Once()
	userRepo.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, IsPro: false}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/7/keep", bytes.NewBufferString(`{"keep":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetMessagesSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newChatHandler(chatRepo, messageRepo, userRepo)
	router := setupChatRouter(handler)

	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	messageRepo.On("ListMessages", mock.Anything, 5).
		Return([]models.Message{{ID: 1, ChatID: 5, SenderID: 2, Content: "hey"}}, nil).Once()
	userRepo.On("BulkUsers", mock.Anything, []int{2}).
		Return([]models.User{{ID: 2, Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []struct {
			Content        string `json:"content"`
			SenderUsername string `json:"sender_username"`
		} `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "bob", resp.Messages[0].SenderUsername)

	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestPostMessageSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(chatRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, 5).
		Return(models.GroupChat{ID: 5, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	chatRepo.On("ListParticipants", mock.Anything, 5).
		Return([]models.ChatParticipant{{ChatID: 5, UserID: 1}}, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 5, 1, "hello").
		Return(models.Message{ID: 9, ChatID: 5, SenderID: 1, Content: "hello"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageExpiredChat(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(chatRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, 5).
		Return(models.GroupChat{ID: 5, ExpiresAt: time.Now().Add(-time.Hour)}, nil).Once()
	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	chatRepo.On("ListParticipants", mock.Anything, 5).
		Return([]models.ChatParticipant{{ChatID: 5, UserID: 1}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"too late"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	chatRepo.AssertExpectations(t)
}

func TestPostMessageRepoError(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(chatRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, 5).
		Return(models.GroupChat{ID: 5, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	chatRepo.On("ListParticipants", mock.Anything, 5).
		Return([]models.ChatParticipant{{ChatID: 5, UserID: 1}}, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 5, 1, "hello").
		Return(models.Message{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}
