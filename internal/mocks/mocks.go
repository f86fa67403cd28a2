package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"hangout-service/internal/models"
	"hangout-service/internal/repositories"
)

type AvailabilityRepositoryMock struct {
	mock.Mock
}

func (m *AvailabilityRepositoryMock) ListWindows(ctx context.Context, userID int) ([]models.AvailabilityWindow, error) {
	args := m.Called(ctx, userID)
	var windows []models.AvailabilityWindow
	if val := args.Get(0); val != nil {
		windows = val.([]models.AvailabilityWindow)
	}
	return windows, args.Error(1)
}

func (m *AvailabilityRepositoryMock) AddWindow(ctx context.Context, window models.AvailabilityWindow) (models.AvailabilityWindow, error) {
	args := m.Called(ctx, window)
	var created models.AvailabilityWindow
	if val := args.Get(0); val != nil {
		created = val.(models.AvailabilityWindow)
	}
	return created, args.Error(1)
}

func (m *AvailabilityRepositoryMock) GetWindow(ctx context.Context, windowID int) (models.AvailabilityWindow, error) {
	args := m.Called(ctx, windowID)
	var window models.AvailabilityWindow
	if val := args.Get(0); val != nil {
		window = val.(models.AvailabilityWindow)
	}
	return window, args.Error(1)
}

func (m *AvailabilityRepositoryMock) DeleteWindow(ctx context.Context, windowID int, userID int) error {
	args := m.Called(ctx, windowID, userID)
	return args.Error(0)
}

type HangoutRepositoryMock struct {
	mock.Mock
}

func (m *HangoutRepositoryMock) CreateHangout(ctx context.Context, request models.HangoutRequest, participantIDs []int) (models.HangoutRequest, error) {
	args := m.Called(ctx, request, participantIDs)
	var created models.HangoutRequest
	if val := args.Get(0); val != nil {
		created = val.(models.HangoutRequest)
	}
	return created, args.Error(1)
}

func (m *HangoutRepositoryMock) GetHangout(ctx context.Context, hangoutID int) (models.HangoutRequest, error) {
	args := m.Called(ctx, hangoutID)
	var hangout models.HangoutRequest
	if val := args.Get(0); val != nil {
		hangout = val.(models.HangoutRequest)
	}
	return hangout, args.Error(1)
}

func (m *HangoutRepositoryMock) ListHangoutsForUser(ctx context.Context, userID int) ([]models.HangoutRequest, error) {
	args := m.Called(ctx, userID)
	var hangouts []models.HangoutRequest
	if val := args.Get(0); val != nil {
		hangouts = val.([]models.HangoutRequest)
	}
	return hangouts, args.Error(1)
}

func (m *HangoutRepositoryMock) ListParticipants(ctx context.Context, hangoutID int) ([]models.HangoutParticipant, error) {
	args := m.Called(ctx, hangoutID)
	var participants []models.HangoutParticipant
	if val := args.Get(0); val != nil {
		participants = val.([]models.HangoutParticipant)
	}
	return participants, args.Error(1)
}

func (m *HangoutRepositoryMock) GetParticipant(ctx context.Context, hangoutID int, userID int) (models.HangoutParticipant, error) {
	args := m.Called(ctx, hangoutID, userID)
	var participant models.HangoutParticipant
	if val := args.Get(0); val != nil {
		participant = val.(models.HangoutParticipant)
	}
	return participant, args.Error(1)
}

func (m *HangoutRepositoryMock) SetParticipantStatus(ctx context.Context, hangoutID int, userID int, status models.Status) error {
	args := m.Called(ctx, hangoutID, userID, status)
	return args.Error(0)
}

func (m *HangoutRepositoryMock) AddParticipant(ctx context.Context, hangoutID int, userID int) error {
	args := m.Called(ctx, hangoutID, userID)
	return args.Error(0)
}

func (m *HangoutRepositoryMock) RemoveParticipant(ctx context.Context, hangoutID int, userID int) error {
	args := m.Called(ctx, hangoutID, userID)
	return args.Error(0)
}

func (m *HangoutRepositoryMock) SetStatus(ctx context.Context, hangoutID int, status models.Status) error {
	args := m.Called(ctx, hangoutID, status)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) ProvisionForHangout(ctx context.Context, hangoutID int, expiresAt time.Time) (models.GroupChat, bool, error) {
	args := m.Called(ctx, hangoutID, expiresAt)
	var chat models.GroupChat
	if val := args.Get(0); val != nil {
		chat = val.(models.GroupChat)
	}
	return chat, args.Bool(1), args.Error(2)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.GroupChat, error) {
	args := m.Called(ctx, chatID)
	var chat models.GroupChat
	if val := args.Get(0); val != nil {
		chat = val.(models.GroupChat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID int) ([]models.GroupChat, error) {
	args := m.Called(ctx, userID)
	var chats []models.GroupChat
	if val := args.Get(0); val != nil {
		chats = val.([]models.GroupChat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) ListParticipants(ctx context.Context, chatID int) ([]models.ChatParticipant, error) {
	args := m.Called(ctx, chatID)
	var participants []models.ChatParticipant
	if val := args.Get(0); val != nil {
		participants = val.([]models.ChatParticipant)
	}
	return participants, args.Error(1)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) SetKeepChat(ctx context.Context, chatID int, userID int, keep bool) error {
	args := m.Called(ctx, chatID, userID, keep)
	return args.Error(0)
}

func (m *ChatRepositoryMock) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]models.GroupChat, error) {
	args := m.Called(ctx, deadline)
	var chats []models.GroupChat
	if val := args.Get(0); val != nil {
		chats = val.([]models.GroupChat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) DeleteChat(ctx context.Context, chatID int) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

var _ repositories.AvailabilityRepository = (*AvailabilityRepositoryMock)(nil)
var _ repositories.HangoutRepository = (*HangoutRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
