package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gamehub/internal/database"
	"gamehub/internal/models"
	"gamehub/internal/repository"
)

// chatBanDuration is how long a filter violation silences a user.
const chatBanDuration = 10 * time.Minute

// maxMessageLength caps a single chat message.
const maxMessageLength = 500

var (
	// ErrUserBanned is returned when a banned user tries to post.
	ErrUserBanned = errors.New("user is banned from chat")

	// ErrMessageRejected is returned when a message trips the word
	// filter. The user is banned as a side effect.
	ErrMessageRejected = errors.New("message rejected by filter")

	// ErrMessageEmpty is returned for blank or oversized messages.
	ErrMessageEmpty = errors.New("message empty or too long")
)

// ChatService handles community chat business logic
type ChatService struct {
	db          *database.DB
	chatRepo    *repository.ChatRepository
	profileRepo *repository.ProfileRepository
	notifRepo   *repository.NotificationRepository
}

// NewChatService creates a new chat service
func NewChatService(db *database.DB, chatRepo *repository.ChatRepository, profileRepo *repository.ProfileRepository, notifRepo *repository.NotificationRepository) *ChatService {
	return &ChatService{
		db:          db,
		chatRepo:    chatRepo,
		profileRepo: profileRepo,
		notifRepo:   notifRepo,
	}
}

// PostMessage validates, filters and stores a chat message. A message
// containing a listed word is rejected, the author is banned for ten
// minutes and notified.
func (s *ChatService) PostMessage(userID int64, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxMessageLength {
		return nil, ErrMessageEmpty
	}

	ban, err := s.chatRepo.GetActiveBan(userID)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, ErrUserBanned
	}

	matched, err := s.db.FindBadWords(strings.Fields(strings.ToLower(body)))
	if err != nil {
		return nil, err
	}
	if len(matched) > 0 {
		if err := s.banUser(userID, matched); err != nil {
			return nil, err
		}
		return nil, ErrMessageRejected
	}

	profile, err := s.profileRepo.GetProfileByID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile not found")
	}

	message := &models.ChatMessage{
		UserID:   userID,
		Username: profile.Username,
		Body:     body,
	}
	if err := s.chatRepo.SaveMessage(message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *ChatService) banUser(userID int64, matched []string) error {
	ban := &models.ChatBan{
		UserID:    userID,
		Reason:    fmt.Sprintf("prohibited language: %s", strings.Join(matched, ", ")),
		ExpiresAt: time.Now().Add(chatBanDuration),
	}
	if err := s.chatRepo.CreateBan(ban); err != nil {
		return err
	}

	n := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationChatBan,
		Title:   "Chat ban",
		Message: "Your message violated the chat rules. You are muted for 10 minutes.",
	}
	return s.notifRepo.Create(n)
}

// RecentMessages returns the latest chat history in chronological order
func (s *ChatService) RecentMessages(limit int) ([]models.ChatMessage, error) {
	return s.chatRepo.GetRecentMessages(limit)
}
