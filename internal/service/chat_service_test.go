package service

import (
	"errors"
	"os"
	"testing"

	"gamehub/internal/database"
	"gamehub/internal/models"
	"gamehub/internal/repository"
)

func newChatTestService(t *testing.T) (*ChatService, *repository.NotificationRepository, int64) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_chat_service.db"
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the filter directly instead of downloading the word list
	if _, err := db.Exec("INSERT INTO bad_words (word) VALUES (?)", "zork"); err != nil {
		t.Fatalf("Failed to seed filter: %v", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	profile, err := profileRepo.CreateProfile("chatter@example.com", "hash", "chatter", "REFCHAT1")
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	return NewChatService(db, chatRepo, profileRepo, notifRepo), notifRepo, profile.ID
}

func TestPostMessageStoresCleanMessage(t *testing.T) {
	svc, _, userID := newChatTestService(t)

	message, err := svc.PostMessage(userID, "  hello everyone  ")
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if message.Body != "hello everyone" {
		t.Errorf("body = %q, want trimmed text", message.Body)
	}
	if message.Username != "chatter" {
		t.Errorf("username = %q, want chatter", message.Username)
	}

	recent, err := svc.RecentMessages(10)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(recent))
	}
}

func TestPostMessageRejectsAndBans(t *testing.T) {
	svc, notifRepo, userID := newChatTestService(t)

	_, err := svc.PostMessage(userID, "well zork you")
	if !errors.Is(err, ErrMessageRejected) {
		t.Fatalf("expected ErrMessageRejected, got %v", err)
	}

	// Banned for the next ten minutes, even for clean messages
	_, err = svc.PostMessage(userID, "sorry about that")
	if !errors.Is(err, ErrUserBanned) {
		t.Fatalf("expected ErrUserBanned, got %v", err)
	}

	notifications, err := notifRepo.GetByUser(userID, 10)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	found := false
	for _, n := range notifications {
		if n.Type == models.NotificationChatBan {
			found = true
		}
	}
	if !found {
		t.Error("expected a chat ban notification")
	}
}

func TestPostMessageEmptyAndOversized(t *testing.T) {
	svc, _, userID := newChatTestService(t)

	if _, err := svc.PostMessage(userID, "   "); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("blank message: expected ErrMessageEmpty, got %v", err)
	}

	long := make([]byte, maxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.PostMessage(userID, string(long)); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("oversized message: expected ErrMessageEmpty, got %v", err)
	}
}
