package models

import "time"

// Notification types written by the hub.
const (
	NotificationCardEarned          = "card_earned"
	NotificationCardFailed          = "card_failed"
	NotificationVerificationPending = "verification_pending"
	NotificationVerificationDone    = "verification_approved"
	NotificationLevelUp             = "level_up"
	NotificationChatBan             = "chat_ban"
)

// Notification represents a user-facing notification record
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}
