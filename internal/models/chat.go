package models

import "time"

// ChatMessage represents one community chat message
type ChatMessage struct {
	ID        int64
	UserID    int64
	Username  string
	Body      string
	CreatedAt time.Time
}

// ChatBan represents a temporary chat ban issued for a filter violation
type ChatBan struct {
	ID        int64
	UserID    int64
	Reason    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsActive reports whether the ban is still in force
func (b *ChatBan) IsActive() bool {
	return time.Now().Before(b.ExpiresAt)
}
