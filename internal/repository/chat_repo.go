package repository

import (
	"database/sql"
	"fmt"
	"time"

	"gamehub/internal/database"
	"gamehub/internal/models"
)

// ChatRepository handles database operations for chat messages and bans
type ChatRepository struct {
	db *database.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *database.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// SaveMessage stores a chat message
func (r *ChatRepository) SaveMessage(m *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (user_id, body)
		VALUES (?, ?)
	`
	id, err := r.db.ExecReturningID(query, m.UserID, m.Body)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	m.ID = id
	m.CreatedAt = time.Now()
	return nil
}

// GetRecentMessages returns the most recent messages, oldest first
func (r *ChatRepository) GetRecentMessages(limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT m.id, m.user_id, p.username, m.body, m.created_at
		FROM chat_messages m
		JOIN profiles p ON p.id = m.user_id
		ORDER BY m.created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Username,
			&m.Body,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse so callers see chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// CreateBan issues a chat ban for a user
func (r *ChatRepository) CreateBan(b *models.ChatBan) error {
	query := `
		INSERT INTO chat_bans (user_id, reason, expires_at)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, b.UserID, b.Reason, b.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create chat ban: %w", err)
	}
	b.ID = id
	b.CreatedAt = time.Now()
	return nil
}

// GetActiveBan returns the user's most recent unexpired ban, or nil
func (r *ChatRepository) GetActiveBan(userID int64) (*models.ChatBan, error) {
	query := `
		SELECT id, user_id, reason, expires_at, created_at
		FROM chat_bans
		WHERE user_id = ? AND expires_at > ?
		ORDER BY expires_at DESC
		LIMIT 1
	`
	ban := &models.ChatBan{}
	err := r.db.QueryRow(query, userID, time.Now()).Scan(
		&ban.ID,
		&ban.UserID,
		&ban.Reason,
		&ban.ExpiresAt,
		&ban.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat ban: %w", err)
	}

	return ban, nil
}
