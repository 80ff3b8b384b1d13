package repository

import (
	"fmt"

	"gamehub/internal/database"
	"gamehub/internal/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a new notification
func (r *NotificationRepository) Create(n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, n.UserID, n.Type, n.Title, n.Message)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID = id
	return nil
}

// GetByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) GetByUser(userID int64, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// CountUnread returns how many unread notifications a user has
func (r *NotificationRepository) CountUnread(userID int64) (int, error) {
	query := "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?"
	var count int
	if err := r.db.QueryRow(query, userID, false).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification as read
func (r *NotificationRepository) MarkRead(notificationID, userID int64) error {
	query := "UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?"
	_, err := r.db.Exec(query, true, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification for a user as read
func (r *NotificationRepository) MarkAllRead(userID int64) error {
	query := "UPDATE notifications SET is_read = ? WHERE user_id = ?"
	_, err := r.db.Exec(query, true, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
