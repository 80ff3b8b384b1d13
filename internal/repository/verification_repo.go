package repository

import (
	"fmt"
	"time"

	"gamehub/internal/database"
	"gamehub/internal/models"
)

// VerificationRepository persists sealed verification attempts
type VerificationRepository struct {
	db *database.DB
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *database.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// SaveSession stores the record of a completed attempt
func (r *VerificationRepository) SaveSession(s *models.VerificationSession) error {
	query := `
		INSERT INTO verification_sessions (user_id, card_level,
			math_score, math_passed, quiz_score, quiz_passed,
			touch_duration_ms, touch_passed, voice_duration_ms, voice_passed,
			all_passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		s.UserID, s.CardLevel,
		s.MathScore, s.MathPassed, s.QuizScore, s.QuizPassed,
		s.TouchDurationMs, s.TouchPassed, s.VoiceDurationMs, s.VoicePassed,
		s.AllPassed)
	if err != nil {
		return fmt.Errorf("failed to save verification session: %w", err)
	}

	s.ID = id
	s.CompletedAt = time.Now()
	return nil
}

// GetSessionsByUser retrieves a user's attempt history, newest first
func (r *VerificationRepository) GetSessionsByUser(userID int64, limit int) ([]models.VerificationSession, error) {
	query := `
		SELECT id, user_id, card_level,
			math_score, math_passed, quiz_score, quiz_passed,
			touch_duration_ms, touch_passed, voice_duration_ms, voice_passed,
			all_passed, completed_at
		FROM verification_sessions
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verification sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.VerificationSession
	for rows.Next() {
		var s models.VerificationSession
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.CardLevel,
			&s.MathScore,
			&s.MathPassed,
			&s.QuizScore,
			&s.QuizPassed,
			&s.TouchDurationMs,
			&s.TouchPassed,
			&s.VoiceDurationMs,
			&s.VoicePassed,
			&s.AllPassed,
			&s.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan verification session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// CountSessionsByUser returns how many attempts a user has sealed
func (r *VerificationRepository) CountSessionsByUser(userID int64) (int, error) {
	query := "SELECT COUNT(*) FROM verification_sessions WHERE user_id = ?"
	var count int
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count verification sessions: %w", err)
	}
	return count, nil
}
