package repository

import (
	"database/sql"
	"fmt"
	"time"

	"gamehub/internal/database"
	"gamehub/internal/models"
)

// CardRepository handles database operations for verification cards and
// per-level difficulty settings
type CardRepository struct {
	db *database.DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

// SaveCard inserts an earned card. The table carries a UNIQUE constraint
// on (user_id, card_level); if the card is already held the insert is a
// no-op and created is false.
func (r *CardRepository) SaveCard(card *models.VerificationCard) (created bool, err error) {
	query := `
		INSERT INTO verification_cards (user_id, card_level, card_type, card_name,
			math_score, quiz_score, touch_duration_ms, voice_recorded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, insertErr := r.db.ExecReturningID(query,
		card.UserID, card.CardLevel, card.CardType, card.CardName,
		card.MathScore, card.QuizScore, card.TouchDurationMs, card.VoiceRecorded)
	if insertErr != nil {
		// The constraint error message differs per driver; a card
		// already on file means the insert lost to an earlier one.
		existing, lookupErr := r.GetCard(card.UserID, card.CardLevel)
		if lookupErr == nil && existing != nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to save card: %w", insertErr)
	}

	card.ID = id
	card.EarnedAt = time.Now()
	return true, nil
}

// GetCard retrieves a single card by user and level
func (r *CardRepository) GetCard(userID int64, cardLevel int) (*models.VerificationCard, error) {
	query := `
		SELECT id, user_id, card_level, card_type, card_name,
			math_score, quiz_score, touch_duration_ms, voice_recorded, earned_at
		FROM verification_cards
		WHERE user_id = ? AND card_level = ?
	`
	card := &models.VerificationCard{}
	err := r.db.QueryRow(query, userID, cardLevel).Scan(
		&card.ID,
		&card.UserID,
		&card.CardLevel,
		&card.CardType,
		&card.CardName,
		&card.MathScore,
		&card.QuizScore,
		&card.TouchDurationMs,
		&card.VoiceRecorded,
		&card.EarnedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return card, nil
}

// GetCardsByUser retrieves all cards a user has earned, lowest level first
func (r *CardRepository) GetCardsByUser(userID int64) ([]models.VerificationCard, error) {
	query := `
		SELECT id, user_id, card_level, card_type, card_name,
			math_score, quiz_score, touch_duration_ms, voice_recorded, earned_at
		FROM verification_cards
		WHERE user_id = ?
		ORDER BY card_level
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.VerificationCard
	for rows.Next() {
		var card models.VerificationCard
		if err := rows.Scan(
			&card.ID,
			&card.UserID,
			&card.CardLevel,
			&card.CardType,
			&card.CardName,
			&card.MathScore,
			&card.QuizScore,
			&card.TouchDurationMs,
			&card.VoiceRecorded,
			&card.EarnedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// GetEarnedLevels returns the set of card levels a user holds
func (r *CardRepository) GetEarnedLevels(userID int64) (map[int]bool, error) {
	query := "SELECT card_level FROM verification_cards WHERE user_id = ?"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query earned levels: %w", err)
	}
	defer rows.Close()

	earned := make(map[int]bool)
	for rows.Next() {
		var level int
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("failed to scan earned level: %w", err)
		}
		earned[level] = true
	}

	return earned, rows.Err()
}

// GetDifficultySettings loads all stored per-level difficulty profiles
func (r *CardRepository) GetDifficultySettings() (map[int]models.DifficultyProfile, error) {
	query := `
		SELECT card_level, math_questions, quiz_questions, touch_hold_seconds, voice_phrase_count
		FROM card_difficulty_settings
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query difficulty settings: %w", err)
	}
	defer rows.Close()

	profiles := make(map[int]models.DifficultyProfile)
	for rows.Next() {
		var p models.DifficultyProfile
		if err := rows.Scan(
			&p.CardLevel,
			&p.MathQuestions,
			&p.QuizQuestions,
			&p.TouchHoldSeconds,
			&p.VoicePhraseCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan difficulty settings: %w", err)
		}
		profiles[p.CardLevel] = p
	}

	return profiles, rows.Err()
}

// SaveDifficulty replaces the stored difficulty profile for a level
func (r *CardRepository) SaveDifficulty(p models.DifficultyProfile) error {
	deleteQuery := "DELETE FROM card_difficulty_settings WHERE card_level = ?"
	if _, err := r.db.Exec(deleteQuery, p.CardLevel); err != nil {
		return fmt.Errorf("failed to clear difficulty settings: %w", err)
	}

	insertQuery := `
		INSERT INTO card_difficulty_settings (card_level, math_questions, quiz_questions, touch_hold_seconds, voice_phrase_count)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(insertQuery,
		p.CardLevel, p.MathQuestions, p.QuizQuestions, p.TouchHoldSeconds, p.VoicePhraseCount); err != nil {
		return fmt.Errorf("failed to save difficulty settings: %w", err)
	}
	return nil
}
