package repository

import (
	"fmt"
	"time"

	"gamehub/internal/database"
	"gamehub/internal/models"
)

// QuizRepository handles database operations for the quiz question bank
// and quiz game results
type QuizRepository struct {
	db *database.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *database.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// SeedQuestions loads the question bank into the database if it is empty
func (r *QuizRepository) SeedQuestions(bank *models.QuestionBank) error {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM quiz_bank").Scan(&count); err != nil {
		return fmt.Errorf("failed to count quiz questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO quiz_bank (prompt, option_a, option_b, option_c, option_d, correct_index, points)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, q := range bank.Questions {
		points := q.Points
		if points <= 0 {
			points = 100
		}
		if _, err := r.db.Exec(query,
			q.Prompt, q.Options[0], q.Options[1], q.Options[2], q.Options[3],
			q.Correct, points); err != nil {
			return fmt.Errorf("failed to seed quiz question: %w", err)
		}
	}
	return nil
}

// GetAllQuestions retrieves the full question bank
func (r *QuizRepository) GetAllQuestions() ([]models.QuizQuestion, error) {
	query := `
		SELECT id, prompt, option_a, option_b, option_c, option_d, correct_index, points
		FROM quiz_bank
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuizQuestion
	for rows.Next() {
		var q models.QuizQuestion
		var a, b, c, d string
		if err := rows.Scan(&q.ID, &q.Prompt, &a, &b, &c, &d, &q.Correct, &q.Points); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		q.Options = []string{a, b, c, d}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// SaveResult stores the outcome of a quiz game run
func (r *QuizRepository) SaveResult(result *models.QuizResult) error {
	query := `
		INSERT INTO quiz_results (user_id, correct_answers, total_questions, points_earned, exp_earned)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		result.UserID, result.CorrectAnswers, result.TotalQuestions,
		result.PointsEarned, result.ExpEarned)
	if err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	result.ID = id
	result.CompletedAt = time.Now()
	return nil
}

// GetResultsByUser retrieves a user's quiz history, newest first
func (r *QuizRepository) GetResultsByUser(userID int64, limit int) ([]models.QuizResult, error) {
	query := `
		SELECT id, user_id, correct_answers, total_questions, points_earned, exp_earned, completed_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	defer rows.Close()

	var results []models.QuizResult
	for rows.Next() {
		var res models.QuizResult
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.CorrectAnswers,
			&res.TotalQuestions,
			&res.PointsEarned,
			&res.ExpEarned,
			&res.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}
