package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gamehub/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	DatabaseType string               `json:"database_type"`
	Profiles     []ProfileBackup      `json:"profiles"`
	Cards        []CardBackup         `json:"cards"`
	Sessions     []VerificationBackup `json:"verification_sessions"`
	QuizResults  []QuizResultBackup   `json:"quiz_results"`
}

// ProfileBackup represents a profile record for backup
type ProfileBackup struct {
	ID                       int64      `json:"id"`
	Email                    string     `json:"email"`
	PasswordHash             string     `json:"password_hash"`
	Username                 string     `json:"username"`
	AvatarURL                string     `json:"avatar_url"`
	OAuthProvider            string     `json:"oauth_provider"`
	OAuthSubject             string     `json:"oauth_subject"`
	IsAdmin                  bool       `json:"is_admin"`
	TotalPoints              int        `json:"total_points"`
	Exp                      int        `json:"exp"`
	Level                    int        `json:"level"`
	ReferralCode             string     `json:"referral_code"`
	ReferralCount            int        `json:"referral_count"`
	IsVerified               bool       `json:"is_verified"`
	VerificationPending      bool       `json:"verification_pending"`
	VerificationPendingUntil *time.Time `json:"verification_pending_until"`
	VerificationAttempts     int        `json:"verification_attempts"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// CardBackup represents an earned card record for backup
type CardBackup struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	CardLevel       int       `json:"card_level"`
	CardType        string    `json:"card_type"`
	CardName        string    `json:"card_name"`
	MathScore       int       `json:"math_score"`
	QuizScore       int       `json:"quiz_score"`
	TouchDurationMs int64     `json:"touch_duration_ms"`
	VoiceRecorded   bool      `json:"voice_recorded"`
	EarnedAt        time.Time `json:"earned_at"`
}

// VerificationBackup represents a sealed attempt record for backup
type VerificationBackup struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	CardLevel       int       `json:"card_level"`
	MathScore       int       `json:"math_score"`
	MathPassed      bool      `json:"math_passed"`
	QuizScore       int       `json:"quiz_score"`
	QuizPassed      bool      `json:"quiz_passed"`
	TouchDurationMs int64     `json:"touch_duration_ms"`
	TouchPassed     bool      `json:"touch_passed"`
	VoiceDurationMs int64     `json:"voice_duration_ms"`
	VoicePassed     bool      `json:"voice_passed"`
	AllPassed       bool      `json:"all_passed"`
	CompletedAt     time.Time `json:"completed_at"`
}

// QuizResultBackup represents a quiz game result for backup
type QuizResultBackup struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	PointsEarned   int       `json:"points_earned"`
	ExpEarned      int       `json:"exp_earned"`
	CompletedAt    time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// GetDB returns the database connection for direct queries
func (s *BackupService) GetDB() *database.DB {
	return s.db
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportProfiles(backup); err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	if err := s.exportCards(backup); err != nil {
		return fmt.Errorf("failed to export cards: %w", err)
	}
	if err := s.exportSessions(backup); err != nil {
		return fmt.Errorf("failed to export verification sessions: %w", err)
	}
	if err := s.exportQuizResults(backup); err != nil {
		return fmt.Errorf("failed to export quiz results: %w", err)
	}

	log.Printf("Exported: %d profiles, %d cards, %d verification sessions, %d quiz results",
		len(backup.Profiles), len(backup.Cards), len(backup.Sessions), len(backup.QuizResults))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importProfiles(backup.Profiles); err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}
	if err := s.importCards(backup.Cards); err != nil {
		return fmt.Errorf("failed to import cards: %w", err)
	}
	if err := s.importSessions(backup.Sessions); err != nil {
		return fmt.Errorf("failed to import verification sessions: %w", err)
	}
	if err := s.importQuizResults(backup.QuizResults); err != nil {
		return fmt.Errorf("failed to import quiz results: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportProfiles(backup *BackupData) error {
	query := `SELECT id, email, password_hash, username, avatar_url,
		COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin,
		total_points, exp, level, referral_code, referral_count,
		is_verified, verification_pending, verification_pending_until,
		verification_attempts, created_at, updated_at
		FROM profiles ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		if err := rows.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Username, &p.AvatarURL,
			&p.OAuthProvider, &p.OAuthSubject, &p.IsAdmin,
			&p.TotalPoints, &p.Exp, &p.Level, &p.ReferralCode, &p.ReferralCount,
			&p.IsVerified, &p.VerificationPending, &p.VerificationPendingUntil,
			&p.VerificationAttempts, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Profiles = append(backup.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportCards(backup *BackupData) error {
	query := `SELECT id, user_id, card_level, card_type, card_name,
		math_score, quiz_score, touch_duration_ms, voice_recorded, earned_at
		FROM verification_cards ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CardBackup
		if err := rows.Scan(&c.ID, &c.UserID, &c.CardLevel, &c.CardType, &c.CardName,
			&c.MathScore, &c.QuizScore, &c.TouchDurationMs, &c.VoiceRecorded, &c.EarnedAt); err != nil {
			return err
		}
		backup.Cards = append(backup.Cards, c)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	query := `SELECT id, user_id, card_level,
		math_score, math_passed, quiz_score, quiz_passed,
		touch_duration_ms, touch_passed, voice_duration_ms, voice_passed,
		all_passed, completed_at
		FROM verification_sessions ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VerificationBackup
		if err := rows.Scan(&v.ID, &v.UserID, &v.CardLevel,
			&v.MathScore, &v.MathPassed, &v.QuizScore, &v.QuizPassed,
			&v.TouchDurationMs, &v.TouchPassed, &v.VoiceDurationMs, &v.VoicePassed,
			&v.AllPassed, &v.CompletedAt); err != nil {
			return err
		}
		backup.Sessions = append(backup.Sessions, v)
	}
	return rows.Err()
}

func (s *BackupService) exportQuizResults(backup *BackupData) error {
	query := `SELECT id, user_id, correct_answers, total_questions, points_earned, exp_earned, completed_at
		FROM quiz_results ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r QuizResultBackup
		if err := rows.Scan(&r.ID, &r.UserID, &r.CorrectAnswers, &r.TotalQuestions,
			&r.PointsEarned, &r.ExpEarned, &r.CompletedAt); err != nil {
			return err
		}
		backup.QuizResults = append(backup.QuizResults, r)
	}
	return rows.Err()
}

func (s *BackupService) importProfiles(profiles []ProfileBackup) error {
	log.Printf("Importing %d profiles...", len(profiles))
	for _, p := range profiles {
		query := `INSERT INTO profiles (id, email, password_hash, username, avatar_url,
			oauth_provider, oauth_subject, is_admin,
			total_points, exp, level, referral_code, referral_count,
			is_verified, verification_pending, verification_pending_until,
			verification_attempts, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, p.ID, p.Email, p.PasswordHash, p.Username, p.AvatarURL,
			nullIfEmpty(p.OAuthProvider), nullIfEmpty(p.OAuthSubject), p.IsAdmin,
			p.TotalPoints, p.Exp, p.Level, p.ReferralCode, p.ReferralCount,
			p.IsVerified, p.VerificationPending, p.VerificationPendingUntil,
			p.VerificationAttempts, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import profile %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCards(cards []CardBackup) error {
	log.Printf("Importing %d cards...", len(cards))
	for _, c := range cards {
		query := `INSERT INTO verification_cards (id, user_id, card_level, card_type, card_name,
			math_score, quiz_score, touch_duration_ms, voice_recorded, earned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, c.ID, c.UserID, c.CardLevel, c.CardType, c.CardName,
			c.MathScore, c.QuizScore, c.TouchDurationMs, c.VoiceRecorded, c.EarnedAt)
		if err != nil {
			return fmt.Errorf("failed to import card %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSessions(sessions []VerificationBackup) error {
	log.Printf("Importing %d verification sessions...", len(sessions))
	for _, v := range sessions {
		query := `INSERT INTO verification_sessions (id, user_id, card_level,
			math_score, math_passed, quiz_score, quiz_passed,
			touch_duration_ms, touch_passed, voice_duration_ms, voice_passed,
			all_passed, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, v.ID, v.UserID, v.CardLevel,
			v.MathScore, v.MathPassed, v.QuizScore, v.QuizPassed,
			v.TouchDurationMs, v.TouchPassed, v.VoiceDurationMs, v.VoicePassed,
			v.AllPassed, v.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to import verification session %d: %w", v.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importQuizResults(results []QuizResultBackup) error {
	log.Printf("Importing %d quiz results...", len(results))
	for _, r := range results {
		query := `INSERT INTO quiz_results (id, user_id, correct_answers, total_questions, points_earned, exp_earned, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, r.ID, r.UserID, r.CorrectAnswers, r.TotalQuestions,
			r.PointsEarned, r.ExpEarned, r.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to import quiz result %d: %w", r.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
