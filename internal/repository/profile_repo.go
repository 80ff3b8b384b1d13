package repository

import (
	"database/sql"
	"fmt"
	"time"

	"gamehub/internal/database"
	"gamehub/internal/models"
)

const profileColumns = `id, email, password_hash, username, avatar_url,
		COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin,
		total_points, exp, level, referral_code, referral_count,
		is_verified, verification_pending, verification_pending_until,
		verification_attempts, created_at, updated_at`

// ProfileRepository handles database operations for profiles and sessions
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	profile := &models.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.PasswordHash,
		&profile.Username,
		&profile.AvatarURL,
		&profile.OAuthProvider,
		&profile.OAuthSubject,
		&profile.IsAdmin,
		&profile.TotalPoints,
		&profile.Exp,
		&profile.Level,
		&profile.ReferralCode,
		&profile.ReferralCount,
		&profile.IsVerified,
		&profile.VerificationPending,
		&profile.VerificationPendingUntil,
		&profile.VerificationAttempts,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateProfile inserts a new profile into the database
func (r *ProfileRepository) CreateProfile(email, passwordHash, username, referralCode string) (*models.Profile, error) {
	// Check if this is the first profile
	var profileCount int
	countQuery := "SELECT COUNT(*) FROM profiles"
	err := r.db.QueryRow(countQuery).Scan(&profileCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}

	// First profile becomes admin
	isAdmin := profileCount == 0

	query := `
		INSERT INTO profiles (email, password_hash, username, referral_code, is_admin)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, username, referralCode, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	profile := &models.Profile{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Username:     username,
		ReferralCode: referralCode,
		IsAdmin:      isAdmin,
		Level:        1,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	return profile, nil
}

// GetProfileByEmail retrieves a profile by email address
func (r *ProfileRepository) GetProfileByEmail(email string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE email = ?"
	profile, err := scanProfile(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByID retrieves a profile by ID
func (r *ProfileRepository) GetProfileByID(id int64) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE id = ?"
	profile, err := scanProfile(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByUsername retrieves a profile by username
func (r *ProfileRepository) GetProfileByUsername(username string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE username = ?"
	profile, err := scanProfile(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByReferralCode retrieves a profile by its referral code
func (r *ProfileRepository) GetProfileByReferralCode(code string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE referral_code = ?"
	profile, err := scanProfile(r.db.QueryRow(query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByOAuth retrieves a profile by OAuth provider and subject
func (r *ProfileRepository) GetProfileByOAuth(provider, subject string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE oauth_provider = ? AND oauth_subject = ?"
	profile, err := scanProfile(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by oauth: %w", err)
	}
	return profile, nil
}

// LinkOAuthProvider links an existing profile to an OAuth provider
func (r *ProfileRepository) LinkOAuthProvider(profileID int64, provider, subject string) error {
	query := `
		UPDATE profiles
		SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		AND (oauth_provider IS NULL OR oauth_provider = '')
	`
	result, err := r.db.Exec(query, provider, subject, profileID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}

	return nil
}

// UpdatePassword sets a new password hash for a profile
func (r *ProfileRepository) UpdatePassword(profileID int64, passwordHash string) error {
	query := `
		UPDATE profiles
		SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, passwordHash, profileID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateAvatar sets a new avatar URL for a profile
func (r *ProfileRepository) UpdateAvatar(profileID int64, avatarURL string) error {
	query := `
		UPDATE profiles
		SET avatar_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, avatarURL, profileID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// UpdateUsername changes a profile's display name
func (r *ProfileRepository) UpdateUsername(profileID int64, username string) error {
	query := `
		UPDATE profiles
		SET username = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, username, profileID)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

// AddRewards adds points and exp to a profile and stores the recomputed level
func (r *ProfileRepository) AddRewards(profileID int64, points, exp, newLevel int) error {
	query := `
		UPDATE profiles
		SET total_points = total_points + ?, exp = exp + ?, level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, points, exp, newLevel, profileID)
	if err != nil {
		return fmt.Errorf("failed to add rewards: %w", err)
	}
	return nil
}

// IncrementReferralCount bumps the referral counter on a profile
func (r *ProfileRepository) IncrementReferralCount(profileID int64) error {
	query := `
		UPDATE profiles
		SET referral_count = referral_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, profileID)
	if err != nil {
		return fmt.Errorf("failed to increment referral count: %w", err)
	}
	return nil
}

// SetVerificationPending marks a profile as awaiting approval until the given time
func (r *ProfileRepository) SetVerificationPending(profileID int64, until time.Time) error {
	query := `
		UPDATE profiles
		SET verification_pending = ?, verification_pending_until = ?,
		    verification_attempts = verification_attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, true, until, profileID)
	if err != nil {
		return fmt.Errorf("failed to set verification pending: %w", err)
	}
	return nil
}

// IncrementVerificationAttempts records a failed verification run
func (r *ProfileRepository) IncrementVerificationAttempts(profileID int64) error {
	query := `
		UPDATE profiles
		SET verification_attempts = verification_attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, profileID)
	if err != nil {
		return fmt.Errorf("failed to increment verification attempts: %w", err)
	}
	return nil
}

// ApproveVerification promotes a pending profile to verified.
// The pending flags are cleared in the same statement so the approval
// happens at most once per pending run.
func (r *ProfileRepository) ApproveVerification(profileID int64) (bool, error) {
	query := `
		UPDATE profiles
		SET is_verified = ?, verification_pending = ?, verification_pending_until = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND verification_pending = ?
	`
	result, err := r.db.Exec(query, true, false, profileID, true)
	if err != nil {
		return false, fmt.Errorf("failed to approve verification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read approval result: %w", err)
	}
	return rows > 0, nil
}

// GetPendingApprovalsDue returns profiles whose approval delay has elapsed
func (r *ProfileRepository) GetPendingApprovalsDue(now time.Time) ([]models.Profile, error) {
	query := "SELECT " + profileColumns + ` FROM profiles
		WHERE verification_pending = ? AND verification_pending_until <= ?`
	rows, err := r.db.Query(query, true, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending approvals: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}

	return profiles, rows.Err()
}

// GetLeaderboard returns the top profiles ordered by total points
func (r *ProfileRepository) GetLeaderboard(limit int) ([]models.Profile, error) {
	query := "SELECT " + profileColumns + ` FROM profiles
		ORDER BY total_points DESC, exp DESC
		LIMIT ?`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}

	return profiles, rows.Err()
}

// CreateSession creates a new session for a profile
func (r *ProfileRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	return session, nil
}

// GetSession retrieves a session by ID
func (r *ProfileRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession removes a session from the database
func (r *ProfileRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	_, err := r.db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *ProfileRepository) DeleteExpiredSessions() error {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	_, err := r.db.Exec(query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

// CreatePasswordResetToken stores a new password reset token
func (r *ProfileRepository) CreatePasswordResetToken(token string, userID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetPasswordResetToken retrieves a password reset token
func (r *ProfileRepository) GetPasswordResetToken(token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT token, user_id, expires_at, created_at, used
		FROM password_reset_tokens
		WHERE token = ?
	`
	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(query, token).Scan(
		&t.Token,
		&t.UserID,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.Used,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return t, nil
}

// DeleteUserResetTokens removes all reset tokens held by a user
func (r *ProfileRepository) DeleteUserResetTokens(userID int64) error {
	query := "DELETE FROM password_reset_tokens WHERE user_id = ?"
	_, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredResetTokens removes all expired reset tokens
func (r *ProfileRepository) DeleteExpiredResetTokens() error {
	query := "DELETE FROM password_reset_tokens WHERE expires_at < ?"
	_, err := r.db.Exec(query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return nil
}

// MarkResetTokenUsed invalidates a password reset token
func (r *ProfileRepository) MarkResetTokenUsed(token string) error {
	query := "UPDATE password_reset_tokens SET used = ? WHERE token = ?"
	_, err := r.db.Exec(query, true, token)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}
