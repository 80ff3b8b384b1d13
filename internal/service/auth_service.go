package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"gamehub/internal/credentials"
	"gamehub/internal/models"
	"gamehub/internal/repository"
	"gamehub/internal/security"
	"gamehub/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthService handles authentication business logic
type AuthService struct {
	profileRepo     *repository.ProfileRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(profileRepo *repository.ProfileRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		profileRepo:     profileRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new profile. A referrer's code may be passed to
// credit the referring user.
func (s *AuthService) Register(email, password, username, referredBy string) (*models.Profile, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetProfileByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.profileRepo.GetProfileByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	referralCode := uuid.New().String()[:8]
	profile, err := s.profileRepo.CreateProfile(email, passwordHash, username, referralCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.creditReferrer(referredBy)

	return profile, nil
}

// creditReferrer bumps the referral count for the holder of the given
// code. A bad or unknown code is logged and otherwise ignored so it
// never blocks signup.
func (s *AuthService) creditReferrer(code string) {
	if code == "" {
		return
	}
	referrer, err := s.profileRepo.GetProfileByReferralCode(code)
	if err != nil {
		log.Printf("failed to look up referral code %s: %v", code, err)
		return
	}
	if referrer == nil {
		return
	}
	if err := s.profileRepo.IncrementReferralCount(referrer.ID); err != nil {
		log.Printf("failed to credit referral for user %d: %v", referrer.ID, err)
	}
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.Profile, error) {
	profile, err := s.profileRepo.GetProfileByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, profile.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.profileRepo.CreateSession(sessionID, profile.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, profile, nil
}

// ValidateSession checks if a session is valid and returns the profile
func (s *AuthService) ValidateSession(sessionID string) (*models.Profile, error) {
	session, err := s.profileRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.profileRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	profile, err := s.profileRepo.GetProfileByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrSessionNotFound
	}

	return profile, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.profileRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.profileRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// OAuthLogin authenticates or creates a profile using an OAuth
// provider. referredBy is an optional referral code carried through
// the OAuth round trip; it only applies when a new profile is created.
func (s *AuthService) OAuthLogin(provider, subject, email, name, referredBy string) (*models.Session, *models.Profile, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	profile, err := s.profileRepo.GetProfileByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth profile: %w", err)
	}

	if profile == nil {
		existing, err := s.profileRepo.GetProfileByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing profile: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.profileRepo.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			profile = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			username, err := s.uniqueUsername(name)
			if err != nil {
				return nil, nil, err
			}
			randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			referralCode := uuid.New().String()[:8]
			newProfile, err := s.profileRepo.CreateProfile(email, randomPasswordHash, username, referralCode)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth profile: %w", err)
			}
			if err := s.profileRepo.LinkOAuthProvider(newProfile.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			s.creditReferrer(referredBy)
			profile = newProfile
		}
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)
	session, err := s.profileRepo.CreateSession(sessionID, profile.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, profile, nil
}

// uniqueUsername derives a free username from an OAuth display name
func (s *AuthService) uniqueUsername(name string) (string, error) {
	base := strings.TrimSpace(name)
	if len(base) < 2 {
		generated, err := credentials.GenerateUsername()
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}
		base = generated
	}
	if len(base) > 24 {
		base = base[:24]
	}

	existing, err := s.profileRepo.GetProfileByUsername(base)
	if err != nil {
		return "", fmt.Errorf("failed to check username: %w", err)
	}
	if existing == nil {
		return base, nil
	}
	suffix, err := credentials.GenerateSuffix()
	if err != nil {
		return "", fmt.Errorf("failed to generate username suffix: %w", err)
	}
	return base + "-" + suffix, nil
}

// RequestPasswordReset creates a password reset token and sends an email
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailService *EmailService, email string) error {
	profile, err := s.profileRepo.GetProfileByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	// Don't reveal whether the address has an account
	if profile == nil {
		return nil
	}

	if profile.OAuthProvider != "" && profile.PasswordHash == "" {
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_ = s.profileRepo.DeleteUserResetTokens(profile.ID)

	expiresAt := time.Now().Add(1 * time.Hour)
	if err := s.profileRepo.CreatePasswordResetToken(token, profile.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if emailService != nil && emailService.IsEnabled() {
		if err := emailService.SendPasswordResetEmail(ctx, profile.Email, profile.Username, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ValidatePasswordResetToken checks if a reset token is valid
func (s *AuthService) ValidatePasswordResetToken(token string) (bool, error) {
	resetToken, err := s.profileRepo.GetPasswordResetToken(token)
	if err != nil {
		return false, fmt.Errorf("failed to get reset token: %w", err)
	}

	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return false, nil
	}

	return true, nil
}

// ResetPassword resets a user's password using a valid token
func (s *AuthService) ResetPassword(token, newPassword string) error {
	resetToken, err := s.profileRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	if resetToken == nil {
		return errors.New("invalid or expired reset token")
	}
	if resetToken.Used {
		return errors.New("this reset link has already been used")
	}
	if resetToken.IsExpired() {
		return errors.New("this reset link has expired")
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profileRepo.UpdatePassword(resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.profileRepo.MarkResetTokenUsed(token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}

	return nil
}

// CleanupExpiredPasswordResetTokens removes expired reset tokens
func (s *AuthService) CleanupExpiredPasswordResetTokens() error {
	if err := s.profileRepo.DeleteExpiredResetTokens(); err != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
