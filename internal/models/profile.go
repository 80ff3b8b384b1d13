package models

import "time"

// Profile represents a user account and their hub progress
type Profile struct {
	ID            int64
	Email         string
	PasswordHash  string
	Username      string
	AvatarURL     string
	OAuthProvider string
	OAuthSubject  string
	IsAdmin       bool

	TotalPoints   int
	Exp           int
	Level         int
	ReferralCode  string
	ReferralCount int

	IsVerified               bool
	VerificationPending      bool
	VerificationPendingUntil *time.Time
	VerificationAttempts     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// expThresholds[i] is the total exp required to reach level i+2.
// Level 10 is the cap.
var expThresholds = []int{100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

// MaxLevel is the highest reachable profile level.
const MaxLevel = 10

// ExpForNextLevel returns the total exp needed to advance past the
// given level.
func ExpForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	if level > len(expThresholds) {
		return expThresholds[len(expThresholds)-1]
	}
	return expThresholds[level-1]
}

// ExpForCurrentLevel returns the total exp at which the given level
// begins.
func ExpForCurrentLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level-1 > len(expThresholds) {
		return expThresholds[len(expThresholds)-1]
	}
	return expThresholds[level-2]
}

// LevelForExp returns the level a profile with the given total exp
// should hold.
func LevelForExp(exp int) int {
	level := 1
	for _, threshold := range expThresholds {
		if exp < threshold {
			break
		}
		level++
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
