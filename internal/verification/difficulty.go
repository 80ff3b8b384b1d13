package verification

import "gamehub/internal/models"

// DefaultDifficulty is used for any level without a stored profile.
// Missing configuration degrades to these values rather than failing.
var DefaultDifficulty = models.DifficultyProfile{
	MathQuestions:    5,
	QuizQuestions:    5,
	TouchHoldSeconds: 3,
	VoicePhraseCount: 1,
}

// ResolveDifficulty returns the stored profile for a level, falling
// back to DefaultDifficulty when none exists. It never fails.
func ResolveDifficulty(level int, profiles map[int]models.DifficultyProfile) models.DifficultyProfile {
	if profile, ok := profiles[level]; ok {
		return profile
	}
	fallback := DefaultDifficulty
	fallback.CardLevel = level
	return fallback
}
