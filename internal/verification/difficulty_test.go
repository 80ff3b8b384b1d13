package verification

import (
	"testing"

	"gamehub/internal/models"
)

func TestResolveDifficultyFallback(t *testing.T) {
	for level := MinCardLevel; level <= MaxCardLevel; level++ {
		got := ResolveDifficulty(level, map[int]models.DifficultyProfile{})
		if got.MathQuestions != 5 || got.QuizQuestions != 5 ||
			got.TouchHoldSeconds != 3 || got.VoicePhraseCount != 1 {
			t.Errorf("level %d: fallback = %+v, want defaults 5/5/3/1", level, got)
		}
		if got.CardLevel != level {
			t.Errorf("level %d: fallback carries level %d", level, got.CardLevel)
		}
	}
}

func TestResolveDifficultyStored(t *testing.T) {
	profiles := map[int]models.DifficultyProfile{
		3: {CardLevel: 3, MathQuestions: 8, QuizQuestions: 7, TouchHoldSeconds: 5, VoicePhraseCount: 2},
	}

	got := ResolveDifficulty(3, profiles)
	if got.MathQuestions != 8 || got.TouchHoldSeconds != 5 {
		t.Errorf("stored profile not returned: %+v", got)
	}

	// Other levels still fall back.
	if got := ResolveDifficulty(2, profiles); got.MathQuestions != 5 {
		t.Errorf("level 2 should fall back, got %+v", got)
	}
}
