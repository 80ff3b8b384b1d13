package models

import "time"

// VerificationCard represents an earned card tier. A user holds at most
// one card per level and can only earn level N after level N-1.
type VerificationCard struct {
	ID        int64
	UserID    int64
	CardLevel int
	CardType  string
	CardName  string

	MathScore       int
	QuizScore       int
	TouchDurationMs int64
	VoiceRecorded   bool

	EarnedAt time.Time
}

// CardInfo is the static display data for a card level.
type CardInfo struct {
	Type string
	Name string
}

// cardCatalog maps card levels to their type and name.
var cardCatalog = map[int]CardInfo{
	1: {Type: "blue", Name: "Common Card"},
	2: {Type: "green", Name: "Rare Card"},
	3: {Type: "purple", Name: "Epic Card"},
	4: {Type: "red", Name: "Mythic Card"},
	5: {Type: "golden", Name: "Legendary Card"},
}

// CardInfoForLevel returns the catalog entry for a level, or false for
// levels outside 1-5.
func CardInfoForLevel(level int) (CardInfo, bool) {
	info, ok := cardCatalog[level]
	return info, ok
}

// DifficultyProfile is the per-level challenge configuration.
// VoicePhraseCount is stored and displayed but the voice step only
// requires one capture of minimum duration.
type DifficultyProfile struct {
	CardLevel        int
	MathQuestions    int
	QuizQuestions    int
	TouchHoldSeconds int
	VoicePhraseCount int
}
