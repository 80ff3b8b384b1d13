package models

import "time"

// VerificationSession is the persisted record of one sealed attempt
// through the four-step pipeline. CardLevel is zero for the base badge
// flow.
type VerificationSession struct {
	ID        int64
	UserID    int64
	CardLevel int

	MathScore       int
	MathPassed      bool
	QuizScore       int
	QuizPassed      bool
	TouchDurationMs int64
	TouchPassed     bool
	VoiceDurationMs int64
	VoicePassed     bool

	AllPassed   bool
	CompletedAt time.Time
}
