package verification

// ChallengeKind identifies one of the four verification steps.
type ChallengeKind string

const (
	KindMath  ChallengeKind = "math"
	KindQuiz  ChallengeKind = "quiz"
	KindTouch ChallengeKind = "touch"
	KindVoice ChallengeKind = "voice"
)

// StepOrder is the fixed order evaluators run in within an attempt.
var StepOrder = [4]ChallengeKind{KindMath, KindQuiz, KindTouch, KindVoice}

// passThreshold is the number of correct answers required to pass the
// math and quiz steps. It is a fixed constant and does not scale with
// the configured question count.
const passThreshold = 3

// ChallengeResult is the terminal outcome of a single challenge step.
// Metric holds the correct-answer count for math/quiz and the elapsed
// hold/record duration in milliseconds for touch/voice.
type ChallengeResult struct {
	Kind   ChallengeKind
	Passed bool
	Score  int
	Metric int64
}
