package verification

import (
	"errors"
	"time"
)

// VoiceChallenge requires one continuous audio-capture session lasting
// at least the configured minimum. Stopping early is a retryable
// failure, not a terminal one: unlike math and quiz, capture can be
// restarted any number of times within the step. The core consumes
// elapsed-duration signals only, never raw samples.
type VoiceChallenge struct {
	minDuration time.Duration
	phraseCount int
	startedAt   time.Time
	capturing   bool
	recorded    time.Duration
	done        bool
}

// NewVoiceChallenge creates a voice challenge with the given minimum
// capture duration in seconds. phraseCount is carried for display only;
// it does not gate the pass/fail outcome.
func NewVoiceChallenge(minSeconds, phraseCount int) *VoiceChallenge {
	return &VoiceChallenge{
		minDuration: time.Duration(minSeconds) * time.Second,
		phraseCount: phraseCount,
	}
}

// MinDuration returns the required capture duration.
func (c *VoiceChallenge) MinDuration() time.Duration {
	return c.minDuration
}

// PhraseCount returns the configured prompt count.
func (c *VoiceChallenge) PhraseCount() int {
	return c.phraseCount
}

// Capturing reports whether a capture session is active.
func (c *VoiceChallenge) Capturing() bool {
	return c.capturing
}

// Start begins a capture session at the given instant.
func (c *VoiceChallenge) Start(now time.Time) error {
	if c.done {
		return ErrChallengeComplete
	}
	c.capturing = true
	c.startedAt = now
	return nil
}

// Elapsed returns how long the active capture session has run, or zero
// when none is active.
func (c *VoiceChallenge) Elapsed(now time.Time) time.Duration {
	if !c.capturing {
		return 0
	}
	return now.Sub(c.startedAt)
}

// Stop ends the active capture session. Sessions that reached the
// minimum duration finalize the challenge; shorter sessions are
// discarded and a fresh capture may be started.
func (c *VoiceChallenge) Stop(now time.Time) bool {
	if c.done {
		return true
	}
	if !c.capturing {
		return false
	}

	elapsed := now.Sub(c.startedAt)
	c.capturing = false

	if elapsed >= c.minDuration {
		c.recorded = elapsed
		c.done = true
	}
	return c.done
}

// Done reports whether a capture session has reached the minimum.
func (c *VoiceChallenge) Done() bool {
	return c.done
}

// Result returns the sealed outcome with the recorded duration in
// milliseconds as the metric.
func (c *VoiceChallenge) Result() (ChallengeResult, error) {
	if !c.done {
		return ChallengeResult{}, errors.New("voice challenge not complete")
	}
	return ChallengeResult{
		Kind:   KindVoice,
		Passed: true,
		Score:  1,
		Metric: c.recorded.Milliseconds(),
	}, nil
}
