package verification

import (
	"errors"
	"time"
)

// TouchChallenge requires one continuous press-and-hold gesture for a
// configured duration. Releasing early resets the elapsed time to zero;
// there is no partial credit. Reaching the threshold while still held
// finalizes the challenge immediately.
type TouchChallenge struct {
	threshold time.Duration
	pressedAt time.Time
	holding   bool
	done      bool
}

// NewTouchChallenge creates a touch challenge with the given hold
// duration in seconds.
func NewTouchChallenge(holdSeconds int) *TouchChallenge {
	return &TouchChallenge{threshold: time.Duration(holdSeconds) * time.Second}
}

// Threshold returns the required hold duration.
func (c *TouchChallenge) Threshold() time.Duration {
	return c.threshold
}

// Holding reports whether a press is currently active.
func (c *TouchChallenge) Holding() bool {
	return c.holding
}

// Press starts a hold at the given instant. Pressing while already
// holding restarts the measurement.
func (c *TouchChallenge) Press(now time.Time) error {
	if c.done {
		return ErrChallengeComplete
	}
	c.holding = true
	c.pressedAt = now
	return nil
}

// Elapsed returns how long the current press has been held, or zero
// when nothing is held.
func (c *TouchChallenge) Elapsed(now time.Time) time.Duration {
	if !c.holding {
		return 0
	}
	return now.Sub(c.pressedAt)
}

// Check finalizes the challenge if the threshold has been reached while
// still held. Returns true once the challenge is complete.
func (c *TouchChallenge) Check(now time.Time) bool {
	if c.done {
		return true
	}
	if c.holding && now.Sub(c.pressedAt) >= c.threshold {
		c.done = true
		c.holding = false
	}
	return c.done
}

// Release ends the current press. A release before the threshold resets
// elapsed time to zero; the next press starts over. A release at or
// past the threshold finalizes the challenge.
func (c *TouchChallenge) Release(now time.Time) bool {
	if c.done {
		return true
	}
	if !c.holding {
		return false
	}

	if now.Sub(c.pressedAt) >= c.threshold {
		c.done = true
	}
	c.holding = false
	return c.done
}

// Done reports whether the hold requirement has been met.
func (c *TouchChallenge) Done() bool {
	return c.done
}

// Result returns the sealed outcome. The metric is the configured
// threshold in milliseconds, matching what the gesture was measured
// against.
func (c *TouchChallenge) Result() (ChallengeResult, error) {
	if !c.done {
		return ChallengeResult{}, errors.New("touch challenge not complete")
	}
	return ChallengeResult{
		Kind:   KindTouch,
		Passed: true,
		Score:  1,
		Metric: c.threshold.Milliseconds(),
	}, nil
}
