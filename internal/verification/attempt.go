package verification

import (
	"errors"
	"math/rand"
	"time"
)

var (
	// ErrAttemptSealed is returned when a result arrives for an
	// attempt that has already run all four steps.
	ErrAttemptSealed = errors.New("attempt already sealed")

	// ErrWrongStep is returned when a result does not match the
	// step the attempt is currently on.
	ErrWrongStep = errors.New("result does not match current step")

	// ErrNotSealed is returned when an outcome is requested before
	// all steps have completed.
	ErrNotSealed = errors.New("attempt not sealed")
)

// Pending-approval delay bounds for the badge flow, in whole minutes.
const (
	pendingMinMinutes = 2
	pendingMaxMinutes = 3
)

// Attempt tracks one full run through the four-step verification
// pipeline. CardLevel is zero for the base badge flow and 1-5 for a
// card-tier flow. Results are appended in the fixed step order; the
// attempt seals after the fourth and the overall outcome is the AND of
// all step outcomes, computed exactly once. A failed early step never
// short-circuits the pipeline: all four steps always run.
type Attempt struct {
	CardLevel int
	StartedAt time.Time

	results       []ChallengeResult
	sealed        bool
	overallPassed bool
	pendingUntil  time.Time
}

// NewAttempt creates an empty attempt. cardLevel zero selects the base
// badge flow.
func NewAttempt(cardLevel int, now time.Time) *Attempt {
	return &Attempt{
		CardLevel: cardLevel,
		StartedAt: now,
		results:   make([]ChallengeResult, 0, len(StepOrder)),
	}
}

// IsCardFlow reports whether this attempt targets a card tier.
func (a *Attempt) IsCardFlow() bool {
	return a.CardLevel > 0
}

// StepIndex returns the index of the step the attempt is waiting on.
func (a *Attempt) StepIndex() int {
	return len(a.results)
}

// CurrentKind returns the kind of the active step, or false once the
// attempt is sealed.
func (a *Attempt) CurrentKind() (ChallengeKind, bool) {
	if a.sealed {
		return "", false
	}
	return StepOrder[len(a.results)], true
}

// Record appends a step result. Results must arrive in StepOrder; the
// fourth result seals the attempt and fixes the overall outcome.
func (a *Attempt) Record(result ChallengeResult) error {
	if a.sealed {
		return ErrAttemptSealed
	}
	if result.Kind != StepOrder[len(a.results)] {
		return ErrWrongStep
	}

	a.results = append(a.results, result)

	if len(a.results) == len(StepOrder) {
		a.sealed = true
		a.overallPassed = true
		for _, r := range a.results {
			if !r.Passed {
				a.overallPassed = false
			}
		}
	}
	return nil
}

// IsSealed reports whether all four steps have completed.
func (a *Attempt) IsSealed() bool {
	return a.sealed
}

// OverallPassed returns the sealed outcome.
func (a *Attempt) OverallPassed() (bool, error) {
	if !a.sealed {
		return false, ErrNotSealed
	}
	return a.overallPassed, nil
}

// Results returns a copy of the recorded step results.
func (a *Attempt) Results() []ChallengeResult {
	out := make([]ChallengeResult, len(a.results))
	copy(out, a.results)
	return out
}

// ResultFor returns the recorded result for a step kind.
func (a *Attempt) ResultFor(kind ChallengeKind) (ChallengeResult, bool) {
	for _, r := range a.results {
		if r.Kind == kind {
			return r, true
		}
	}
	return ChallengeResult{}, false
}

// PendingDelay picks the badge-flow approval delay: a whole number of
// minutes in [2,3].
func PendingDelay(rng *rand.Rand) time.Duration {
	minutes := pendingMinMinutes + rng.Intn(pendingMaxMinutes-pendingMinMinutes+1)
	return time.Duration(minutes) * time.Minute
}

// EnterPending moves a sealed, passed badge attempt into the pending
// state and returns the deadline after which approval becomes due.
// Card-tier attempts never enter pending; they commit synchronously.
func (a *Attempt) EnterPending(now time.Time, rng *rand.Rand) (time.Time, error) {
	if !a.sealed {
		return time.Time{}, ErrNotSealed
	}
	if a.IsCardFlow() {
		return time.Time{}, errors.New("card attempts do not enter pending")
	}
	if !a.overallPassed {
		return time.Time{}, errors.New("failed attempts do not enter pending")
	}

	a.pendingUntil = now.Add(PendingDelay(rng))
	return a.pendingUntil, nil
}

// PendingUntil returns the pending deadline, zero until EnterPending.
func (a *Attempt) PendingUntil() time.Time {
	return a.pendingUntil
}
