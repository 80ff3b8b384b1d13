package verification

import (
	"math/rand"
	"testing"
	"time"
)

func sealedAttempt(t *testing.T, cardLevel int, passed [4]bool) *Attempt {
	t.Helper()
	a := NewAttempt(cardLevel, time.Now())
	for i, kind := range StepOrder {
		if err := a.Record(ChallengeResult{Kind: kind, Passed: passed[i]}); err != nil {
			t.Fatalf("record step %d: %v", i, err)
		}
	}
	return a
}

func TestAttemptTotality(t *testing.T) {
	// Every combination of step outcomes: all four steps always run,
	// and the overall outcome is the AND of all of them.
	for mask := 0; mask < 16; mask++ {
		var passed [4]bool
		want := true
		for i := range passed {
			passed[i] = mask&(1<<i) != 0
			want = want && passed[i]
		}

		a := sealedAttempt(t, 0, passed)
		if !a.IsSealed() {
			t.Fatalf("mask %04b: attempt should be sealed after 4 steps", mask)
		}
		got, err := a.OverallPassed()
		if err != nil {
			t.Fatalf("mask %04b: %v", mask, err)
		}
		if got != want {
			t.Errorf("mask %04b: overallPassed = %v, want %v", mask, got, want)
		}
		if len(a.Results()) != 4 {
			t.Errorf("mask %04b: %d results recorded, want 4", mask, len(a.Results()))
		}
	}
}

func TestAttemptStepOrderEnforced(t *testing.T) {
	a := NewAttempt(0, time.Now())

	if err := a.Record(ChallengeResult{Kind: KindQuiz, Passed: true}); err != ErrWrongStep {
		t.Errorf("quiz before math: got %v, want ErrWrongStep", err)
	}

	kind, ok := a.CurrentKind()
	if !ok || kind != KindMath {
		t.Errorf("current step = %v, want math", kind)
	}

	if err := a.Record(ChallengeResult{Kind: KindMath, Passed: false}); err != nil {
		t.Fatalf("record math: %v", err)
	}

	// A failed step still advances; the orchestrator never stops early.
	kind, _ = a.CurrentKind()
	if kind != KindQuiz {
		t.Errorf("after failed math, current step = %v, want quiz", kind)
	}
}

func TestAttemptSealIsFinal(t *testing.T) {
	a := sealedAttempt(t, 0, [4]bool{true, true, true, true})

	if err := a.Record(ChallengeResult{Kind: KindMath, Passed: true}); err != ErrAttemptSealed {
		t.Errorf("record after seal: got %v, want ErrAttemptSealed", err)
	}
	if _, ok := a.CurrentKind(); ok {
		t.Error("sealed attempt has no current step")
	}
}

func TestAttemptOverallBeforeSeal(t *testing.T) {
	a := NewAttempt(0, time.Now())
	if _, err := a.OverallPassed(); err != ErrNotSealed {
		t.Errorf("got %v, want ErrNotSealed", err)
	}
}

func TestPendingDelayBounds(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		d := PendingDelay(rng)
		if d < 2*time.Minute || d > 3*time.Minute {
			t.Fatalf("seed %d: delay %v outside [2m, 3m]", seed, d)
		}
	}
}

func TestEnterPending(t *testing.T) {
	now := time.Now()
	rng := rand.New(rand.NewSource(42))

	a := sealedAttempt(t, 0, [4]bool{true, true, true, true})
	until, err := a.EnterPending(now, rng)
	if err != nil {
		t.Fatalf("enter pending: %v", err)
	}
	if until.Before(now.Add(2*time.Minute)) || until.After(now.Add(3*time.Minute)) {
		t.Errorf("pendingUntil %v outside [now+2m, now+3m]", until)
	}
	if !a.PendingUntil().Equal(until) {
		t.Error("PendingUntil does not match returned deadline")
	}
}

func TestEnterPendingRejected(t *testing.T) {
	now := time.Now()
	rng := rand.New(rand.NewSource(1))

	// Unsealed attempt.
	open := NewAttempt(0, now)
	if _, err := open.EnterPending(now, rng); err != ErrNotSealed {
		t.Errorf("unsealed: got %v, want ErrNotSealed", err)
	}

	// Failed attempt.
	failed := sealedAttempt(t, 0, [4]bool{true, false, true, true})
	if _, err := failed.EnterPending(now, rng); err == nil {
		t.Error("failed attempt must not enter pending")
	}

	// Card-tier attempt commits synchronously, never pending.
	card := sealedAttempt(t, 2, [4]bool{true, true, true, true})
	if _, err := card.EnterPending(now, rng); err == nil {
		t.Error("card attempt must not enter pending")
	}
}
