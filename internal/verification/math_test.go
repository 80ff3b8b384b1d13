package verification

import (
	"math/rand"
	"testing"
)

func TestMathChallengeGeneration(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := NewMathChallenge(50, rng)

	if c.TotalQuestions() != 50 {
		t.Fatalf("expected 50 questions, got %d", c.TotalQuestions())
	}

	for _, q := range c.questions {
		if q.A < 1 || q.A > 20 || q.B < 1 || q.B > 20 {
			t.Errorf("operands out of range: %d %s %d", q.A, q.Op, q.B)
		}
		switch q.Op {
		case "+":
			if q.Answer != q.A+q.B {
				t.Errorf("wrong answer for %s: %d", q.Prompt(), q.Answer)
			}
		case "-":
			// Negative results are allowed; no clamping.
			if q.Answer != q.A-q.B {
				t.Errorf("wrong answer for %s: %d", q.Prompt(), q.Answer)
			}
		case "*":
			if q.Answer != q.A*q.B {
				t.Errorf("wrong answer for %s: %d", q.Prompt(), q.Answer)
			}
		default:
			t.Errorf("unexpected operator %q", q.Op)
		}
	}
}

func TestMathChallengeThreshold(t *testing.T) {
	// Pass requires 3 correct out of any count; which answers were
	// correct must not matter.
	tests := []struct {
		name       string
		correctAt  []int
		wantPassed bool
	}{
		{"zero correct", nil, false},
		{"two correct", []int{0, 1}, false},
		{"first three correct", []int{0, 1, 2}, true},
		{"last three correct", []int{2, 3, 4}, true},
		{"scattered three correct", []int{0, 2, 4}, true},
		{"all correct", []int{0, 1, 2, 3, 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			c := NewMathChallenge(5, rng)

			correctSet := map[int]bool{}
			for _, i := range tt.correctAt {
				correctSet[i] = true
			}

			for i := 0; i < 5; i++ {
				answer := c.questions[i].Answer
				if !correctSet[i] {
					answer++ // deliberately wrong
				}
				if _, _, err := c.Submit(answer); err != nil {
					t.Fatalf("submit %d: %v", i, err)
				}
			}

			result, err := c.Result()
			if err != nil {
				t.Fatalf("result: %v", err)
			}
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v (score %d)", result.Passed, tt.wantPassed, result.Score)
			}
			if result.Score != len(tt.correctAt) {
				t.Errorf("score = %d, want %d", result.Score, len(tt.correctAt))
			}
			if result.Kind != KindMath {
				t.Errorf("kind = %v, want math", result.Kind)
			}
		})
	}
}

func TestMathChallengeThresholdNotScaled(t *testing.T) {
	// The threshold stays at 3 even for larger configured counts.
	rng := rand.New(rand.NewSource(3))
	c := NewMathChallenge(10, rng)

	for i := 0; i < 10; i++ {
		answer := c.questions[i].Answer
		if i >= 3 {
			answer++
		}
		c.Submit(answer)
	}

	result, err := c.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if !result.Passed {
		t.Errorf("3/10 should still pass: score %d", result.Score)
	}
}

func TestMathChallengeSealed(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := NewMathChallenge(1, rng)

	if _, err := c.Result(); err == nil {
		t.Error("expected error for result before completion")
	}

	c.Submit(c.questions[0].Answer)

	if _, _, err := c.Submit(0); err != ErrChallengeComplete {
		t.Errorf("expected ErrChallengeComplete after final question, got %v", err)
	}
	if _, ok := c.Current(); ok {
		t.Error("no current question expected after completion")
	}
}
