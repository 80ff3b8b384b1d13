package verification

import (
	"math/rand"
	"testing"
)

func testBank(size int) []QuizItem {
	bank := make([]QuizItem, size)
	for i := range bank {
		bank[i] = QuizItem{
			Prompt:  "question",
			Options: []string{"a", "b", "c", "d"},
			Correct: i % 4,
		}
	}
	return bank
}

func TestQuizChallengeSampling(t *testing.T) {
	bank := testBank(20)
	for i := range bank {
		bank[i].Prompt = string(rune('a' + i))
	}

	rng := rand.New(rand.NewSource(11))
	c := NewQuizChallenge(bank, rng)

	if c.TotalQuestions() != 5 {
		t.Fatalf("expected 5 sampled questions, got %d", c.TotalQuestions())
	}

	// Without replacement: all prompts distinct.
	seen := map[string]bool{}
	for _, q := range c.questions {
		if seen[q.Prompt] {
			t.Errorf("question %q sampled twice", q.Prompt)
		}
		seen[q.Prompt] = true
	}
}

func TestQuizChallengeSmallBank(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	c := NewQuizChallenge(testBank(3), rng)
	if c.TotalQuestions() != 3 {
		t.Errorf("bank smaller than sample: got %d questions, want 3", c.TotalQuestions())
	}
}

func TestQuizChallengeThreshold(t *testing.T) {
	tests := []struct {
		name       string
		correctAt  []int
		wantPassed bool
	}{
		{"none correct", nil, false},
		{"two correct", []int{1, 3}, false},
		{"exactly three correct", []int{0, 2, 4}, true},
		{"first three correct", []int{0, 1, 2}, true},
		{"all correct", []int{0, 1, 2, 3, 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(13))
			c := NewQuizChallenge(testBank(20), rng)

			correctSet := map[int]bool{}
			for _, i := range tt.correctAt {
				correctSet[i] = true
			}

			for i := 0; i < 5; i++ {
				option := c.questions[i].Correct
				if !correctSet[i] {
					option = (option + 1) % 4
				}
				if _, _, err := c.Select(option); err != nil {
					t.Fatalf("select %d: %v", i, err)
				}
			}

			result, err := c.Result()
			if err != nil {
				t.Fatalf("result: %v", err)
			}
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", result.Passed, tt.wantPassed)
			}
			if result.Score != len(tt.correctAt) {
				t.Errorf("score = %d, want %d", result.Score, len(tt.correctAt))
			}
		})
	}
}

func TestQuizChallengeInputRules(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	c := NewQuizChallenge(testBank(20), rng)

	// An out-of-range option does not consume the question.
	if _, _, err := c.Select(9); err == nil {
		t.Error("expected error for out-of-range option")
	}
	if c.QuestionNumber() != 1 {
		t.Errorf("invalid input consumed a question: now at %d", c.QuestionNumber())
	}

	for i := 0; i < 5; i++ {
		c.Select(0)
	}
	if _, _, err := c.Select(0); err != ErrChallengeComplete {
		t.Errorf("expected ErrChallengeComplete after last question, got %v", err)
	}
}
