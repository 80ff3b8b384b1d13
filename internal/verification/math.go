package verification

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrChallengeComplete is returned when input arrives for an already
// finished challenge.
var ErrChallengeComplete = errors.New("challenge already complete")

// MathQuestion is a single generated arithmetic question.
type MathQuestion struct {
	A      int
	B      int
	Op     string
	Answer int
}

// Prompt returns the question text shown to the user.
func (q MathQuestion) Prompt() string {
	op := q.Op
	if op == "*" {
		op = "×"
	}
	return fmt.Sprintf("%d %s %d", q.A, op, q.B)
}

// MathChallenge runs a sequence of random arithmetic questions. The
// user submits one integer answer per question; there is no time limit
// and no way to revisit an answered question.
type MathChallenge struct {
	questions []MathQuestion
	index     int
	correct   int
	done      bool
}

var mathOperators = [3]string{"+", "-", "*"}

// NewMathChallenge generates questionCount questions with operands in
// [1,20]. Subtraction results may be negative; that is intentional.
func NewMathChallenge(questionCount int, rng *rand.Rand) *MathChallenge {
	questions := make([]MathQuestion, questionCount)
	for i := range questions {
		a := rng.Intn(20) + 1
		b := rng.Intn(20) + 1
		op := mathOperators[rng.Intn(len(mathOperators))]

		var answer int
		switch op {
		case "+":
			answer = a + b
		case "-":
			answer = a - b
		case "*":
			answer = a * b
		}

		questions[i] = MathQuestion{A: a, B: b, Op: op, Answer: answer}
	}

	return &MathChallenge{questions: questions}
}

// Current returns the active question, or false once all questions are
// answered.
func (c *MathChallenge) Current() (MathQuestion, bool) {
	if c.done {
		return MathQuestion{}, false
	}
	return c.questions[c.index], true
}

// QuestionNumber returns the 1-based index of the active question.
func (c *MathChallenge) QuestionNumber() int {
	return c.index + 1
}

// TotalQuestions returns the configured question count.
func (c *MathChallenge) TotalQuestions() int {
	return len(c.questions)
}

// CorrectCount returns the running score.
func (c *MathChallenge) CorrectCount() int {
	return c.correct
}

// Submit records an answer for the active question and advances.
// Returns whether the answer was correct and whether the challenge is
// now complete.
func (c *MathChallenge) Submit(answer int) (correct bool, done bool, err error) {
	if c.done {
		return false, true, ErrChallengeComplete
	}

	correct = answer == c.questions[c.index].Answer
	if correct {
		c.correct++
	}

	c.index++
	if c.index >= len(c.questions) {
		c.done = true
	}

	return correct, c.done, nil
}

// Done reports whether all questions have been answered.
func (c *MathChallenge) Done() bool {
	return c.done
}

// Result returns the sealed outcome. Passing requires at least
// passThreshold correct answers regardless of the question count.
func (c *MathChallenge) Result() (ChallengeResult, error) {
	if !c.done {
		return ChallengeResult{}, errors.New("math challenge not complete")
	}
	return ChallengeResult{
		Kind:   KindMath,
		Passed: c.correct >= passThreshold,
		Score:  c.correct,
		Metric: int64(c.correct),
	}, nil
}
