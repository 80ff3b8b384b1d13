package verification

import (
	"errors"
	"math/rand"
)

// quizQuestionCount is the number of questions sampled per quiz step.
// The difficulty profile carries a quiz question count for display, but
// the evaluator always runs five.
const quizQuestionCount = 5

// QuizItem is a single multiple-choice question with one correct option.
type QuizItem struct {
	Prompt  string
	Options []string
	Correct int
}

// QuizChallenge runs a fixed number of questions sampled uniformly
// without replacement from a question bank. An answer locks as soon as
// an option is selected; there is no re-selection.
type QuizChallenge struct {
	questions []QuizItem
	index     int
	correct   int
	done      bool
}

// NewQuizChallenge samples questions from the bank. Banks smaller than
// the sample size are used in full.
func NewQuizChallenge(bank []QuizItem, rng *rand.Rand) *QuizChallenge {
	shuffled := make([]QuizItem, len(bank))
	copy(shuffled, bank)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := quizQuestionCount
	if count > len(shuffled) {
		count = len(shuffled)
	}

	return &QuizChallenge{questions: shuffled[:count]}
}

// Current returns the active question, or false once all are answered.
func (c *QuizChallenge) Current() (QuizItem, bool) {
	if c.done {
		return QuizItem{}, false
	}
	return c.questions[c.index], true
}

// QuestionNumber returns the 1-based index of the active question.
func (c *QuizChallenge) QuestionNumber() int {
	return c.index + 1
}

// TotalQuestions returns the number of sampled questions.
func (c *QuizChallenge) TotalQuestions() int {
	return len(c.questions)
}

// CorrectCount returns the running score.
func (c *QuizChallenge) CorrectCount() int {
	return c.correct
}

// Select records the chosen option for the active question and
// advances. Out-of-range options are rejected without consuming the
// question.
func (c *QuizChallenge) Select(option int) (correct bool, done bool, err error) {
	if c.done {
		return false, true, ErrChallengeComplete
	}

	question := c.questions[c.index]
	if option < 0 || option >= len(question.Options) {
		return false, false, errors.New("option out of range")
	}

	correct = option == question.Correct
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
func (c *QuizChallenge) Done() bool {
	return c.done
}

// Result returns the sealed outcome. Passing requires at least
// passThreshold correct answers.
func (c *QuizChallenge) Result() (ChallengeResult, error) {
	if !c.done {
		return ChallengeResult{}, errors.New("quiz challenge not complete")
	}
	return ChallengeResult{
		Kind:   KindQuiz,
		Passed: c.correct >= passThreshold,
		Score:  c.correct,
		Metric: int64(c.correct),
	}, nil
}
