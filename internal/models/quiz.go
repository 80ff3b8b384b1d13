package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// QuizQuestion is one entry in the quiz question bank, used by both the
// standalone quiz game and the verification quiz step.
type QuizQuestion struct {
	ID      int64  `yaml:"-"`
	Prompt  string `yaml:"prompt"`
	Options []string `yaml:"options"`
	Correct int    `yaml:"correct"`
	Points  int    `yaml:"points"`
}

// QuestionBank is the YAML document shape for the seeded question bank.
type QuestionBank struct {
	Questions []QuizQuestion `yaml:"questions"`
}

// LoadQuestionBank reads the quiz question bank from a YAML file.
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	for i, q := range bank.Questions {
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("question %d: expected 4 options, got %d", i+1, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct index %d out of range", i+1, q.Correct)
		}
	}

	return &bank, nil
}

// QuizResult is the persisted outcome of one standalone quiz game run.
type QuizResult struct {
	ID             int64
	UserID         int64
	CorrectAnswers int
	TotalQuestions int
	PointsEarned   int
	ExpEarned      int
	CompletedAt    time.Time
}
