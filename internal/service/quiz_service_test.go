package service

import (
	"testing"
	"time"

	"gamehub/internal/models"
)

func testGame() *QuizGame {
	return &QuizGame{
		UserID: 1,
		Questions: []models.QuizQuestion{
			{Prompt: "first", Options: []string{"a", "b", "c", "d"}, Correct: 1, Points: 30},
			{Prompt: "second", Options: []string{"a", "b", "c", "d"}, Correct: 0, Points: 30},
		},
		AskedAt: time.Now(),
	}
}

func TestQuizAnswerScoring(t *testing.T) {
	tests := []struct {
		name       string
		option     int
		elapsed    time.Duration
		wantOK     bool
		wantPoints int
	}{
		{
			name:       "instant correct answer",
			option:     1,
			elapsed:    0,
			wantOK:     true,
			wantPoints: 30 + QuestionTimeSeconds*2,
		},
		{
			name:       "correct answer with five seconds left",
			option:     1,
			elapsed:    10 * time.Second,
			wantOK:     true,
			wantPoints: 30 + 5*2,
		},
		{
			name:    "wrong answer",
			option:  3,
			elapsed: 2 * time.Second,
			wantOK:  false,
		},
		{
			name:    "correct but after the countdown",
			option:  1,
			elapsed: 20 * time.Second,
			wantOK:  false,
		},
	}

	svc := &QuizService{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := testGame()
			asked := game.AskedAt

			correct, points, err := svc.Answer(game, tt.option, asked.Add(tt.elapsed))
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if correct != tt.wantOK {
				t.Errorf("correct = %v, want %v", correct, tt.wantOK)
			}
			if points != tt.wantPoints {
				t.Errorf("points = %d, want %d", points, tt.wantPoints)
			}
			if game.Index != 1 {
				t.Errorf("game did not advance, index = %d", game.Index)
			}
		})
	}
}

func TestQuizAnswerAfterGameDone(t *testing.T) {
	svc := &QuizService{}
	game := testGame()
	now := game.AskedAt

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Answer(game, 0, now); err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
	}

	if !game.Done() {
		t.Fatal("game should be done after answering every question")
	}
	if _, _, err := svc.Answer(game, 0, now); err == nil {
		t.Error("expected error answering a finished game")
	}
}

func TestQuizGameCurrent(t *testing.T) {
	game := testGame()

	question, ok := game.Current()
	if !ok || question.Prompt != "first" {
		t.Fatalf("Current() = %q, %v, want first question", question.Prompt, ok)
	}

	game.Index = len(game.Questions)
	if _, ok := game.Current(); ok {
		t.Error("Current() returned a question for a finished game")
	}
}
