package service

import (
	"errors"
	"math/rand"
	"time"

	"gamehub/internal/models"
	"gamehub/internal/repository"
)

// QuestionTimeSeconds is the per-question countdown in the quiz game.
const QuestionTimeSeconds = 15

// quizGameQuestionCount is how many questions one game run asks.
const quizGameQuestionCount = 5

// QuizGame tracks one in-flight quiz game run for a user.
type QuizGame struct {
	UserID    int64
	Questions []models.QuizQuestion
	Index     int
	Correct   int
	Points    int
	AskedAt   time.Time
}

// Done reports whether all questions have been answered.
func (g *QuizGame) Done() bool {
	return g.Index >= len(g.Questions)
}

// Current returns the active question, or false when the game is done.
func (g *QuizGame) Current() (models.QuizQuestion, bool) {
	if g.Done() {
		return models.QuizQuestion{}, false
	}
	return g.Questions[g.Index], true
}

// QuizService handles the standalone quiz game business logic
type QuizService struct {
	quizRepo    *repository.QuizRepository
	profileRepo *repository.ProfileRepository
	notifRepo   *repository.NotificationRepository
	rng         *rand.Rand
}

// NewQuizService creates a new quiz service
func NewQuizService(quizRepo *repository.QuizRepository, profileRepo *repository.ProfileRepository, notifRepo *repository.NotificationRepository, rng *rand.Rand) *QuizService {
	return &QuizService{
		quizRepo:    quizRepo,
		profileRepo: profileRepo,
		notifRepo:   notifRepo,
		rng:         rng,
	}
}

// StartGame samples questions from the bank and opens a game run
func (s *QuizService) StartGame(userID int64, now time.Time) (*QuizGame, error) {
	questions, err := s.quizRepo.GetAllQuestions()
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, errors.New("question bank is empty")
	}

	shuffled := make([]models.QuizQuestion, len(questions))
	copy(shuffled, questions)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := quizGameQuestionCount
	if count > len(shuffled) {
		count = len(shuffled)
	}

	return &QuizGame{
		UserID:    userID,
		Questions: shuffled[:count],
		AskedAt:   now,
	}, nil
}

// Answer scores one question and advances the game. A correct answer
// earns the question's points plus two per second left on the
// countdown; an answer after the countdown expired earns nothing.
func (s *QuizService) Answer(game *QuizGame, option int, now time.Time) (correct bool, pointsEarned int, err error) {
	question, ok := game.Current()
	if !ok {
		return false, 0, errors.New("game already finished")
	}

	timeLeft := QuestionTimeSeconds - int(now.Sub(game.AskedAt).Seconds())
	if timeLeft < 0 {
		timeLeft = 0
	}

	correct = option == question.Correct && timeLeft > 0
	if correct {
		game.Correct++
		pointsEarned = question.Points + timeLeft*2
		game.Points += pointsEarned
	}

	game.Index++
	game.AskedAt = now
	return correct, pointsEarned, nil
}

// FinishGame persists the run and commits its rewards to the profile.
// Exp mirrors points earned; the level is recomputed from total exp and
// a level-up produces a notification.
func (s *QuizService) FinishGame(game *QuizGame) (*models.QuizResult, error) {
	if !game.Done() {
		return nil, errors.New("game still in progress")
	}

	result := &models.QuizResult{
		UserID:         game.UserID,
		CorrectAnswers: game.Correct,
		TotalQuestions: len(game.Questions),
		PointsEarned:   game.Points,
		ExpEarned:      game.Points,
	}
	if err := s.quizRepo.SaveResult(result); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetProfileByID(game.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile not found")
	}

	newLevel := models.LevelForExp(profile.Exp + result.ExpEarned)
	if err := s.profileRepo.AddRewards(game.UserID, result.PointsEarned, result.ExpEarned, newLevel); err != nil {
		return nil, err
	}

	if newLevel > profile.Level {
		n := &models.Notification{
			UserID:  game.UserID,
			Type:    models.NotificationLevelUp,
			Title:   "Level up!",
			Message: "You reached a new level. Keep it going!",
		}
		if err := s.notifRepo.Create(n); err != nil {
			// The rewards are already committed; a missing
			// notification is not worth failing the game over
			return result, nil
		}
	}

	return result, nil
}

// History returns the user's most recent game results
func (s *QuizService) History(userID int64, limit int) ([]models.QuizResult, error) {
	return s.quizRepo.GetResultsByUser(userID, limit)
}
