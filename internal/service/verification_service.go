package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gamehub/internal/models"
	"gamehub/internal/verification"
)

var (
	// ErrCardLocked is returned when a user opens a card flow without
	// holding the previous level.
	ErrCardLocked = errors.New("previous card level not earned")

	// ErrCardAlreadyEarned is returned when a user opens a card flow
	// for a level they already hold.
	ErrCardAlreadyEarned = errors.New("card level already earned")
)

// ProfileStore is the slice of the profile repository the verification
// service needs.
type ProfileStore interface {
	SetVerificationPending(profileID int64, until time.Time) error
	IncrementVerificationAttempts(profileID int64) error
	ApproveVerification(profileID int64) (bool, error)
	GetPendingApprovalsDue(now time.Time) ([]models.Profile, error)
}

// CardStore is the slice of the card repository the verification
// service needs.
type CardStore interface {
	SaveCard(card *models.VerificationCard) (bool, error)
	GetEarnedLevels(userID int64) (map[int]bool, error)
	GetDifficultySettings() (map[int]models.DifficultyProfile, error)
}

// AttemptStore persists sealed attempt records.
type AttemptStore interface {
	SaveSession(s *models.VerificationSession) error
}

// NotificationStore writes user notifications.
type NotificationStore interface {
	Create(n *models.Notification) error
}

// VerificationFlow bundles the in-flight state of one run through the
// four-step pipeline: the attempt ledger plus the per-step challenge
// evaluators built from the resolved difficulty.
type VerificationFlow struct {
	Attempt    *verification.Attempt
	Difficulty models.DifficultyProfile

	Math  *verification.MathChallenge
	Quiz  *verification.QuizChallenge
	Touch *verification.TouchChallenge
	Voice *verification.VoiceChallenge
}

// VerificationService orchestrates the verification pipeline: gate
// checks, difficulty resolution, flow construction and outcome
// commitment.
type VerificationService struct {
	profiles      ProfileStore
	cards         CardStore
	attempts      AttemptStore
	notifications NotificationStore
	quizBank      []verification.QuizItem
	rng           *rand.Rand
	emailer       *EmailService
}

// AttachEmailer enables approval emails from the background sweeper.
func (s *VerificationService) AttachEmailer(emailer *EmailService) {
	s.emailer = emailer
}

// NewVerificationService creates a new verification service
func NewVerificationService(profiles ProfileStore, cards CardStore, attempts AttemptStore, notifications NotificationStore, quizBank []verification.QuizItem, rng *rand.Rand) *VerificationService {
	return &VerificationService{
		profiles:      profiles,
		cards:         cards,
		attempts:      attempts,
		notifications: notifications,
		quizBank:      quizBank,
		rng:           rng,
	}
}

// QuizBankFromQuestions converts stored quiz questions into the shape
// the quiz challenge consumes.
func QuizBankFromQuestions(questions []models.QuizQuestion) []verification.QuizItem {
	bank := make([]verification.QuizItem, len(questions))
	for i, q := range questions {
		bank[i] = verification.QuizItem{
			Prompt:  q.Prompt,
			Options: q.Options,
			Correct: q.Correct,
		}
	}
	return bank
}

// StartFlow opens a new verification attempt for a user. cardLevel zero
// selects the base badge flow; 1-5 a card-tier flow, which is gated on
// the previous level being held.
func (s *VerificationService) StartFlow(userID int64, cardLevel int) (*VerificationFlow, error) {
	if cardLevel != 0 {
		if cardLevel < verification.MinCardLevel || cardLevel > verification.MaxCardLevel {
			return nil, fmt.Errorf("card level %d out of range", cardLevel)
		}

		earned, err := s.cards.GetEarnedLevels(userID)
		if err != nil {
			return nil, err
		}

		switch verification.EvaluateGate(cardLevel, earned) {
		case verification.GateAlreadyEarned:
			return nil, ErrCardAlreadyEarned
		case verification.GateLocked:
			return nil, ErrCardLocked
		}
	}

	difficulty, err := s.resolveDifficulty(cardLevel)
	if err != nil {
		return nil, err
	}

	return &VerificationFlow{
		Attempt:    verification.NewAttempt(cardLevel, time.Now()),
		Difficulty: difficulty,
		Math:       verification.NewMathChallenge(difficulty.MathQuestions, s.rng),
		Quiz:       verification.NewQuizChallenge(s.quizBank, s.rng),
		Touch:      verification.NewTouchChallenge(difficulty.TouchHoldSeconds),
		Voice:      verification.NewVoiceChallenge(3, difficulty.VoicePhraseCount),
	}, nil
}

// resolveDifficulty looks up the stored profile for a level, falling
// back to the built-in defaults on a lookup failure or a missing row.
func (s *VerificationService) resolveDifficulty(cardLevel int) (models.DifficultyProfile, error) {
	stored, err := s.cards.GetDifficultySettings()
	if err != nil {
		// A broken settings table should not block verification
		log.Printf("difficulty settings unavailable, using defaults: %v", err)
		stored = nil
	}
	return verification.ResolveDifficulty(cardLevel, stored), nil
}

// CommitOutcome applies a sealed attempt's result exactly once. For a
// card-tier flow a passing attempt mints the card synchronously; the
// UNIQUE constraint on (user_id, card_level) makes a duplicate commit a
// no-op. For the badge flow a passing attempt parks the profile in the
// pending state for the randomized approval delay. A failing attempt of
// either flow only records the run. The sealed attempt record itself is
// always persisted.
func (s *VerificationService) CommitOutcome(userID int64, attempt *verification.Attempt) error {
	passed, err := attempt.OverallPassed()
	if err != nil {
		return err
	}

	record := sessionFromAttempt(userID, attempt)
	if err := s.attempts.SaveSession(record); err != nil {
		return err
	}

	if attempt.IsCardFlow() {
		return s.commitCardOutcome(userID, attempt, record, passed)
	}
	return s.commitBadgeOutcome(userID, attempt, passed)
}

func (s *VerificationService) commitCardOutcome(userID int64, attempt *verification.Attempt, record *models.VerificationSession, passed bool) error {
	info, ok := models.CardInfoForLevel(attempt.CardLevel)
	if !ok {
		return fmt.Errorf("card level %d out of range", attempt.CardLevel)
	}

	if !passed {
		s.notify(userID, models.NotificationCardFailed,
			"Card challenge failed",
			fmt.Sprintf("You did not pass all steps for the %s. Try again any time.", info.Name))
		return nil
	}

	card := &models.VerificationCard{
		UserID:          userID,
		CardLevel:       attempt.CardLevel,
		CardType:        info.Type,
		CardName:        info.Name,
		MathScore:       record.MathScore,
		QuizScore:       record.QuizScore,
		TouchDurationMs: record.TouchDurationMs,
		VoiceRecorded:   record.VoicePassed,
	}

	created, err := s.cards.SaveCard(card)
	if err != nil {
		return err
	}
	if !created {
		// A concurrent commit already minted this card
		log.Printf("card level %d for user %d already on file", attempt.CardLevel, userID)
		return nil
	}

	s.notify(userID, models.NotificationCardEarned,
		"Card earned",
		fmt.Sprintf("You earned the %s!", info.Name))
	return nil
}

func (s *VerificationService) commitBadgeOutcome(userID int64, attempt *verification.Attempt, passed bool) error {
	if !passed {
		if err := s.profiles.IncrementVerificationAttempts(userID); err != nil {
			return err
		}
		s.notify(userID, models.NotificationCardFailed,
			"Verification failed",
			"You did not pass all verification steps. Try again any time.")
		return nil
	}

	until, err := attempt.EnterPending(time.Now(), s.rng)
	if err != nil {
		return err
	}
	if err := s.profiles.SetVerificationPending(userID, until); err != nil {
		return err
	}

	s.notify(userID, models.NotificationVerificationPending,
		"Verification under review",
		"You passed all steps. Your verification is being reviewed and will complete shortly.")
	return nil
}

// ApproveDuePending promotes every profile whose pending delay has
// elapsed. It returns how many profiles were approved. Run periodically
// from a background ticker.
func (s *VerificationService) ApproveDuePending(now time.Time) (int, error) {
	due, err := s.profiles.GetPendingApprovalsDue(now)
	if err != nil {
		return 0, err
	}

	approved := 0
	for _, profile := range due {
		ok, err := s.profiles.ApproveVerification(profile.ID)
		if err != nil {
			log.Printf("failed to approve verification for user %d: %v", profile.ID, err)
			continue
		}
		if !ok {
			continue
		}
		approved++
		s.notify(profile.ID, models.NotificationVerificationDone,
			"Verification approved",
			"Your verification is complete. Welcome aboard!")
		if s.emailer != nil {
			if err := s.emailer.SendVerificationApprovedEmail(context.Background(), profile.Email, profile.Username); err != nil {
				log.Printf("failed to send approval email to user %d: %v", profile.ID, err)
			}
		}
	}

	return approved, nil
}

// sessionFromAttempt flattens a sealed attempt into its persisted shape
func sessionFromAttempt(userID int64, attempt *verification.Attempt) *models.VerificationSession {
	record := &models.VerificationSession{
		UserID:    userID,
		CardLevel: attempt.CardLevel,
	}

	if r, ok := attempt.ResultFor(verification.KindMath); ok {
		record.MathScore = r.Score
		record.MathPassed = r.Passed
	}
	if r, ok := attempt.ResultFor(verification.KindQuiz); ok {
		record.QuizScore = r.Score
		record.QuizPassed = r.Passed
	}
	if r, ok := attempt.ResultFor(verification.KindTouch); ok {
		record.TouchDurationMs = r.Metric
		record.TouchPassed = r.Passed
	}
	if r, ok := attempt.ResultFor(verification.KindVoice); ok {
		record.VoiceDurationMs = r.Metric
		record.VoicePassed = r.Passed
	}
	if passed, err := attempt.OverallPassed(); err == nil {
		record.AllPassed = passed
	}

	return record
}

// notify writes a notification, logging instead of failing the commit
// when the write does not go through.
func (s *VerificationService) notify(userID int64, notifType, title, message string) {
	n := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if err := s.notifications.Create(n); err != nil {
		log.Printf("failed to create %s notification for user %d: %v", notifType, userID, err)
	}
}
