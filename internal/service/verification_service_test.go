package service

import (
	"math/rand"
	"testing"
	"time"

	"gamehub/internal/models"
	"gamehub/internal/verification"
)

type fakeProfileStore struct {
	pendingUntil   map[int64]time.Time
	attemptBumps   map[int64]int
	approved       map[int64]bool
	pendingQueue   []models.Profile
	approveReturns map[int64]bool
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		pendingUntil:   make(map[int64]time.Time),
		attemptBumps:   make(map[int64]int),
		approved:       make(map[int64]bool),
		approveReturns: make(map[int64]bool),
	}
}

func (f *fakeProfileStore) SetVerificationPending(profileID int64, until time.Time) error {
	f.pendingUntil[profileID] = until
	return nil
}

func (f *fakeProfileStore) IncrementVerificationAttempts(profileID int64) error {
	f.attemptBumps[profileID]++
	return nil
}

func (f *fakeProfileStore) ApproveVerification(profileID int64) (bool, error) {
	ok, set := f.approveReturns[profileID]
	if !set {
		ok = true
	}
	if ok {
		f.approved[profileID] = true
	}
	return ok, nil
}

func (f *fakeProfileStore) GetPendingApprovalsDue(now time.Time) ([]models.Profile, error) {
	return f.pendingQueue, nil
}

type fakeCardStore struct {
	earned     map[int64]map[int]bool
	saved      []models.VerificationCard
	difficulty map[int]models.DifficultyProfile
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{earned: make(map[int64]map[int]bool)}
}

func (f *fakeCardStore) SaveCard(card *models.VerificationCard) (bool, error) {
	if f.earned[card.UserID][card.CardLevel] {
		return false, nil
	}
	if f.earned[card.UserID] == nil {
		f.earned[card.UserID] = make(map[int]bool)
	}
	f.earned[card.UserID][card.CardLevel] = true
	f.saved = append(f.saved, *card)
	return true, nil
}

func (f *fakeCardStore) GetEarnedLevels(userID int64) (map[int]bool, error) {
	out := make(map[int]bool)
	for level := range f.earned[userID] {
		out[level] = true
	}
	return out, nil
}

func (f *fakeCardStore) GetDifficultySettings() (map[int]models.DifficultyProfile, error) {
	return f.difficulty, nil
}

type fakeAttemptStore struct {
	sessions []models.VerificationSession
}

func (f *fakeAttemptStore) SaveSession(s *models.VerificationSession) error {
	f.sessions = append(f.sessions, *s)
	return nil
}

type fakeNotificationStore struct {
	created []models.Notification
}

func (f *fakeNotificationStore) Create(n *models.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationStore) lastType() string {
	if len(f.created) == 0 {
		return ""
	}
	return f.created[len(f.created)-1].Type
}

type serviceFixture struct {
	profiles      *fakeProfileStore
	cards         *fakeCardStore
	attempts      *fakeAttemptStore
	notifications *fakeNotificationStore
	svc           *VerificationService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	bank := []verification.QuizItem{
		{Prompt: "q1", Options: []string{"a", "b", "c", "d"}, Correct: 0},
		{Prompt: "q2", Options: []string{"a", "b", "c", "d"}, Correct: 1},
		{Prompt: "q3", Options: []string{"a", "b", "c", "d"}, Correct: 2},
		{Prompt: "q4", Options: []string{"a", "b", "c", "d"}, Correct: 3},
		{Prompt: "q5", Options: []string{"a", "b", "c", "d"}, Correct: 0},
		{Prompt: "q6", Options: []string{"a", "b", "c", "d"}, Correct: 1},
	}
	fx := &serviceFixture{
		profiles:      newFakeProfileStore(),
		cards:         newFakeCardStore(),
		attempts:      &fakeAttemptStore{},
		notifications: &fakeNotificationStore{},
	}
	fx.svc = NewVerificationService(fx.profiles, fx.cards, fx.attempts, fx.notifications, bank, rand.New(rand.NewSource(7)))
	return fx
}

// sealAttempt drives an attempt through all four steps with the given
// per-step outcomes.
func sealAttempt(t *testing.T, cardLevel int, math, quiz, touch, voice bool) *verification.Attempt {
	t.Helper()
	attempt := verification.NewAttempt(cardLevel, time.Now())
	steps := []verification.ChallengeResult{
		{Kind: verification.KindMath, Passed: math, Score: 4},
		{Kind: verification.KindQuiz, Passed: quiz, Score: 3},
		{Kind: verification.KindTouch, Passed: touch, Metric: 3000},
		{Kind: verification.KindVoice, Passed: voice, Metric: 3200},
	}
	if !quiz {
		steps[1].Score = 2
	}
	for _, step := range steps {
		if err := attempt.Record(step); err != nil {
			t.Fatalf("Record(%s) error: %v", step.Kind, err)
		}
	}
	return attempt
}

func TestStartFlowGating(t *testing.T) {
	tests := []struct {
		name      string
		earned    []int
		cardLevel int
		wantErr   error
	}{
		{name: "level 1 with nothing earned", earned: nil, cardLevel: 1, wantErr: nil},
		{name: "level 2 without level 1", earned: nil, cardLevel: 2, wantErr: ErrCardLocked},
		{name: "level 2 with level 1", earned: []int{1}, cardLevel: 2, wantErr: nil},
		{name: "already earned level", earned: []int{1}, cardLevel: 1, wantErr: ErrCardAlreadyEarned},
		{name: "badge flow is never gated", earned: nil, cardLevel: 0, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newServiceFixture(t)
			if len(tt.earned) > 0 {
				fx.cards.earned[1] = make(map[int]bool)
				for _, level := range tt.earned {
					fx.cards.earned[1][level] = true
				}
			}

			flow, err := fx.svc.StartFlow(1, tt.cardLevel)
			if err != tt.wantErr {
				t.Fatalf("StartFlow() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && flow == nil {
				t.Fatal("StartFlow() returned nil flow without error")
			}
		})
	}
}

func TestStartFlowRejectsOutOfRangeLevel(t *testing.T) {
	fx := newServiceFixture(t)
	for _, level := range []int{-1, 6, 99} {
		if _, err := fx.svc.StartFlow(1, level); err == nil {
			t.Errorf("StartFlow(level=%d) expected error", level)
		}
	}
}

func TestStartFlowUsesStoredDifficulty(t *testing.T) {
	fx := newServiceFixture(t)
	fx.cards.difficulty = map[int]models.DifficultyProfile{
		0: {CardLevel: 0, MathQuestions: 8, QuizQuestions: 5, TouchHoldSeconds: 6, VoicePhraseCount: 2},
	}

	flow, err := fx.svc.StartFlow(1, 0)
	if err != nil {
		t.Fatalf("StartFlow() error: %v", err)
	}
	if flow.Math.TotalQuestions() != 8 {
		t.Errorf("math questions = %d, want 8", flow.Math.TotalQuestions())
	}
	if flow.Touch.Threshold() != 6*time.Second {
		t.Errorf("touch threshold = %v, want 6s", flow.Touch.Threshold())
	}
}

func TestStartFlowFallsBackToDefaults(t *testing.T) {
	fx := newServiceFixture(t)

	flow, err := fx.svc.StartFlow(1, 0)
	if err != nil {
		t.Fatalf("StartFlow() error: %v", err)
	}
	if flow.Math.TotalQuestions() != verification.DefaultDifficulty.MathQuestions {
		t.Errorf("math questions = %d, want default %d",
			flow.Math.TotalQuestions(), verification.DefaultDifficulty.MathQuestions)
	}
	if flow.Touch.Threshold() != time.Duration(verification.DefaultDifficulty.TouchHoldSeconds)*time.Second {
		t.Errorf("touch threshold = %v, want default", flow.Touch.Threshold())
	}
}

func TestCommitCardOutcomePassed(t *testing.T) {
	fx := newServiceFixture(t)
	attempt := sealAttempt(t, 1, true, true, true, true)

	if err := fx.svc.CommitOutcome(1, attempt); err != nil {
		t.Fatalf("CommitOutcome() error: %v", err)
	}

	if len(fx.cards.saved) != 1 {
		t.Fatalf("saved %d cards, want 1", len(fx.cards.saved))
	}
	card := fx.cards.saved[0]
	if card.CardLevel != 1 || card.CardType != "blue" || card.CardName != "Common Card" {
		t.Errorf("card = %+v, want level 1 blue Common Card", card)
	}
	if fx.notifications.lastType() != models.NotificationCardEarned {
		t.Errorf("notification type = %s, want %s", fx.notifications.lastType(), models.NotificationCardEarned)
	}
	if len(fx.attempts.sessions) != 1 || !fx.attempts.sessions[0].AllPassed {
		t.Errorf("attempt record = %+v, want one all-passed session", fx.attempts.sessions)
	}
}

func TestCommitCardOutcomeQuizFailureMintsNoCard(t *testing.T) {
	// A user holding level 1 runs the level 2 flow and fails only the
	// quiz step. The run is recorded but no card is minted.
	fx := newServiceFixture(t)
	fx.cards.earned[1] = map[int]bool{1: true}

	attempt := sealAttempt(t, 2, true, false, true, true)
	if err := fx.svc.CommitOutcome(1, attempt); err != nil {
		t.Fatalf("CommitOutcome() error: %v", err)
	}

	if len(fx.cards.saved) != 0 {
		t.Fatalf("saved %d cards, want 0", len(fx.cards.saved))
	}
	if fx.notifications.lastType() != models.NotificationCardFailed {
		t.Errorf("notification type = %s, want %s", fx.notifications.lastType(), models.NotificationCardFailed)
	}
	if len(fx.attempts.sessions) != 1 {
		t.Fatalf("recorded %d sessions, want 1", len(fx.attempts.sessions))
	}
	record := fx.attempts.sessions[0]
	if record.AllPassed || record.QuizPassed || !record.MathPassed {
		t.Errorf("session record = %+v, want quiz failure only", record)
	}
}

func TestCommitCardOutcomeDuplicateIsNoOp(t *testing.T) {
	fx := newServiceFixture(t)
	attempt := sealAttempt(t, 1, true, true, true, true)

	if err := fx.svc.CommitOutcome(1, attempt); err != nil {
		t.Fatalf("first CommitOutcome() error: %v", err)
	}
	second := sealAttempt(t, 1, true, true, true, true)
	if err := fx.svc.CommitOutcome(1, second); err != nil {
		t.Fatalf("second CommitOutcome() error: %v", err)
	}

	if len(fx.cards.saved) != 1 {
		t.Errorf("saved %d cards after duplicate commit, want 1", len(fx.cards.saved))
	}
	// Only the first commit notifies an earned card
	earnedCount := 0
	for _, n := range fx.notifications.created {
		if n.Type == models.NotificationCardEarned {
			earnedCount++
		}
	}
	if earnedCount != 1 {
		t.Errorf("card_earned notifications = %d, want 1", earnedCount)
	}
}

func TestCommitBadgeOutcomePassedEntersPending(t *testing.T) {
	fx := newServiceFixture(t)
	attempt := sealAttempt(t, 0, true, true, true, true)

	before := time.Now()
	if err := fx.svc.CommitOutcome(42, attempt); err != nil {
		t.Fatalf("CommitOutcome() error: %v", err)
	}

	until, ok := fx.profiles.pendingUntil[42]
	if !ok {
		t.Fatal("profile not marked pending")
	}
	delay := until.Sub(before)
	if delay < 2*time.Minute || delay > 3*time.Minute+time.Second {
		t.Errorf("pending delay = %v, want within [2m,3m]", delay)
	}
	if fx.notifications.lastType() != models.NotificationVerificationPending {
		t.Errorf("notification type = %s, want %s", fx.notifications.lastType(), models.NotificationVerificationPending)
	}
	if len(fx.cards.saved) != 0 {
		t.Errorf("badge flow minted %d cards, want 0", len(fx.cards.saved))
	}
}

func TestCommitBadgeOutcomeFailedCountsAttempt(t *testing.T) {
	fx := newServiceFixture(t)
	attempt := sealAttempt(t, 0, true, true, false, true)

	if err := fx.svc.CommitOutcome(42, attempt); err != nil {
		t.Fatalf("CommitOutcome() error: %v", err)
	}

	if fx.profiles.attemptBumps[42] != 1 {
		t.Errorf("attempt bumps = %d, want 1", fx.profiles.attemptBumps[42])
	}
	if _, ok := fx.profiles.pendingUntil[42]; ok {
		t.Error("failed badge attempt must not enter pending")
	}
}

func TestCommitOutcomeRejectsUnsealedAttempt(t *testing.T) {
	fx := newServiceFixture(t)
	attempt := verification.NewAttempt(0, time.Now())

	if err := fx.svc.CommitOutcome(1, attempt); err != verification.ErrNotSealed {
		t.Fatalf("CommitOutcome() error = %v, want ErrNotSealed", err)
	}
	if len(fx.attempts.sessions) != 0 {
		t.Error("unsealed attempt must not be recorded")
	}
}

func TestApproveDuePending(t *testing.T) {
	fx := newServiceFixture(t)
	fx.profiles.pendingQueue = []models.Profile{{ID: 5}, {ID: 9}}
	fx.profiles.approveReturns[9] = false // raced with another approval

	approved, err := fx.svc.ApproveDuePending(time.Now())
	if err != nil {
		t.Fatalf("ApproveDuePending() error: %v", err)
	}
	if approved != 1 {
		t.Errorf("approved = %d, want 1", approved)
	}
	if !fx.profiles.approved[5] {
		t.Error("user 5 not approved")
	}
	if fx.notifications.lastType() != models.NotificationVerificationDone {
		t.Errorf("notification type = %s, want %s", fx.notifications.lastType(), models.NotificationVerificationDone)
	}
}

func TestFullCardFlowThroughChallenges(t *testing.T) {
	// Drive level 1 end to end through the real challenge evaluators.
	fx := newServiceFixture(t)

	flow, err := fx.svc.StartFlow(1, 1)
	if err != nil {
		t.Fatalf("StartFlow() error: %v", err)
	}

	for {
		q, ok := flow.Math.Current()
		if !ok {
			break
		}
		if _, _, err := flow.Math.Submit(q.Answer); err != nil {
			t.Fatalf("math Submit() error: %v", err)
		}
	}
	mathResult, err := flow.Math.Result()
	if err != nil {
		t.Fatalf("math Result() error: %v", err)
	}
	if err := flow.Attempt.Record(mathResult); err != nil {
		t.Fatalf("Record(math) error: %v", err)
	}

	for {
		item, ok := flow.Quiz.Current()
		if !ok {
			break
		}
		if _, _, err := flow.Quiz.Select(item.Correct); err != nil {
			t.Fatalf("quiz Select() error: %v", err)
		}
	}
	quizResult, err := flow.Quiz.Result()
	if err != nil {
		t.Fatalf("quiz Result() error: %v", err)
	}
	if err := flow.Attempt.Record(quizResult); err != nil {
		t.Fatalf("Record(quiz) error: %v", err)
	}

	start := time.Now()
	if err := flow.Touch.Press(start); err != nil {
		t.Fatalf("touch Press() error: %v", err)
	}
	flow.Touch.Release(start.Add(flow.Touch.Threshold() + 100*time.Millisecond))
	touchResult, err := flow.Touch.Result()
	if err != nil {
		t.Fatalf("touch Result() error: %v", err)
	}
	if err := flow.Attempt.Record(touchResult); err != nil {
		t.Fatalf("Record(touch) error: %v", err)
	}

	if err := flow.Voice.Start(start); err != nil {
		t.Fatalf("voice Start() error: %v", err)
	}
	flow.Voice.Stop(start.Add(3500 * time.Millisecond))
	voiceResult, err := flow.Voice.Result()
	if err != nil {
		t.Fatalf("voice Result() error: %v", err)
	}
	if err := flow.Attempt.Record(voiceResult); err != nil {
		t.Fatalf("Record(voice) error: %v", err)
	}

	if err := fx.svc.CommitOutcome(1, flow.Attempt); err != nil {
		t.Fatalf("CommitOutcome() error: %v", err)
	}
	if len(fx.cards.saved) != 1 {
		t.Fatalf("saved %d cards, want 1", len(fx.cards.saved))
	}
	if fx.cards.saved[0].TouchDurationMs != flow.Touch.Threshold().Milliseconds() {
		t.Errorf("touch metric = %d, want threshold %d",
			fx.cards.saved[0].TouchDurationMs, flow.Touch.Threshold().Milliseconds())
	}
	if fx.cards.saved[0].VoiceRecorded != true {
		t.Error("voice capture not recorded on card")
	}
}
