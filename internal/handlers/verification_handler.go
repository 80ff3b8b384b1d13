package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gamehub/internal/service"
	"gamehub/internal/verification"
)

// VerificationHandler drives the four-step verification pipeline over
// HTTP. Flow state lives in memory per user; a new start replaces any
// abandoned flow.
type VerificationHandler struct {
	verificationService *service.VerificationService
	templates           *template.Template

	mu    sync.Mutex
	flows map[int64]*service.VerificationFlow // userID -> active flow
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationService *service.VerificationService, templates *template.Template) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		templates:           templates,
		flows:               make(map[int64]*service.VerificationFlow),
	}
}

func (h *VerificationHandler) getFlow(userID int64) *service.VerificationFlow {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flows[userID]
}

func (h *VerificationHandler) setFlow(userID int64, flow *service.VerificationFlow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flows[userID] = flow
}

func (h *VerificationHandler) clearFlow(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.flows, userID)
}

// Start opens a verification flow. An optional "level" form value in
// 1-5 selects a card-tier flow; absent or zero selects the base badge
// flow.
func (h *VerificationHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cardLevel := 0
	if levelStr := r.FormValue("level"); levelStr != "" {
		parsed, err := strconv.Atoi(levelStr)
		if err != nil {
			respondWithJSONError(w, http.StatusBadRequest, "Invalid card level")
			return
		}
		cardLevel = parsed
	}

	flow, err := h.verificationService.StartFlow(profile.ID, cardLevel)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCardLocked):
			respondWithJSONError(w, http.StatusForbidden, "Earn the previous card level first")
		case errors.Is(err, service.ErrCardAlreadyEarned):
			respondWithJSONError(w, http.StatusConflict, "You already hold this card")
		default:
			log.Printf("Error starting verification flow: %v", err)
			respondWithJSONError(w, http.StatusInternalServerError, "Failed to start verification")
		}
		return
	}

	h.setFlow(profile.ID, flow)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cardLevel":     cardLevel,
		"step":          string(verification.KindMath),
		"mathQuestions": flow.Math.TotalQuestions(),
		"touchSeconds":  int(flow.Touch.Threshold().Seconds()),
		"voiceSeconds":  int(flow.Voice.MinDuration().Seconds()),
		"phraseCount":   flow.Voice.PhraseCount(),
	})
}

// Abandon discards the active flow without committing anything
func (h *VerificationHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.clearFlow(profile.ID)
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// MathQuestion returns the current math question
func (h *VerificationHandler) MathQuestion(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	question, ok := flow.Math.Current()
	if !ok {
		respondWithJSONError(w, http.StatusConflict, "Math step already complete")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"prompt":   question.Prompt(),
		"number":   flow.Math.QuestionNumber(),
		"total":    flow.Math.TotalQuestions(),
	})
}

// MathAnswer scores one math answer. When the final question is
// answered the step result is recorded on the attempt.
func (h *VerificationHandler) MathAnswer(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	answer, err := strconv.Atoi(r.FormValue("answer"))
	if err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "Invalid answer")
		return
	}

	correct, done, err := flow.Math.Submit(answer)
	if err != nil {
		respondWithJSONError(w, http.StatusConflict, "Math step already complete")
		return
	}

	if done {
		if err := h.recordStep(flow, flow.Math.Result); err != nil {
			log.Printf("Error recording math result: %v", err)
			respondWithJSONError(w, http.StatusInternalServerError, "Failed to record step")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"correct":      correct,
		"done":         done,
		"correctCount": flow.Math.CorrectCount(),
	})
}

// QuizQuestion returns the current quiz question without its answer
func (h *VerificationHandler) QuizQuestion(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	item, ok := flow.Quiz.Current()
	if !ok {
		respondWithJSONError(w, http.StatusConflict, "Quiz step already complete")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"prompt":  item.Prompt,
		"options": item.Options,
		"number":  flow.Quiz.QuestionNumber(),
		"total":   flow.Quiz.TotalQuestions(),
	})
}

// QuizAnswer scores one quiz selection
func (h *VerificationHandler) QuizAnswer(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	option, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "Invalid option")
		return
	}

	correct, done, err := flow.Quiz.Select(option)
	if err != nil {
		if errors.Is(err, verification.ErrChallengeComplete) {
			respondWithJSONError(w, http.StatusConflict, "Quiz step already complete")
		} else {
			respondWithJSONError(w, http.StatusBadRequest, "Option out of range")
		}
		return
	}

	if done {
		if err := h.recordStep(flow, flow.Quiz.Result); err != nil {
			log.Printf("Error recording quiz result: %v", err)
			respondWithJSONError(w, http.StatusInternalServerError, "Failed to record step")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"correct":      correct,
		"done":         done,
		"correctCount": flow.Quiz.CorrectCount(),
	})
}

// TouchPress marks the hold start
func (h *VerificationHandler) TouchPress(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	if err := flow.Touch.Press(time.Now()); err != nil {
		respondWithJSONError(w, http.StatusConflict, "Touch step already complete")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"holding":   true,
		"threshold": flow.Touch.Threshold().Milliseconds(),
	})
}

// TouchRelease ends the hold. Releasing before the threshold resets
// progress to zero; at or past the threshold the step completes.
func (h *VerificationHandler) TouchRelease(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	done := flow.Touch.Release(time.Now())
	if done {
		if err := h.recordStep(flow, flow.Touch.Result); err != nil {
			log.Printf("Error recording touch result: %v", err)
			respondWithJSONError(w, http.StatusInternalServerError, "Failed to record step")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"done": done,
	})
}

// VoiceStart marks the capture start
func (h *VerificationHandler) VoiceStart(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	if err := flow.Voice.Start(time.Now()); err != nil {
		respondWithJSONError(w, http.StatusConflict, "Voice step already complete")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"capturing":  true,
		"minSeconds": int(flow.Voice.MinDuration().Seconds()),
	})
}

// VoiceStop ends the capture. Stopping early is retryable; a capture of
// at least the minimum duration completes the step and seals the
// attempt, so the outcome is committed here.
func (h *VerificationHandler) VoiceStop(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active verification flow")
		return
	}

	done := flow.Voice.Stop(time.Now())
	if !done {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"done":  false,
			"retry": true,
		})
		return
	}

	if err := h.recordStep(flow, flow.Voice.Result); err != nil {
		log.Printf("Error recording voice result: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to record step")
		return
	}

	if !flow.Attempt.IsSealed() {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"done": true})
		return
	}

	passed, err := flow.Attempt.OverallPassed()
	if err != nil {
		log.Printf("Error reading attempt outcome: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to read outcome")
		return
	}

	if err := h.verificationService.CommitOutcome(profile.ID, flow.Attempt); err != nil {
		log.Printf("Error committing verification outcome: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to commit outcome")
		return
	}

	h.clearFlow(profile.ID)

	result := map[string]interface{}{
		"done":   true,
		"sealed": true,
		"passed": passed,
	}
	if !flow.Attempt.IsCardFlow() && passed {
		result["pendingUntil"] = flow.Attempt.PendingUntil().UTC().Format(time.RFC3339)
	}
	respondWithJSON(w, http.StatusOK, result)
}

// Status reports where the active flow currently stands
func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flow := h.getFlow(profile.ID)
	if flow == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}

	kind, _ := flow.Attempt.CurrentKind()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"active":    true,
		"cardLevel": flow.Attempt.CardLevel,
		"step":      string(kind),
		"stepIndex": flow.Attempt.StepIndex(),
	})
}

// recordStep pulls a completed challenge result and appends it to the
// attempt ledger.
func (h *VerificationHandler) recordStep(flow *service.VerificationFlow, result func() (verification.ChallengeResult, error)) error {
	stepResult, err := result()
	if err != nil {
		return err
	}
	return flow.Attempt.Record(stepResult)
}
