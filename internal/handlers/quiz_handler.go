package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gamehub/internal/service"
)

// QuizHandler runs the standalone quiz game. Game state lives in
// memory per user, like verification flows.
type QuizHandler struct {
	quizService *service.QuizService
	templates   *template.Template

	mu    sync.Mutex
	games map[int64]*service.QuizGame
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService, templates *template.Template) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		templates:   templates,
		games:       make(map[int64]*service.QuizGame),
	}
}

func (h *QuizHandler) getGame(userID int64) *service.QuizGame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.games[userID]
}

func (h *QuizHandler) setGame(userID int64, game *service.QuizGame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.games[userID] = game
}

func (h *QuizHandler) clearGame(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.games, userID)
}

// Page renders the quiz game page
func (h *QuizHandler) Page(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := NewQuizPageData(profile)
	if err := h.templates.ExecuteTemplate(w, "quiz.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering quiz page", err)
	}
}

// Start opens a new game run, replacing any abandoned one
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	game, err := h.quizService.StartGame(profile.ID, time.Now())
	if err != nil {
		log.Printf("Error starting quiz game: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to start game")
		return
	}

	h.setGame(profile.ID, game)

	question, _ := game.Current()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":       len(game.Questions),
		"number":      1,
		"prompt":      question.Prompt,
		"options":     question.Options,
		"timeSeconds": service.QuestionTimeSeconds,
	})
}

// Answer scores the current question. When the last question is
// answered the run is finished and rewards are committed.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	game := h.getGame(profile.ID)
	if game == nil {
		respondWithJSONError(w, http.StatusNotFound, "No active game")
		return
	}

	option, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "Invalid option")
		return
	}

	correct, pointsEarned, err := h.quizService.Answer(game, option, time.Now())
	if err != nil {
		respondWithJSONError(w, http.StatusConflict, "Game already finished")
		return
	}

	payload := map[string]interface{}{
		"correct":      correct,
		"pointsEarned": pointsEarned,
		"totalPoints":  game.Points,
		"done":         game.Done(),
	}

	if game.Done() {
		result, err := h.quizService.FinishGame(game)
		if err != nil {
			log.Printf("Error finishing quiz game: %v", err)
			respondWithJSONError(w, http.StatusInternalServerError, "Failed to finish game")
			return
		}
		h.clearGame(profile.ID)
		payload["correctAnswers"] = result.CorrectAnswers
		payload["totalQuestions"] = result.TotalQuestions
		payload["expEarned"] = result.ExpEarned
	} else {
		question, _ := game.Current()
		payload["number"] = game.Index + 1
		payload["prompt"] = question.Prompt
		payload["options"] = question.Options
		payload["timeSeconds"] = service.QuestionTimeSeconds
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// History returns the user's past game results
func (h *QuizHandler) History(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	results, err := h.quizService.History(profile.ID, 20)
	if err != nil {
		log.Printf("Error loading quiz history: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	entries := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		entries = append(entries, map[string]interface{}{
			"correctAnswers": res.CorrectAnswers,
			"totalQuestions": res.TotalQuestions,
			"pointsEarned":   res.PointsEarned,
			"expEarned":      res.ExpEarned,
			"completedAt":    res.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"results": entries})
}
