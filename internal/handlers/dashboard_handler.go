package handlers

import (
	"html/template"
	"log"
	"net/http"

	"gamehub/internal/repository"
)

// DashboardHandler serves the main hub page and the leaderboard
type DashboardHandler struct {
	profileRepo *repository.ProfileRepository
	cardRepo    *repository.CardRepository
	notifRepo   *repository.NotificationRepository
	templates   *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(profileRepo *repository.ProfileRepository, cardRepo *repository.CardRepository, notifRepo *repository.NotificationRepository, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		profileRepo: profileRepo,
		cardRepo:    cardRepo,
		notifRepo:   notifRepo,
		templates:   templates,
	}
}

// Home renders the dashboard with progress, cards and unread count
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	cards, err := h.cardRepo.GetCardsByUser(profile.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard", "Error loading cards for dashboard", err)
		return
	}

	unread, err := h.notifRepo.CountUnread(profile.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard", "Error counting unread notifications", err)
		return
	}

	data := NewDashboardData(profile, cards, unread)
	if err := h.templates.ExecuteTemplate(w, "dashboard.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering dashboard", err)
	}
}

// Leaderboard renders the top profiles by total points
func (h *DashboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	top, err := h.profileRepo.GetLeaderboard(20)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard", "Error loading leaderboard", err)
		return
	}

	data := NewLeaderboardData(profile, top)
	if err := h.templates.ExecuteTemplate(w, "leaderboard.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering leaderboard", err)
	}
}

// LeaderboardJSON returns the top profiles as JSON
func (h *DashboardHandler) LeaderboardJSON(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	top, err := h.profileRepo.GetLeaderboard(20)
	if err != nil {
		log.Printf("Error loading leaderboard: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	entries := make([]map[string]interface{}, 0, len(top))
	for i, p := range top {
		entries = append(entries, map[string]interface{}{
			"rank":        i + 1,
			"username":    p.Username,
			"avatarUrl":   p.AvatarURL,
			"level":       p.Level,
			"totalPoints": p.TotalPoints,
			"isVerified":  p.IsVerified,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
