package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamehub/internal/models"
	"gamehub/internal/repository"
	"gamehub/internal/service"
)

// AdminHandler handles admin-specific routes
type AdminHandler struct {
	templates     *template.Template
	backupService *service.BackupService
	cardRepo      *repository.CardRepository
	profileRepo   *repository.ProfileRepository
	middleware    *Middleware
	version       string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(templates *template.Template, backupService *service.BackupService, cardRepo *repository.CardRepository, profileRepo *repository.ProfileRepository, middleware *Middleware, version string) *AdminHandler {
	return &AdminHandler{
		templates:     templates,
		backupService: backupService,
		cardRepo:      cardRepo,
		profileRepo:   profileRepo,
		middleware:    middleware,
		version:       version,
	}
}

// getCSRFToken is a helper to get a CSRF token for the session
func (h *AdminHandler) getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := h.middleware.GetCSRFToken(cookie.Value)
	return token
}

// ShowAdminDashboard shows the admin dashboard
func (h *AdminHandler) ShowAdminDashboard(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil || !profile.IsAdmin {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	settings, err := h.cardRepo.GetDifficultySettings()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load difficulty settings", "Error fetching difficulty settings", err)
		return
	}

	stats, err := h.getDatabaseStats()
	if err != nil {
		log.Printf("Error getting database stats: %v", err)
		stats = &DatabaseStats{}
	}

	data := AdminDashboardViewData{
		Title:      "Admin Dashboard",
		Profile:    profile,
		Difficulty: difficultyRows(settings),
		Stats:      stats,
		CSRFToken:  h.getCSRFToken(r),
		Version:    h.version,
	}

	if err := h.templates.ExecuteTemplate(w, "admin_dashboard.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering admin dashboard", err)
	}
}

// difficultyRows flattens the settings map into level order for display
func difficultyRows(settings map[int]models.DifficultyProfile) []models.DifficultyProfile {
	rows := make([]models.DifficultyProfile, 0, 5)
	for level := 1; level <= 5; level++ {
		if p, ok := settings[level]; ok {
			rows = append(rows, p)
		} else {
			rows = append(rows, models.DifficultyProfile{
				CardLevel:        level,
				MathQuestions:    5,
				QuizQuestions:    5,
				TouchHoldSeconds: 3,
				VoicePhraseCount: 1,
			})
		}
	}
	return rows
}

// UpdateDifficulty saves the challenge configuration for one card level
func (h *AdminHandler) UpdateDifficulty(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil || !profile.IsAdmin {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil || level < 1 || level > 5 {
		http.Error(w, "Invalid card level", http.StatusBadRequest)
		return
	}

	setting := models.DifficultyProfile{
		CardLevel:        level,
		MathQuestions:    formInt(r, "math_questions", 5),
		QuizQuestions:    formInt(r, "quiz_questions", 5),
		TouchHoldSeconds: formInt(r, "touch_hold_seconds", 3),
		VoicePhraseCount: formInt(r, "voice_phrase_count", 1),
	}
	if setting.MathQuestions < 1 || setting.QuizQuestions < 1 || setting.TouchHoldSeconds < 1 || setting.VoicePhraseCount < 1 {
		http.Error(w, "Difficulty values must be positive", http.StatusBadRequest)
		return
	}

	if err := h.cardRepo.SaveDifficulty(setting); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save difficulty", "Error saving difficulty settings", err)
		return
	}

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func formInt(r *http.Request, name string, fallback int) int {
	value, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return fallback
	}
	return value
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil || !profile.IsAdmin {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	// Set headers for file download
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("gamehub_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	log.Printf("Database exported by admin user %s", profile.Email)
}

// ImportDatabase imports a database backup from an uploaded file
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil || !profile.IsAdmin {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("backup_file")
	if err != nil {
		http.Error(w, "Please select a backup file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	clearData := r.FormValue("clear_data") == "true"

	if clearData {
		log.Printf("Admin %s requested database clear before import", profile.Email)
		if err := h.clearDatabase(); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to clear database", "Error clearing database", err)
			return
		}
	}

	if err := h.backupService.ImportFromReader(file); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to import database", "Error importing database", err)
		return
	}

	log.Printf("Database imported successfully by admin user %s (clear_data=%v)", profile.Email, clearData)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// DatabaseStats holds database statistics
type DatabaseStats struct {
	Profiles      int
	Cards         int
	Verifications int
	QuizResults   int
	ChatMessages  int
	Notifications int
}

func (h *AdminHandler) getDatabaseStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	db := h.backupService.GetDB()

	counts := []struct {
		table string
		dest  *int
	}{
		{"profiles", &stats.Profiles},
		{"verification_cards", &stats.Cards},
		{"verification_sessions", &stats.Verifications},
		{"quiz_results", &stats.QuizResults},
		{"chat_messages", &stats.ChatMessages},
		{"notifications", &stats.Notifications},
	}
	for _, c := range counts {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (h *AdminHandler) clearDatabase() error {
	db := h.backupService.GetDB()

	// Delete in reverse order of dependencies
	tables := []string{
		"notifications",
		"chat_bans",
		"chat_messages",
		"quiz_results",
		"verification_sessions",
		"verification_cards",
		"password_reset_tokens",
		"sessions",
		"profiles",
	}

	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s", table)
		if _, err := db.Exec(query); err != nil {
			// Ignore "no such table" errors across dialects
			if !strings.Contains(err.Error(), "no such table") &&
				!strings.Contains(err.Error(), "doesn't exist") &&
				!strings.Contains(err.Error(), "does not exist") {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
	}

	return nil
}
