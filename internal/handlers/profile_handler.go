package handlers

import (
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"

	"gamehub/internal/repository"
	"gamehub/internal/security"
	"gamehub/internal/storage"
	"gamehub/internal/validation"
)

// ProfileHandler serves the profile page and profile mutations
type ProfileHandler struct {
	profileRepo   *repository.ProfileRepository
	avatarStore   *storage.AvatarStore
	templates     *template.Template
	uploadMaxSize int64
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileRepo *repository.ProfileRepository, avatarStore *storage.AvatarStore, templates *template.Template, uploadMaxSize int64) *ProfileHandler {
	return &ProfileHandler{
		profileRepo:   profileRepo,
		avatarStore:   avatarStore,
		templates:     templates,
		uploadMaxSize: uploadMaxSize,
	}
}

// Page renders the profile page
func (h *ProfileHandler) Page(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := NewProfilePageData(profile, h.avatarStore.IsEnabled())
	if err := h.templates.ExecuteTemplate(w, "profile.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering profile page", err)
	}
}

// UpdateUsername changes the display name
func (h *ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	username := r.FormValue("username")
	if err := validation.ValidateUsername(username); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.profileRepo.GetProfileByUsername(username)
	if err != nil {
		log.Printf("Error checking username: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to update username")
		return
	}
	if existing != nil && existing.ID != profile.ID {
		respondWithJSONError(w, http.StatusConflict, "Username already taken")
		return
	}

	if err := h.profileRepo.UpdateUsername(profile.ID, username); err != nil {
		log.Printf("Error updating username: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to update username")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"username": username})
}

// UpdatePassword changes the password after checking the current one
func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	if profile.PasswordHash == "" {
		respondWithJSONError(w, http.StatusBadRequest, "This account signs in with an external provider")
		return
	}
	if !security.CheckPassword(current, profile.PasswordHash) {
		respondWithJSONError(w, http.StatusForbidden, "Current password is incorrect")
		return
	}
	if err := validation.ValidatePassword(next); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}
	if err := h.profileRepo.UpdatePassword(profile.ID, hash); err != nil {
		log.Printf("Error updating password: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UploadAvatar stores a new avatar image and saves its public URL
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize)
	if err := r.ParseMultipartForm(h.uploadMaxSize); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/gif" {
		respondWithJSONError(w, http.StatusBadRequest, "Avatar must be a JPEG, PNG or GIF image")
		return
	}

	url, err := h.avatarStore.Upload(r.Context(), profile.ID, header.Filename, data)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			respondWithJSONError(w, http.StatusServiceUnavailable, "Avatar uploads are not available")
			return
		}
		log.Printf("Error uploading avatar: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	if err := h.profileRepo.UpdateAvatar(profile.ID, url); err != nil {
		log.Printf("Error saving avatar URL: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to save avatar")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}
