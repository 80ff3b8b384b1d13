package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"gamehub/internal/repository"
)

// NotificationHandler serves the notification list and read-marking
// endpoints.
type NotificationHandler struct {
	notifRepo *repository.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifRepo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifRepo: notifRepo}
}

// List returns the user's notifications with the unread count
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notifications, err := h.notifRepo.GetByUser(profile.ID, 50)
	if err != nil {
		log.Printf("Error loading notifications: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	unread, err := h.notifRepo.CountUnread(profile.ID)
	if err != nil {
		log.Printf("Error counting unread notifications: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	entries := make([]map[string]interface{}, 0, len(notifications))
	for _, n := range notifications {
		entries = append(entries, map[string]interface{}{
			"id":        n.ID,
			"type":      n.Type,
			"title":     n.Title,
			"message":   n.Message,
			"read":      n.Read,
			"createdAt": n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": entries,
		"unread":        unread,
	})
}

// UnreadCount returns just the unread badge count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	unread, err := h.notifRepo.CountUnread(profile.ID)
	if err != nil {
		log.Printf("Error counting unread notifications: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load count")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"unread": unread})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithJSONError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.notifRepo.MarkRead(id, profile.ID); err != nil {
		log.Printf("Error marking notification read: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MarkAllRead marks every notification for the user as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.notifRepo.MarkAllRead(profile.ID); err != nil {
		log.Printf("Error marking notifications read: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
