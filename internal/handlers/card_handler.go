package handlers

import (
	"html/template"
	"log"
	"net/http"

	"gamehub/internal/models"
	"gamehub/internal/repository"
	"gamehub/internal/verification"
)

// CardHandler serves the card collection page and JSON listing
type CardHandler struct {
	cardRepo         *repository.CardRepository
	verificationRepo *repository.VerificationRepository
	templates        *template.Template
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardRepo *repository.CardRepository, verificationRepo *repository.VerificationRepository, templates *template.Template) *CardHandler {
	return &CardHandler{
		cardRepo:         cardRepo,
		verificationRepo: verificationRepo,
		templates:        templates,
	}
}

// Page renders the card collection with each tier's gate state
func (h *CardHandler) Page(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	tiers, err := h.buildTiers(profile.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load cards", "Error loading cards", err)
		return
	}

	data := NewCardsPageData(profile, tiers)
	if err := h.templates.ExecuteTemplate(w, "cards.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering cards page", err)
	}
}

// List returns the card tiers as JSON
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tiers, err := h.buildTiers(profile.ID)
	if err != nil {
		log.Printf("Error loading cards for user %d: %v", profile.ID, err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load cards")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"tiers": tiers})
}

// History returns the user's recent verification attempts
func (h *CardHandler) History(w http.ResponseWriter, r *http.Request) {
	profile := GetProfileFromContext(r.Context())
	if profile == nil {
		respondWithJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := h.verificationRepo.GetSessionsByUser(profile.ID, 20)
	if err != nil {
		log.Printf("Error loading verification history: %v", err)
		respondWithJSONError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *CardHandler) buildTiers(userID int64) ([]CardTierView, error) {
	earned, err := h.cardRepo.GetEarnedLevels(userID)
	if err != nil {
		return nil, err
	}
	cards, err := h.cardRepo.GetCardsByUser(userID)
	if err != nil {
		return nil, err
	}

	byLevel := make(map[int]models.VerificationCard, len(cards))
	for _, card := range cards {
		byLevel[card.CardLevel] = card
	}

	tiers := make([]CardTierView, 0, 5)
	for level := 1; level <= 5; level++ {
		info, _ := models.CardInfoForLevel(level)
		tier := CardTierView{
			Level:    level,
			CardType: info.Type,
			CardName: info.Name,
			Decision: verification.EvaluateGate(level, earned).String(),
		}
		if card, ok := byLevel[level]; ok {
			tier.Earned = true
			tier.EarnedAt = card.EarnedAt
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}
