package handlers

import (
	"time"

	"gamehub/internal/models"
)

type AdminDashboardViewData struct {
	Title      string
	Profile    *models.Profile
	Difficulty []models.DifficultyProfile
	Stats      *DatabaseStats
	CSRFToken  string
	Version    string
}

// CardTierView is one row of the card collection page.
type CardTierView struct {
	Level    int
	CardType string
	CardName string
	Decision string
	Earned   bool
	EarnedAt time.Time
}

type DashboardData struct {
	Title       string
	Profile     *models.Profile
	Cards       []models.VerificationCard
	UnreadCount int
	ExpCurrent  int
	ExpNeeded   int
}

// NewDashboardData builds the dashboard view with level progress
func NewDashboardData(profile *models.Profile, cards []models.VerificationCard, unread int) DashboardData {
	return DashboardData{
		Title:       "Dashboard - Game Hub",
		Profile:     profile,
		Cards:       cards,
		UnreadCount: unread,
		ExpCurrent:  profile.Exp - models.ExpForCurrentLevel(profile.Level),
		ExpNeeded:   models.ExpForNextLevel(profile.Level) - models.ExpForCurrentLevel(profile.Level),
	}
}

type LeaderboardData struct {
	Title   string
	Profile *models.Profile
	Top     []models.Profile
}

func NewLeaderboardData(profile *models.Profile, top []models.Profile) LeaderboardData {
	return LeaderboardData{
		Title:   "Leaderboard - Game Hub",
		Profile: profile,
		Top:     top,
	}
}

type CardsPageData struct {
	Title   string
	Profile *models.Profile
	Tiers   []CardTierView
}

func NewCardsPageData(profile *models.Profile, tiers []CardTierView) CardsPageData {
	return CardsPageData{
		Title:   "Cards - Game Hub",
		Profile: profile,
		Tiers:   tiers,
	}
}

type QuizPageData struct {
	Title   string
	Profile *models.Profile
}

func NewQuizPageData(profile *models.Profile) QuizPageData {
	return QuizPageData{
		Title:   "Quiz - Game Hub",
		Profile: profile,
	}
}

type ChatPageData struct {
	Title    string
	Profile  *models.Profile
	Messages []models.ChatMessage
}

func NewChatPageData(profile *models.Profile, messages []models.ChatMessage) ChatPageData {
	return ChatPageData{
		Title:    "Community Chat - Game Hub",
		Profile:  profile,
		Messages: messages,
	}
}

type ProfilePageData struct {
	Title          string
	Profile        *models.Profile
	AvatarUploads  bool
	ReferralLink   string
	PendingMinutes int
}

// NewProfilePageData builds the profile view. PendingMinutes is how
// many whole minutes remain on a pending verification, zero otherwise.
func NewProfilePageData(profile *models.Profile, avatarUploads bool) ProfilePageData {
	data := ProfilePageData{
		Title:         "Profile - Game Hub",
		Profile:       profile,
		AvatarUploads: avatarUploads,
		ReferralLink:  "/register?ref=" + profile.ReferralCode,
	}
	if profile.VerificationPending && profile.VerificationPendingUntil != nil {
		remaining := time.Until(*profile.VerificationPendingUntil)
		if remaining > 0 {
			data.PendingMinutes = int(remaining.Minutes()) + 1
		}
	}
	return data
}
