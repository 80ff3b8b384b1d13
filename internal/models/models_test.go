package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestLevelForExp(t *testing.T) {
	tests := []struct {
		name string
		exp  int
		want int
	}{
		{name: "zero exp", exp: 0, want: 1},
		{name: "just under first threshold", exp: 99, want: 1},
		{name: "exactly first threshold", exp: 100, want: 2},
		{name: "mid range", exp: 700, want: 4},
		{name: "last threshold", exp: 4500, want: 10},
		{name: "beyond last threshold stays capped", exp: 100000, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelForExp(tt.exp); got != tt.want {
				t.Errorf("LevelForExp(%d) = %d, want %d", tt.exp, got, tt.want)
			}
		})
	}
}

func TestExpThresholdsRoundTrip(t *testing.T) {
	// A profile sitting exactly on the floor of its level should need
	// the next threshold to advance.
	for level := 1; level < MaxLevel; level++ {
		floor := ExpForCurrentLevel(level)
		next := ExpForNextLevel(level)
		if next <= floor {
			t.Errorf("level %d: next threshold %d not above floor %d", level, next, floor)
		}
		if got := LevelForExp(floor); got != level {
			t.Errorf("LevelForExp(%d) = %d, want %d", floor, got, level)
		}
	}
}

func TestCardInfoForLevel(t *testing.T) {
	tests := []struct {
		level    int
		wantType string
		wantName string
		wantOK   bool
	}{
		{level: 1, wantType: "blue", wantName: "Common Card", wantOK: true},
		{level: 2, wantType: "green", wantName: "Rare Card", wantOK: true},
		{level: 3, wantType: "purple", wantName: "Epic Card", wantOK: true},
		{level: 4, wantType: "red", wantName: "Mythic Card", wantOK: true},
		{level: 5, wantType: "golden", wantName: "Legendary Card", wantOK: true},
		{level: 0, wantOK: false},
		{level: 6, wantOK: false},
	}

	for _, tt := range tests {
		info, ok := CardInfoForLevel(tt.level)
		if ok != tt.wantOK {
			t.Errorf("CardInfoForLevel(%d) ok = %v, want %v", tt.level, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if info.Type != tt.wantType || info.Name != tt.wantName {
			t.Errorf("CardInfoForLevel(%d) = %+v, want {%s %s}", tt.level, info, tt.wantType, tt.wantName)
		}
	}
}

func TestPasswordResetTokenIsExpired(t *testing.T) {
	valid := PasswordResetToken{ExpiresAt: time.Now().Add(30 * time.Minute)}
	if valid.IsExpired() {
		t.Error("token expiring in 30 minutes reported as expired")
	}
	stale := PasswordResetToken{ExpiresAt: time.Now().Add(-1 * time.Minute)}
	if !stale.IsExpired() {
		t.Error("token expired a minute ago reported as valid")
	}
}
