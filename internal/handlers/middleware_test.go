package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimitThrottlesAfterLimit(t *testing.T) {
	m := NewMiddleware(nil, "test-secret")
	handler := m.RateLimit(okHandler)

	var lastCode int
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "203.0.113.9:51000"
		recorder := httptest.NewRecorder()
		handler(recorder, req)
		lastCode = recorder.Code
		if i < 10 && recorder.Code != http.StatusOK {
			t.Fatalf("request %d rejected early with %d", i+1, recorder.Code)
		}
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", lastCode)
	}
}

func TestRateLimitSeparatesClients(t *testing.T) {
	m := NewMiddleware(nil, "test-secret")
	handler := m.RateLimit(okHandler)

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "203.0.113.9:51000"
		handler(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "198.51.100.20:40000"
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("fresh client rejected with %d", recorder.Code)
	}
}

func TestCSRFProtect(t *testing.T) {
	m := NewMiddleware(nil, "test-secret")
	handler := m.CSRFProtect(okHandler)

	sessionID := "session-abc"
	token, err := m.GetCSRFToken(sessionID)
	if err != nil {
		t.Fatalf("GetCSRFToken() error = %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
		useHeader bool
		wantCode  int
	}{
		{
			name:      "valid form token",
			sessionID: sessionID,
			token:     token,
			wantCode:  http.StatusOK,
		},
		{
			name:      "valid header token",
			sessionID: sessionID,
			token:     token,
			useHeader: true,
			wantCode:  http.StatusOK,
		},
		{
			name:      "missing token",
			sessionID: sessionID,
			wantCode:  http.StatusForbidden,
		},
		{
			name:      "token for another session",
			sessionID: "session-other",
			token:     token,
			wantCode:  http.StatusForbidden,
		},
		{
			name:     "no session cookie",
			token:    token,
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.token != "" && !tt.useHeader {
				form.Set("csrf_token", tt.token)
			}

			req := httptest.NewRequest("POST", "/admin/difficulty/1", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.useHeader {
				req.Header.Set("X-CSRF-Token", tt.token)
			}
			if tt.sessionID != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.sessionID})
			}

			recorder := httptest.NewRecorder()
			handler(recorder, req)
			if recorder.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", recorder.Code, tt.wantCode)
			}
		})
	}
}
