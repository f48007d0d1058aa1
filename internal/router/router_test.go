package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentalassist-backend/internal/handlers"
	"rentalassist-backend/internal/intent"
	"rentalassist-backend/internal/middleware"
	"rentalassist-backend/internal/services"
)

func newTestRouter(t *testing.T, sessionsPerMinute int) http.Handler {
	t.Helper()

	assistant := services.NewAssistantService(intent.NewDefault(), services.AssistantOptions{})
	t.Cleanup(assistant.Close)

	limiter := middleware.NewRateLimiter(sessionsPerMinute, time.Minute)
	t.Cleanup(limiter.Stop)

	auth := middleware.NewSessionAuth("router-secret", time.Hour)
	ws := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }

	return New(auth, limiter, handlers.NewAssistantHandler(assistant, auth), ws, "http://localhost:5173")
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("Unexpected body %q", rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID on every response")
	}
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t, 10)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/v1/assistant/sessions", http.StatusCreated},
		{http.MethodGet, "/api/v1/assistant/session", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/assistant/session/messages", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/assistant/session/regenerate", http.StatusUnauthorized},
		{http.MethodDelete, "/api/v1/assistant/session", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/ws", http.StatusTeapot},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestSessionCreationIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 2)

	var last int
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/assistant/sessions", nil))
		last = rr.Code
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("Expected third session in a minute to be limited, got %d", last)
	}
}
