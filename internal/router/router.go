package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"rentalassist-backend/internal/handlers"
	"rentalassist-backend/internal/middleware"
)

// New wires the HTTP surface. sessionLimiter guards session creation, the
// only unauthenticated write.
func New(
	sessionAuth *middleware.SessionAuth,
	sessionLimiter *middleware.RateLimiter,
	assistantHandler *handlers.AssistantHandler,
	wsHandler http.HandlerFunc,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Assistant Routes ────
		r.Route("/assistant", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(15 * time.Second))
			r.With(sessionLimiter.Middleware).Post("/sessions", assistantHandler.CreateSession)

			r.Group(func(r chi.Router) {
				r.Use(sessionAuth.Middleware)
				r.Get("/session", assistantHandler.GetSession)
				r.Delete("/session", assistantHandler.EndSession)
				r.Post("/session/messages", assistantHandler.SubmitMessage)
				r.Post("/session/suggestions", assistantHandler.SubmitSuggestion)
				r.Post("/session/messages/{messageID}/feedback", assistantHandler.RateMessage)
				r.Post("/session/regenerate", assistantHandler.Regenerate)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHandler)
	})

	return r
}
