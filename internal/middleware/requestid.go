package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"rentalassist-backend/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID makes sure every request carries an X-Request-ID, echoes it on
// the response and adds it to the log fields in context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(RequestIDHeader, requestID)
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logger.WithLogFields(r.Context(), logger.LogFields{RequestID: requestID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
