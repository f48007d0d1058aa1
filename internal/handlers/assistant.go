package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/id"
	"rentalassist-backend/internal/middleware"
	"rentalassist-backend/internal/models"
	"rentalassist-backend/internal/services"
)

const MaxTextLength = services.MaxTextLength

type AssistantHandler struct {
	assistant *services.AssistantService
	auth      *middleware.SessionAuth
}

func NewAssistantHandler(assistant *services.AssistantService, auth *middleware.SessionAuth) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, auth: auth}
}

// CreateSession starts a conversation and hands back the token that owns it.
func (h *AssistantHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.assistant.CreateSession(r.Context())

	sessionID := uuid.MustParse(sess.ID())

	token, expiresAt, err := h.auth.GenerateSessionToken(sessionID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to sign session token", "error", err)
		h.assistant.Dispose(r.Context(), sessionID)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   services.ToSessionView(sess.Snapshot()),
	})
}

func (h *AssistantHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.assistant.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, services.ToSessionView(sess.Snapshot()))
}

func (h *AssistantHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.assistant.Submit(r.Context(), middleware.GetSessionID(r.Context()), req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, models.SubmitResponse{
		Message:    services.ToMessageView(msg, nil),
		Generating: true,
	})
}

func (h *AssistantHandler) SubmitSuggestion(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.assistant.SubmitSuggestion(r.Context(), middleware.GetSessionID(r.Context()), req.Phrase)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, models.SubmitResponse{
		Message:    services.ToMessageView(msg, nil),
		Generating: true,
	})
}

func (h *AssistantHandler) RateMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := id.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("INVALID_ID", "Invalid message ID", r))
		return
	}

	var req models.FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Positive == nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"positive": "is required"}, r))
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	mid := conversation.MessageID(messageID)
	if err := h.assistant.Rate(r.Context(), sessionID, mid, *req.Positive); err != nil {
		handleServiceError(w, r, err)
		return
	}

	sess, err := h.assistant.Get(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	msg, _ := sess.Message(mid)
	writeJSON(w, http.StatusOK, services.ToMessageView(msg, map[conversation.MessageID]bool{mid: *req.Positive}))
}

func (h *AssistantHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if err := h.assistant.Regenerate(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]bool{"generating": true})
}

func (h *AssistantHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.assistant.Dispose(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}
