package persona

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leroy-ai/ai-friend/backend/internal/model/chat"
	"github.com/leroy-ai/ai-friend/backend/internal/model/persona"
	chatservice "github.com/leroy-ai/ai-friend/backend/internal/service/chat"
	"github.com/leroy-ai/ai-friend/backend/pkg/utils"
)

// Handler manages the persona/session lifecycle: create, inspect, edit,
// delete. Persona validation happens here, at the boundary, not in the
// prompt compiler.
type Handler struct {
	sessions *chatservice.Service
}

// New creates the persona handler.
func New(sessions *chatservice.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes registers persona/session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Put("/sessions/{sessionID}/persona", h.handleReplacePersona)
	r.Delete("/sessions/{sessionID}", h.handleDeleteSession)
}

type sessionResponse struct {
	Session  chat.Session   `json:"session"`
	Messages []chat.Message `json:"messages"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload persona.Config
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if missing := payload.MissingFields(); len(missing) > 0 {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("persona fields required: %v", missing))
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), payload)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.sessions.Transcript(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, Messages: messages})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleReplacePersona(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload persona.Config
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if missing := payload.MissingFields(); len(missing) > 0 {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("persona fields required: %v", missing))
		return
	}

	session, err := h.sessions.ReplacePersona(r.Context(), sessionID, payload)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, chatservice.ErrSessionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, chatservice.ErrPersonaIncomplete):
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	messages, err := h.sessions.Transcript(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{Session: session, Messages: messages})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.DeleteSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
