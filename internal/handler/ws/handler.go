package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/leroy-ai/ai-friend/backend/internal/model/chat"
	aiservice "github.com/leroy-ai/ai-friend/backend/internal/service/ai"
	chatservice "github.com/leroy-ai/ai-friend/backend/internal/service/chat"
	"github.com/leroy-ai/ai-friend/backend/pkg/utils"
)

// Handler serves the chat UI over a WebSocket connection. Delivery is
// whole-turn only: one inbound user message yields one outbound frame with
// the two appended transcript entries. No token streaming.
type Handler struct {
	sessions *chatservice.Service
	turns    *aiservice.Service
	upgrader websocket.Upgrader
}

// New creates the WebSocket handler.
func New(sessions *chatservice.Service, turns *aiservice.Service) *Handler {
	return &Handler{
		sessions: sessions,
		turns:    turns,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type outboundFrame struct {
	Type     string         `json:"type"`
	Messages []chat.Message `json:"messages,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened for session=%s", sessionID)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error for session=%s: %v", sessionID, err)
			}
			return
		}

		h.dispatch(r.Context(), conn, sessionID, frame)
	}
}

// dispatch handles one inbound frame. Turns run synchronously on the read
// loop, matching the one-turn-at-a-time conversation model.
func (h *Handler) dispatch(ctx context.Context, conn *websocket.Conn, sessionID string, frame inboundFrame) {
	switch frame.Type {
	case "message":
		if strings.TrimSpace(frame.Text) == "" {
			h.writeError(conn, sessionID, "text is required")
			return
		}
		transcript, err := h.turns.AdvanceTurn(ctx, sessionID, frame.Text)
		if err != nil {
			h.writeError(conn, sessionID, h.describe(err))
			return
		}
		// The two entries this turn appended.
		turn := transcript[len(transcript)-2:]
		h.write(conn, sessionID, outboundFrame{Type: "turn", Messages: turn})
	case "clear":
		messages, err := h.sessions.ClearTranscript(ctx, sessionID)
		if err != nil {
			h.writeError(conn, sessionID, h.describe(err))
			return
		}
		h.write(conn, sessionID, outboundFrame{Type: "transcript", Messages: messages})
	default:
		h.writeError(conn, sessionID, "unknown frame type: "+frame.Type)
	}
}

func (h *Handler) describe(err error) string {
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		return "session not found"
	}
	return err.Error()
}

func (h *Handler) write(conn *websocket.Conn, sessionID string, frame outboundFrame) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed for session=%s: %v", sessionID, err)
	}
}

func (h *Handler) writeError(conn *websocket.Conn, sessionID, message string) {
	h.write(conn, sessionID, outboundFrame{Type: "error", Error: message})
}
