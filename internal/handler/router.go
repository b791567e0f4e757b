package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/leroy-ai/ai-friend/backend/internal/handler/chat"
	personaHandler "github.com/leroy-ai/ai-friend/backend/internal/handler/persona"
	wsHandler "github.com/leroy-ai/ai-friend/backend/internal/handler/ws"
	middlewarePkg "github.com/leroy-ai/ai-friend/backend/internal/middleware"
	aiService "github.com/leroy-ai/ai-friend/backend/internal/service/ai"
	chatService "github.com/leroy-ai/ai-friend/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *chatService.Service, turns *aiService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personas := personaHandler.New(sessions)
	chats := chatHandler.New(sessions, turns)
	sockets := wsHandler.New(sessions, turns)

	r.Route("/api", func(api chi.Router) {
		personas.RegisterRoutes(api)
		chats.RegisterRoutes(api)
		sockets.RegisterRoutes(api)
	})

	return r
}
