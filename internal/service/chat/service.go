package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leroy-ai/ai-friend/backend/internal/model/chat"
	"github.com/leroy-ai/ai-friend/backend/internal/model/persona"
	"github.com/leroy-ai/ai-friend/backend/internal/service/prompt"
)

var (
	ErrPersonaIncomplete = errors.New("persona config is incomplete")
	ErrSessionNotFound   = errors.New("session not found")
)

// Service owns session and transcript state. Sessions are independent units;
// the lock only guards the maps, never an in-flight completion call.
type Service struct {
	mu          sync.RWMutex
	sessions    map[string]chat.Session
	transcripts map[string][]chat.Message
}

// NewService bootstraps the in-memory session store.
func NewService() *Service {
	return &Service{
		sessions:    make(map[string]chat.Session),
		transcripts: make(map[string][]chat.Message),
	}
}

// CreateSession provisions a session from a completed persona config. The
// system prompt is compiled once here and the transcript is seeded with the
// persona's greeting.
func (s *Service) CreateSession(_ context.Context, cfg persona.Config) (chat.Session, error) {
	if !cfg.Complete() {
		return chat.Session{}, fmt.Errorf("%w: missing %v", ErrPersonaIncomplete, cfg.MissingFields())
	}

	now := time.Now().UTC()
	session := chat.Session{
		ID:           uuid.NewString(),
		Persona:      cfg,
		SystemPrompt: prompt.Compile(cfg),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.transcripts[session.ID] = []chat.Message{seedGreeting(session)}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// ReplacePersona swaps the whole persona config ("edit bot"). The system
// prompt is recompiled and the transcript restarts with the new greeting;
// partial merges are deliberately unsupported.
func (s *Service) ReplacePersona(_ context.Context, sessionID string, cfg persona.Config) (chat.Session, error) {
	if !cfg.Complete() {
		return chat.Session{}, fmt.Errorf("%w: missing %v", ErrPersonaIncomplete, cfg.MissingFields())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	session.Persona = cfg
	session.SystemPrompt = prompt.Compile(cfg)
	session.UpdatedAt = time.Now().UTC()
	s.sessions[sessionID] = session
	s.transcripts[sessionID] = []chat.Message{seedGreeting(session)}

	return session, nil
}

// ClearTranscript resets the conversation to the single seeded greeting while
// keeping the persona untouched ("clear chat").
func (s *Service) ClearTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	seeded := []chat.Message{seedGreeting(session)}
	s.transcripts[sessionID] = seeded

	copied := make([]chat.Message, len(seeded))
	copy(copied, seeded)
	return copied, nil
}

// AppendMessage appends a message to the session transcript, assigning its
// identifier and timestamp.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.transcripts[message.SessionID] = append(s.transcripts[message.SessionID], message)
	return message, nil
}

// Transcript returns a copy of the stored messages for the session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.transcripts[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// DeleteSession removes the session and its transcript.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.transcripts, sessionID)
	return nil
}

func seedGreeting(session chat.Session) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      chat.RoleAssistant,
		Content:   prompt.Greeting(session.Persona),
		CreatedAt: time.Now().UTC(),
	}
}
