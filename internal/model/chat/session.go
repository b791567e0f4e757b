package chat

import (
	"time"

	"github.com/leroy-ai/ai-friend/backend/internal/model/persona"
)

// Session owns one persona config and its derived system prompt.
// SystemPrompt is always the compiler output for Persona as of the last
// confirmed edit; it is recomputed on replacement, never patched.
type Session struct {
	ID           string         `json:"id"`
	Persona      persona.Config `json:"persona"`
	SystemPrompt string         `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
