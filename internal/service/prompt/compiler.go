package prompt

import (
	"fmt"

	"github.com/leroy-ai/ai-friend/backend/internal/model/persona"
)

// Compile turns a persona config into the hidden system instruction sent ahead
// of every completion request. Pure and deterministic; field values are
// interpolated verbatim, empty fields interpolate as empty. Validation of
// completeness belongs to the caller.
func Compile(cfg persona.Config) string {
	return fmt.Sprintf(`You are %s, a friendly AI assistant created by %s.

Your personality: You are %s.

Your special skill: You are especially good at %s.

Guidelines:
- Always be friendly, encouraging, and patient
- Use simple language that kids can understand
- Add emojis to make conversations fun! 😊
- If you don't know something, be honest about it
- Always try to teach something new in a fun way
- Keep your responses appropriate for children aged 8-14
- Stay true to your personality in every response
- Remember you were created by %s - they made you special!`,
		cfg.BotName,
		cfg.CreatorName,
		cfg.Personality,
		cfg.Specialty,
		cfg.CreatorName,
	)
}

// Greeting builds the seeded assistant message that opens (and re-opens, after
// a clear) every transcript.
func Greeting(cfg persona.Config) string {
	return fmt.Sprintf("Hi %s! I'm %s, your AI friend! 😊 I'm so excited to chat with you! What would you like to talk about today?",
		cfg.CreatorName, cfg.BotName)
}
