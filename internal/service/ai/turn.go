package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/leroy-ai/ai-friend/backend/internal/model/chat"
	chatservice "github.com/leroy-ai/ai-friend/backend/internal/service/chat"
)

const defaultCallTimeout = 30 * time.Second

// Service executes chat turns against the completion model. One synchronous
// outbound call per turn; no retry, no token streaming.
type Service struct {
	chatModel model.BaseChatModel
	sessions  *chatservice.Service
	chain     compose.Runnable[map[string]any, *schema.Message]
	timeout   time.Duration
}

// NewService compiles the prompt-template + chat-model chain once and reuses
// it for every turn.
func NewService(ctx context.Context, chatModel model.BaseChatModel, sessions *chatservice.Service, timeout time.Duration) (*Service, error) {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		sessions:  sessions,
		chain:     runnable,
		timeout:   timeout,
	}, nil
}

// AdvanceTurn appends the user message, invokes the completion model with the
// session's system prompt plus the full transcript, and appends the reply.
// Completion failures are swallowed and surfaced in-band as an assistant
// message so the conversation never hard-stops for the user; the returned
// error is non-nil only when the session itself is unknown, before anything
// was appended. Every successful call grows the transcript by exactly two
// messages.
func (s *Service) AdvanceTurn(ctx context.Context, sessionID string, userText string) ([]chat.Message, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   userText,
	}); err != nil {
		return nil, err
	}

	reply := s.complete(ctx, session.SystemPrompt, history, userText)
	if _, err := s.sessions.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   reply,
	}); err != nil {
		return nil, err
	}

	return s.sessions.Transcript(ctx, sessionID)
}

// complete runs the single outbound call under a bounded timeout and converts
// any failure into the user-facing fallback text.
func (s *Service) complete(ctx context.Context, systemPrompt string, history []chat.Message, userText string) string {
	input := map[string]any{
		"system":  systemPrompt,
		"history": toSchemaMessages(history),
		"query":   userText,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.chain.Invoke(callCtx, input)
	if err == nil && strings.TrimSpace(response.Content) == "" {
		err = fmt.Errorf("completion service returned an empty message")
	}
	if err != nil {
		log.Printf("[ai] completion failed: %v", err)
		return failureMessage(err)
	}

	log.Printf("[ai] generated response, length=%d", len(response.Content))
	return response.Content
}

// failureMessage formats a completion failure as an in-band assistant reply.
// The raw error text is included verbatim.
func failureMessage(err error) string {
	return fmt.Sprintf("⚠️ Oops! Something went wrong: %v\n\nMake sure the API key is set correctly!", err)
}

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
