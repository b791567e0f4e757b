package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	chatModel "github.com/leroy-ai/ai-friend/backend/internal/model/chat"
	"github.com/leroy-ai/ai-friend/backend/internal/model/persona"
	chat "github.com/leroy-ai/ai-friend/backend/internal/service/chat"
)

func sparky() persona.Config {
	return persona.Config{
		BotName:     "Sparky",
		CreatorName: "Mia",
		Personality: "funny and loves to tell jokes",
		Specialty:   "telling amazing stories",
	}
}

func TestCreateSessionSeedsGreeting(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, sparky())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if session.SystemPrompt == "" {
		t.Fatal("expected compiled system prompt on session")
	}

	transcript, err := svc.Transcript(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(transcript) != 1 {
		t.Fatalf("expected seeded transcript of length 1, got %d", len(transcript))
	}
	greeting := transcript[0]
	if greeting.Role != chatModel.RoleAssistant {
		t.Fatalf("greeting role = %s, want assistant", greeting.Role)
	}
	if !strings.Contains(greeting.Content, "Mia") || !strings.Contains(greeting.Content, "Sparky") {
		t.Fatalf("greeting missing persona names: %s", greeting.Content)
	}
}

func TestCreateSessionIncompletePersona(t *testing.T) {
	svc := chat.NewService()

	cfg := sparky()
	cfg.Specialty = "   "
	if _, err := svc.CreateSession(context.Background(), cfg); !errors.Is(err, chat.ErrPersonaIncomplete) {
		t.Fatalf("expected ErrPersonaIncomplete, got %v", err)
	}
}

func TestReplacePersonaRecompilesAndReseeds(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, sparky())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if _, err := svc.AppendMessage(ctx, chatModel.Message{
		SessionID: session.ID,
		Role:      chatModel.RoleUser,
		Content:   "Tell me a joke",
	}); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	edited := persona.Config{
		BotName:     "Luna",
		CreatorName: "Mia",
		Personality: "calm and peaceful like a wise monk",
		Specialty:   "teaching fun science facts",
	}
	updated, err := svc.ReplacePersona(ctx, session.ID, edited)
	if err != nil {
		t.Fatalf("ReplacePersona err: %v", err)
	}
	if !strings.Contains(updated.SystemPrompt, "Luna") {
		t.Fatal("system prompt not recompiled for edited persona")
	}
	if strings.Contains(updated.SystemPrompt, "Sparky") {
		t.Fatal("stale persona leaked into recompiled system prompt")
	}

	transcript, err := svc.Transcript(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(transcript) != 1 {
		t.Fatalf("expected reseeded transcript of length 1, got %d", len(transcript))
	}
	if !strings.Contains(transcript[0].Content, "Luna") {
		t.Fatalf("reseeded greeting should reference new bot name: %s", transcript[0].Content)
	}
}

func TestClearTranscriptKeepsPersona(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, sparky())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	for _, content := range []string{"hello", "tell me a story"} {
		if _, err := svc.AppendMessage(ctx, chatModel.Message{
			SessionID: session.ID,
			Role:      chatModel.RoleUser,
			Content:   content,
		}); err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
	}

	cleared, err := svc.ClearTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("ClearTranscript err: %v", err)
	}
	if len(cleared) != 1 {
		t.Fatalf("expected transcript reset to length 1, got %d", len(cleared))
	}
	if !strings.Contains(cleared[0].Content, "Sparky") {
		t.Fatalf("greeting should reference retained persona: %s", cleared[0].Content)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.Persona != sparky() {
		t.Fatalf("persona should be retained after clear, got %+v", got.Persona)
	}
}

func TestAppendMessageUnknownSession(t *testing.T) {
	svc := chat.NewService()

	_, err := svc.AppendMessage(context.Background(), chatModel.Message{
		SessionID: "missing",
		Role:      chatModel.RoleUser,
		Content:   "hi",
	})
	if !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, sparky())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if err := svc.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
	if _, err := svc.GetSession(ctx, session.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
