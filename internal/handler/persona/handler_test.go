package persona

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/leroy-ai/ai-friend/backend/internal/model/chat"
	personaModel "github.com/leroy-ai/ai-friend/backend/internal/model/persona"
	chatservice "github.com/leroy-ai/ai-friend/backend/internal/service/chat"
)

func setupRouter() (*chi.Mux, *chatservice.Service) {
	sessions := chatservice.NewService()
	handler := New(sessions)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, sessions
}

func sparkyBody(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(personaModel.Config{
		BotName:     "Sparky",
		CreatorName: "Mia",
		Personality: "funny and loves to tell jokes",
		Specialty:   "telling amazing stories",
	})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	return payload
}

func TestCreateSession(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(sparkyBody(t)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Session  chatModel.Session   `json:"session"`
		Messages []chatModel.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Session.ID == "" {
		t.Fatal("expected session ID")
	}
	if len(body.Messages) != 1 {
		t.Fatalf("expected seeded greeting, got %d messages", len(body.Messages))
	}
	if !strings.Contains(body.Messages[0].Content, "Mia") {
		t.Fatalf("greeting should reference creator: %s", body.Messages[0].Content)
	}
}

func TestCreateSessionIncompletePersona(t *testing.T) {
	r, _ := setupRouter()
	payload := []byte(`{"botName":"Sparky","creatorName":"Mia"}`)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "personality") || !strings.Contains(resp.Body.String(), "specialty") {
		t.Fatalf("error should name missing fields: %s", resp.Body.String())
	}
}

func TestReplacePersona(t *testing.T) {
	r, sessions := setupRouter()

	created, err := sessions.CreateSession(context.Background(), personaModel.Config{
		BotName:     "Sparky",
		CreatorName: "Mia",
		Personality: "funny and loves to tell jokes",
		Specialty:   "telling amazing stories",
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	edited, _ := json.Marshal(personaModel.Config{
		BotName:     "Luna",
		CreatorName: "Mia",
		Personality: "curious and always asking questions",
		Specialty:   "teaching about animals and nature",
	})
	req := httptest.NewRequest(http.MethodPut, "/sessions/"+created.ID+"/persona", bytes.NewReader(edited))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Session  chatModel.Session   `json:"session"`
		Messages []chatModel.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Session.Persona.BotName != "Luna" {
		t.Fatalf("persona not replaced: %+v", body.Session.Persona)
	}
	if len(body.Messages) != 1 || !strings.Contains(body.Messages[0].Content, "Luna") {
		t.Fatalf("transcript should reseed with new greeting: %+v", body.Messages)
	}
}

func TestReplacePersonaUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPut, "/sessions/missing/persona", bytes.NewReader(sparkyBody(t)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	r, sessions := setupRouter()

	created, err := sessions.CreateSession(context.Background(), personaModel.Config{
		BotName:     "Sparky",
		CreatorName: "Mia",
		Personality: "funny and loves to tell jokes",
		Specialty:   "telling amazing stories",
	})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+created.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+created.ID, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
