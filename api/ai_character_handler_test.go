package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markoai/marko-backend/models"
)

func boolPtr(b bool) *bool { return &b }

func (s *testServer) createCharacter(cookie *http.Cookie, req AICharacterRequest) *models.AICharacter {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/ai-characters", req, cookie)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.AICharacter](s.t, rec)
}

func TestCreateAICharacter(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login("admin", models.RoleAdmin)

	character := s.createCharacter(cookie, AICharacterRequest{
		Name:     strPtr("Captain Copy"),
		Tagline:  strPtr("Your headline coach"),
		Persona:  strPtr("You write punchy headlines."),
		Greeting: strPtr("Ahoy! What are we writing today?"),
		Traits:   json.RawMessage(`{"humor": 8, "formal": false}`),
	})
	assert.Equal(t, "captain-copy", character.Slug)
	assert.True(t, character.IsActive)
	assert.JSONEq(t, `{"humor": 8, "formal": false}`, string(character.Traits))

	inactive := s.createCharacter(cookie, AICharacterRequest{
		Name: strPtr("Hidden Helper"), Persona: strPtr("Secret."), IsActive: boolPtr(false),
	})
	assert.False(t, inactive.IsActive)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/ai-characters/%d", inactive.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.AICharacter](t, rec).IsActive)
}

func TestCreateAICharacterValidation(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login("admin", models.RoleAdmin)

	tests := []struct {
		name  string
		body  AICharacterRequest
		field string
	}{
		{"missing name", AICharacterRequest{Persona: strPtr("p")}, "name"},
		{"missing persona", AICharacterRequest{Name: strPtr("n")}, "persona"},
		{"blank persona", AICharacterRequest{Name: strPtr("n"), Persona: strPtr(" ")}, "persona"},
		{"traits not an object", AICharacterRequest{Name: strPtr("n"), Persona: strPtr("p"), Traits: json.RawMessage(`[1,2]`)}, "traits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/ai-characters", tt.body, cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, rec).Field)
		})
	}

	_, editorCookie := s.login("editor", models.RoleEditor)
	rec := s.do(http.MethodPost, "/api/ai-characters", AICharacterRequest{Name: strPtr("n"), Persona: strPtr("p")}, editorCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAICharacterVisibility(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.login("admin", models.RoleAdmin)
	_, editor := s.login("editor", models.RoleEditor)

	s.createCharacter(admin, AICharacterRequest{Name: strPtr("Ada"), Persona: strPtr("p")})
	hidden := s.createCharacter(admin, AICharacterRequest{Name: strPtr("Zed"), Persona: strPtr("p"), IsActive: boolPtr(false)})

	rec := s.do(http.MethodGet, "/api/ai-characters?all=true", nil, nil)
	assert.Len(t, decode[[]models.AICharacter](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/ai-characters?all=true", nil, editor)
	assert.Len(t, decode[[]models.AICharacter](t, rec), 2)

	rec = s.do(http.MethodGet, "/api/ai-characters", nil, editor)
	assert.Len(t, decode[[]models.AICharacter](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/ai-characters/zed", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/api/ai-characters/ada", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/ai-characters/%d/chat", hidden.ID), ChatRequest{Message: "hi"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAndDeleteAICharacter(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login("admin", models.RoleAdmin)
	character := s.createCharacter(cookie, AICharacterRequest{
		Name: strPtr("Poet"), Persona: strPtr("Rhymes"), Traits: json.RawMessage(`{"a":1}`),
	})

	rec := s.do(http.MethodPut, fmt.Sprintf("/api/ai-characters/%d", character.ID), AICharacterRequest{
		Tagline:  strPtr("Verse on demand"),
		IsActive: boolPtr(false),
		Traits:   json.RawMessage(`null`),
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.AICharacter](t, rec)
	assert.Equal(t, "Poet", updated.Name)
	assert.Equal(t, "Verse on demand", updated.Tagline)
	assert.False(t, updated.IsActive)
	assert.Empty(t, updated.Traits)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/ai-characters/%d", character.ID), AICharacterRequest{Name: strPtr("")}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/ai-characters/%d", character.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/ai-characters/%d", character.ID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAICharacterChat(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login("admin", models.RoleAdmin)
	character := s.createCharacter(cookie, AICharacterRequest{
		Name:     strPtr("Chef Remy"),
		Tagline:  strPtr("a tiny French chef"),
		Persona:  strPtr("You only talk about cooking."),
		Greeting: strPtr("Bonjour! Hungry?"),
	})
	s.generator.Reply = "Try a ratatouille."

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/ai-characters/%d/chat", character.ID), ChatRequest{Message: "What's for dinner?"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[ChatResponse](t, rec)
	assert.Equal(t, "Try a ratatouille.", first.Reply)
	assert.Equal(t, "Bonjour! Hungry?", first.Greeting)

	call := s.generator.LastCall()
	assert.Contains(t, call.System, "You are Chef Remy, a tiny French chef.")
	assert.Contains(t, call.System, "You only talk about cooking.")
	require.Len(t, call.History, 1)
	assert.Equal(t, models.RoleModel, call.History[0].Role)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/ai-characters/%s/chat", character.Slug), ChatRequest{
		ConversationID: first.ConversationID, Message: "Sounds good",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ChatResponse](t, rec).Greeting)
	assert.Len(t, s.generator.LastCall().History, 3)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/ai-characters/%d/chats/%s", character.ID, first.ConversationID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conversation := decode[struct {
		Messages []models.CharacterChat `json:"messages"`
	}](t, rec)
	require.Len(t, conversation.Messages, 5)
	assert.Equal(t, "Bonjour! Hungry?", conversation.Messages[0].Content)
	assert.Equal(t, models.RoleUser, conversation.Messages[1].Role)

	rec = s.do(http.MethodPost, "/api/ai-characters/999/chat", ChatRequest{Message: "hi"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAICharacterChatNotConfigured(t *testing.T) {
	s := newTestServer(t, withoutGenerator())

	rec := s.do(http.MethodPost, "/api/ai-characters/1/chat", ChatRequest{Message: "hi"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
