package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markoai/marko-backend/models"
)

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login("admin", models.RoleAdmin)

	s.createPost(cookie, BlogPostRequest{Title: strPtr("Writing better captions"), Content: strPtr("x"), Status: strPtr(models.PostStatusPublished)})
	s.createPost(cookie, BlogPostRequest{Title: strPtr("Caption drafts"), Content: strPtr("x")})
	s.createCharacter(cookie, AICharacterRequest{Name: strPtr("Caption Carl"), Persona: strPtr("p")})
	s.createCharacter(cookie, AICharacterRequest{Name: strPtr("Caption Ghost"), Persona: strPtr("p"), IsActive: boolPtr(false)})

	rec := s.do(http.MethodGet, "/api/search?q=%20CAPTION%20", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[SearchResponse](t, rec)

	assert.Equal(t, "CAPTION", result.Query)
	assert.False(t, result.Degraded)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "writing-better-captions", result.Posts[0].Slug)
	require.Len(t, result.Characters, 1)
	assert.Equal(t, "Caption Carl", result.Characters[0].Name)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "caption", result.Tools[0].ID)
}

func TestSearchNoMatches(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/search?q=zzz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[SearchResponse](t, rec)
	assert.NotNil(t, result.Posts)
	assert.Empty(t, result.Posts)
	assert.Empty(t, result.Characters)
	assert.Empty(t, result.Tools)

	rec = s.do(http.MethodGet, "/api/search?q=%20%20", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "q", decode[ErrorResponse](t, rec).Field)
}

func TestSearchDegraded(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.login("admin", models.RoleAdmin)
	s.createPost(cookie, BlogPostRequest{Title: strPtr("Zebra facts"), Content: strPtr("x"), Status: strPtr(models.PostStatusPublished)})

	require.NoError(t, s.db.Migrator().DropTable(&models.CharacterChat{}, &models.AICharacter{}))

	rec := s.do(http.MethodGet, "/api/search?q=zebra", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[SearchResponse](t, rec)
	assert.True(t, result.Degraded)
	assert.Len(t, result.Posts, 1)
	assert.Empty(t, result.Characters)
	assert.Len(t, result.Tools, len(toolCatalog))
}
