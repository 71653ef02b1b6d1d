package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
)

const (
	searchLimit    = 10
	maxSearchQuery = 200
)

// toolCatalog is the fixed list of content tools, also returned as the
// fallback when the database queries fail.
var toolCatalog = []ToolEntry{
	{ID: "chat", Name: "AI Chat", Description: "Chat with Marko, a writing and marketing assistant", Path: "/tools/chat"},
	{ID: "article", Name: "Article Writer", Description: "Generate a full blog article from a topic and keywords", Path: "/tools/article-writer"},
	{ID: "image", Name: "Image Generator", Description: "Create images from a text prompt", Path: "/tools/image-generator"},
	{ID: "caption", Name: "Social Captions", Description: "Write captions and hashtags for social media posts", Path: "/tools/social-captions"},
	{ID: "translate", Name: "Translator", Description: "Translate text between languages", Path: "/tools/translator"},
	{ID: "base64", Name: "Base64 Encoder/Decoder", Description: "Encode text to Base64 or decode it back", Path: "/tools/base64"},
}

type searchHandler struct {
	responder     Responder
	logger        zerolog.Logger
	blogPostRepo  *database.BlogPostRepo
	characterRepo *database.AICharacterRepo
}

func newSearchHandler(base handlerBase, blogPostRepo *database.BlogPostRepo, characterRepo *database.AICharacterRepo) searchHandler {
	responder, logger := base.build("searchHandler")
	return searchHandler{
		responder:     responder,
		logger:        logger,
		blogPostRepo:  blogPostRepo,
		characterRepo: characterRepo,
	}
}

func matchTools(q string) []ToolEntry {
	q = strings.ToLower(q)
	matches := []ToolEntry{}
	for _, tool := range toolCatalog {
		if strings.Contains(strings.ToLower(tool.Name), q) || strings.Contains(strings.ToLower(tool.Description), q) {
			matches = append(matches, tool)
		}
	}
	return matches
}

// search queries posts and characters concurrently. A failed query leaves its
// group empty and marks the response degraded instead of failing the request.
func (h searchHandler) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("q"))
			return
		}
		if len([]rune(q)) > maxSearchQuery {
			h.responder.WriteError(w, errs.NewTooLongError("q", maxSearchQuery))
			return
		}

		response := SearchResponse{
			Query:      q,
			Posts:      []SearchPost{},
			Characters: []SearchCharacter{},
			Tools:      matchTools(q),
		}

		var g errgroup.Group
		g.Go(func() error {
			posts, err := h.blogPostRepo.Search(r.Context(), q, searchLimit)
			if err != nil {
				h.logger.Error().Err(err).Msg("Post search failed")
				return err
			}
			for _, p := range posts {
				response.Posts = append(response.Posts, SearchPost{
					ID:          p.ID,
					Title:       p.Title,
					Slug:        p.Slug,
					Excerpt:     p.Excerpt,
					PublishedAt: p.PublishedAt,
				})
			}
			return nil
		})
		g.Go(func() error {
			characters, err := h.characterRepo.Search(r.Context(), q, searchLimit)
			if err != nil {
				h.logger.Error().Err(err).Msg("Character search failed")
				return err
			}
			for _, c := range characters {
				response.Characters = append(response.Characters, SearchCharacter{
					ID:        c.ID,
					Name:      c.Name,
					Slug:      c.Slug,
					Tagline:   c.Tagline,
					AvatarURL: c.AvatarURL,
				})
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			response.Degraded = true
			if len(response.Tools) == 0 {
				response.Tools = append([]ToolEntry(nil), toolCatalog...)
			}
		}
		h.responder.WriteJSON(w, response)
	}
}
