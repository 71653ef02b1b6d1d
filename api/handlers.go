package api

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/markoai/marko-backend/config"
	"github.com/markoai/marko-backend/database"
)

// handlerBase builds the per-handler logger and responder.
type handlerBase struct {
	errorWebhookURL string
}

func (b handlerBase) build(handlerName string) (Responder, zerolog.Logger) {
	logger := log.With().Str("handlerName", handlerName).Logger()
	return NewResponder(logger).WithErrorWebhook(b.errorWebhookURL), logger
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, deps Deps, c map[string]string, startupTime time.Time) *routeHandlers {
	base := handlerBase{errorWebhookURL: config.GetString(c, "ERROR_WEBHOOK_URL", "")}

	return &routeHandlers{
		healthHandler: newHealthHandler(base, database, startupTime),
		userHandler: newUserHandler(base, database.UserRepo(), database.SessionRepo(), deps.Tokens, userHandlerConfig{
			cookieSecure: config.GetBool(c, "COOKIE_SECURE", false),
			bcryptCost:   config.GetInt(c, "BCRYPT_COST", 12),
		}),
		blogPostHandler:  newBlogPostHandler(base, database.BlogPostRepo(), database.CategoryRepo(), deps.Notifier),
		categoryHandler:  newCategoryHandler(base, database.CategoryRepo()),
		tagHandler:       newTagHandler(base, database.TagRepo()),
		dashboardHandler: newDashboardHandler(base, database),
		geminiHandler:    newGeminiHandler(base, deps.Generator, deps.ImageStore, database.ChatLogRepo()),
		toolsHandler:     newToolsHandler(base),
		aiCharacterHandler: newAICharacterHandler(base, deps.Generator, database.AICharacterRepo(),
			database.CharacterChatRepo()),
		searchHandler: newSearchHandler(base, database.BlogPostRepo(), database.AICharacterRepo()),
	}
}
