package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts every endpoint under /api
func setupRoutes(r chi.Router, handlers *routeHandlers, sessions sessionMiddleware) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.healthHandler.getHealth())

		// Session endpoints
		r.Post("/login", handlers.userHandler.login())
		r.Post("/logout", handlers.userHandler.logout())
		r.With(sessions.requireUser).Get("/user", handlers.userHandler.getCurrentUser())

		// Admin-only endpoints
		r.Group(func(r chi.Router) {
			r.Use(sessions.requireAdmin)
			r.Get("/users", handlers.userHandler.getUsers())
			r.Post("/users", handlers.userHandler.createUser())
			r.Get("/admin/dashboard", handlers.dashboardHandler.getDashboard())
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/posts", handlers.blogPostHandler.getBlogPosts())
			r.Get("/posts/{id}", handlers.blogPostHandler.getBlogPost())
			r.With(sessions.requireUser).Post("/posts", handlers.blogPostHandler.createBlogPost())
			r.With(sessions.requireUser).Put("/posts/{id}", handlers.blogPostHandler.updateBlogPost())
			r.With(sessions.requireAdmin).Delete("/posts/{id}", handlers.blogPostHandler.deleteBlogPost())
			r.With(sessions.requireAdmin).Post("/posts/{id}/moderate", handlers.blogPostHandler.moderateBlogPost())

			r.Get("/categories", handlers.categoryHandler.getCategories())
			r.With(sessions.requireAdmin).Post("/categories", handlers.categoryHandler.createCategory())
			r.With(sessions.requireAdmin).Put("/categories/{id}", handlers.categoryHandler.updateCategory())
			r.With(sessions.requireAdmin).Delete("/categories/{id}", handlers.categoryHandler.deleteCategory())

			r.Get("/tags", handlers.tagHandler.getTags())
			r.With(sessions.requireAdmin).Post("/tags", handlers.tagHandler.createTag())
			r.With(sessions.requireAdmin).Delete("/tags/{id}", handlers.tagHandler.deleteTag())
		})

		r.Route("/gemini", func(r chi.Router) {
			r.Post("/chat", handlers.geminiHandler.chat())
			r.Get("/chat/{conversationId}", handlers.geminiHandler.getConversation())
			r.Post("/article", handlers.geminiHandler.writeArticle())
			r.Post("/image", handlers.geminiHandler.generateImage())
			r.Post("/caption", handlers.geminiHandler.writeCaptions())
			r.Post("/translate", handlers.geminiHandler.translate())
		})

		r.Post("/tools/base64", handlers.toolsHandler.base64())

		r.Route("/ai-characters", func(r chi.Router) {
			r.Get("/", handlers.aiCharacterHandler.getCharacters())
			r.Get("/{id}", handlers.aiCharacterHandler.getCharacter())
			r.With(sessions.requireAdmin).Post("/", handlers.aiCharacterHandler.createCharacter())
			r.With(sessions.requireAdmin).Put("/{id}", handlers.aiCharacterHandler.updateCharacter())
			r.With(sessions.requireAdmin).Delete("/{id}", handlers.aiCharacterHandler.deleteCharacter())
			r.Post("/{id}/chat", handlers.aiCharacterHandler.chat())
			r.Get("/{id}/chats/{conversationId}", handlers.aiCharacterHandler.getConversation())
		})

		r.Get("/search", handlers.searchHandler.search())
	})
}
