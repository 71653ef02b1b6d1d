package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/markoai/marko-backend/auth"
	"github.com/markoai/marko-backend/config"
	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/services"
)

// Deps are the outbound services handlers call. Generator and Notifier may be nil
// when the corresponding integration is not configured.
type Deps struct {
	Tokens     *auth.TokenSigner
	Generator  services.Generator
	ImageStore services.ImageStore
	Notifier   services.Notifier
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, c map[string]string, deps Deps) (Server, error) {
	if deps.Tokens == nil {
		return Server{}, fmt.Errorf("a session token signer is required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router := newRouter(database, deps, withConfig(c), withStartupTime(startupTime))

	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadTimeout:       config.GetDuration(c, "READ_TIMEOUT_SECONDS", 30*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second),
		IdleTimeout:       config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(database database.Database, deps Deps, opts ...func(*router)) *chi.Mux {
	router := router{config: map[string]string{}, startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}
	c := router.config

	if deps.ImageStore == nil {
		deps.ImageStore = services.DataURLStore{}
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(recoverPanics)
	chiRouter.Use(middleware.StripSlashes)

	acceptedOrigins := config.GetList(c, "ACCEPTED_ORIGINS")
	chiRouter.Use(rejectForeignPreflight(acceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chiRouter.Use(requestLogger)
	chiRouter.Use(limitBody(int64(config.GetInt(c, "MAX_BODY_BYTES", 1<<20))))

	sessions := newSessionMiddleware(database.SessionRepo(), deps.Tokens)
	chiRouter.Use(sessions.loadSession)

	handlers := initializeHandlers(database, deps, c, router.startupTime)
	setupRoutes(chiRouter, handlers, sessions)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefulCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("HttpServer gracefully shut down")
	}
}
