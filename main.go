package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/markoai/marko-backend/api"
	"github.com/markoai/marko-backend/auth"
	"github.com/markoai/marko-backend/config"
	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogger(c)
	log.Info().Msg("Initializing app...")

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Maintenance modes: run and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		if err := models.GenerateModels(db, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Error generating query helpers")
		}
		return
	}

	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		if _, err := models.WriteColumnReport(db, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	if err := models.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	currentDB := database.New(db)
	ctx := context.Background()

	if err := seedAdmin(ctx, c, currentDB); err != nil {
		log.Fatal().Err(err).Msg("Error seeding admin user")
	}

	deps, err := buildDeps(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing services")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, c, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogger(c map[string]string) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(c, "LOG_FORMAT", "") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
}

// seedAdmin creates the first admin from ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD
// when no user exists yet.
func seedAdmin(ctx context.Context, c map[string]string, db database.Database) error {
	username := config.GetString(c, "ADMIN_USERNAME", "")
	password := config.GetString(c, "ADMIN_PASSWORD", "")
	if username == "" || password == "" {
		return nil
	}

	hash, err := auth.HashPassword(password, config.GetInt(c, "BCRYPT_COST", auth.DefaultCost))
	if err != nil {
		return err
	}

	created, err := db.UserRepo().AddIfEmpty(ctx, &models.User{
		Username:     username,
		Email:        strings.ToLower(config.GetString(c, "ADMIN_EMAIL", username+"@localhost")),
		DisplayName:  username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("username", username).Msg("Seeded admin user")
	}
	return nil
}

// buildDeps wires the optional integrations. Missing AI, storage or email
// configuration disables that integration instead of failing startup.
func buildDeps(ctx context.Context, c map[string]string) (api.Deps, error) {
	var deps api.Deps

	ttl := time.Duration(config.GetInt(c, "SESSION_TTL_HOURS", 24)) * time.Hour
	tokens, err := auth.NewTokenSigner(config.GetString(c, "SESSION_SECRET", ""), ttl)
	if err != nil {
		return deps, fmt.Errorf("SESSION_SECRET: %w", err)
	}
	deps.Tokens = tokens

	if apiKey := config.GetString(c, "GEMINI_API_KEY", ""); apiKey != "" {
		generator, err := services.NewGeminiGenerator(ctx, services.GeminiConfig{
			APIKey:     apiKey,
			ChatModel:  config.GetString(c, "GEMINI_CHAT_MODEL", ""),
			ImageModel: config.GetString(c, "GEMINI_IMAGE_MODEL", ""),
			Timeout:    config.GetDuration(c, "AI_TIMEOUT_SECONDS", 60*time.Second),
		})
		if err != nil {
			return deps, err
		}
		deps.Generator = generator
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, AI endpoints will return 503")
	}

	if bucket := config.GetString(c, "IMAGE_BUCKET", ""); bucket != "" {
		store, err := services.NewS3ImageStore(ctx, bucket,
			config.GetString(c, "AWS_REGION", "us-east-1"),
			config.GetString(c, "IMAGE_PUBLIC_BASE_URL", ""))
		if err != nil {
			return deps, err
		}
		deps.ImageStore = store
		log.Info().Str("bucket", bucket).Msg("Storing generated images in S3")
	} else {
		deps.ImageStore = services.DataURLStore{}
	}

	if config.GetString(c, "RESEND_API_KEY", "") != "" {
		mailer, err := services.NewMailer(c)
		if err != nil {
			return deps, err
		}
		deps.Notifier = mailer
	} else {
		log.Info().Msg("RESEND_API_KEY not set, moderation emails are disabled")
	}

	return deps, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
