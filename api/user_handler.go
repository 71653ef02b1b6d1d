package api

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/markoai/marko-backend/auth"
	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/models"
)

// dummyHash is compared against when the login matches no user so both paths cost a bcrypt check.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5C3I8ZV6vE0x9rW8r5pQZJ0Zp1w1F9e"

type userHandlerConfig struct {
	cookieSecure bool
	bcryptCost   int
}

type userHandler struct {
	responder   Responder
	logger      zerolog.Logger
	userRepo    *database.UserRepo
	sessionRepo *database.SessionRepo
	tokens      *auth.TokenSigner
	config      userHandlerConfig
	now         func() time.Time
}

func newUserHandler(base handlerBase, userRepo *database.UserRepo, sessionRepo *database.SessionRepo,
	tokens *auth.TokenSigner, config userHandlerConfig) userHandler {
	responder, logger := base.build("userHandler")
	return userHandler{
		responder:   responder,
		logger:      logger,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		config:      config,
		now:         time.Now,
	}
}

// login checks the credentials and opens a session
func (h userHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req, "login"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		login := strings.TrimSpace(req.Login)
		if login == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("login"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		ctx := r.Context()
		user, err := h.userRepo.FindByLogin(ctx, login)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				h.responder.WriteError(w, wrapDatabaseError("find user", "user", err))
				return
			}
			auth.CheckPassword(dummyHash, req.Password)
			h.logger.Info().Str("login", login).Msg("Login failed: unknown user")
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			h.logger.Info().Uint("userId", user.ID).Msg("Login failed: wrong password")
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}

		sessionID := uuid.NewString()
		token, expiresAt, err := h.tokens.Sign(sessionID, user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to sign session", err))
			return
		}

		session := &models.Session{
			ID:        sessionID,
			UserID:    user.ID,
			UserAgent: r.UserAgent(),
			IPAddress: r.RemoteAddr,
			ExpiresAt: expiresAt,
		}
		if err := h.sessionRepo.Add(ctx, session); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create session", "session", err))
			return
		}

		now := h.now()
		if err := h.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
			h.logger.Warn().Err(err).Uint("userId", user.ID).Msg("Failed to record last login")
		} else {
			user.LastLoginAt = &now
		}
		if purged, err := h.sessionRepo.DeleteExpired(ctx, now); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to purge expired sessions")
		} else if purged > 0 {
			h.logger.Debug().Int64("purged", purged).Msg("Purged expired sessions")
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			HttpOnly: true,
			Secure:   h.config.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		h.logger.Info().Uint("userId", user.ID).Msg("User signed in")
		h.responder.WriteJSON(w, LoginResponse{User: user, Token: token, ExpiresAt: expiresAt})
	}
}

// logout ends the current session. It always succeeds.
func (h userHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID := ctxGetSessionID(r.Context()); sessionID != "" {
			if err := h.sessionRepo.Delete(r.Context(), sessionID); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to delete session")
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   h.config.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		h.responder.WriteJSON(w, MessageResponse{Message: "logged out"})
	}
}

func (h userHandler) getCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, ctxGetUser(r.Context()))
	}
}

func (h userHandler) getUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.userRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find users", "users", err))
			return
		}
		h.responder.WriteJSON(w, users)
	}
}

func (h userHandler) createUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := decodeJSON(r, &req, "user"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		username, err := requireText("username", req.Username, 64)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		email, err := requireText("email", req.Email, 254)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("email", "must be a valid email address"))
			return
		}
		role := optionalText(req.Role, models.RoleEditor)
		if !models.ValidRole(role) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("role", "must be admin or editor"))
			return
		}

		hash, err := auth.HashPassword(req.Password, h.config.bcryptCost)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooShort) {
				h.responder.WriteError(w, errs.NewInvalidFieldError("password", err.Error()))
				return
			}
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}

		user := &models.User{
			Username:     username,
			Email:        strings.ToLower(email),
			DisplayName:  optionalText(req.DisplayName, username),
			PasswordHash: hash,
			Role:         role,
		}
		if err := h.userRepo.Add(r.Context(), user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create user", "user", err))
			return
		}

		h.logger.Info().Uint("userId", user.ID).Str("role", role).Msg("User created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, user)
	}
}
