package api

import (
	"errors"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/markoai/marko-backend/auth"
	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/models"
)

const sessionCookieName = "marko_session"

type sessionMiddleware struct {
	responder   Responder
	logger      zerolog.Logger
	sessionRepo *database.SessionRepo
	tokens      *auth.TokenSigner
	now         func() time.Time
}

func newSessionMiddleware(sessionRepo *database.SessionRepo, tokens *auth.TokenSigner) sessionMiddleware {
	logger := log.With().Str("handlerName", "sessionMiddleware").Logger()
	return sessionMiddleware{
		responder:   NewResponder(logger),
		logger:      logger,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		now:         time.Now,
	}
}

// sessionToken reads the session cookie, falling back to a Bearer Authorization header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// loadSession attaches the signed-in user to the request context.
// Requests without a valid session continue anonymously.
func (m sessionMiddleware) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Ignoring invalid session token")
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.sessionRepo.FindByID(r.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				m.logger.Error().Err(err).Msg("Failed to load session")
			}
			next.ServeHTTP(w, r)
			return
		}

		userID, err := claims.UserID()
		if err != nil || userID != session.UserID || session.Expired(m.now()) {
			next.ServeHTTP(w, r)
			return
		}

		user := session.User
		next.ServeHTTP(w, r.WithContext(ctxWithSession(r.Context(), &user, session.ID)))
	})
}

func (m sessionMiddleware) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctxGetUser(r.Context()) == nil {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m sessionMiddleware) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		if user == nil {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		if !user.IsAdmin() {
			m.responder.WriteError(w, errs.NewInsufficientRoleError(models.RoleAdmin))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at maxBytes.
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// recoverPanics turns a handler panic into a logged 500 JSON response.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("route", r.Method+" "+r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Handler panicked")
			if ww.Status() == 0 {
				NewResponder(log.Logger).WriteError(ww, errs.NewInternalError("internal server error"))
			}
		}()
		next.ServeHTTP(ww, r)
	})
}

// rejectForeignPreflight answers preflights from origins outside
// ACCEPTED_ORIGINS with a JSON 403. Everything else reaches the cors handler.
func rejectForeignPreflight(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if r.Method == http.MethodOptions && origin != "" && !originAllowed(allowedOrigins, origin) {
				NewResponder(log.Logger).WriteError(w, errs.NewCORSError(origin))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowedOrigins []string, origin string) bool {
	return slices.ContainsFunc(allowedOrigins, func(allowed string) bool {
		return allowed == "*" || strings.EqualFold(allowed, origin)
	})
}

// requestLogger writes one line per request: warn for 4xx, error for 5xx.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}

		log.WithLevel(level).
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
