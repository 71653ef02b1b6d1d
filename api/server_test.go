package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/markoai/marko-backend/auth"
	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
	"github.com/markoai/marko-backend/testutil"
)

type testServer struct {
	t         *testing.T
	db        *gorm.DB
	handler   http.Handler
	generator *testutil.FakeGenerator
	notifier  *testutil.FakeNotifier
}

type testOption func(*Deps)

func withoutGenerator() testOption {
	return func(d *Deps) { d.Generator = nil }
}

func newTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	tokens, err := auth.NewTokenSigner("test-secret", time.Hour)
	require.NoError(t, err)

	generator := &testutil.FakeGenerator{Reply: "Hello from the model"}
	notifier := testutil.NewFakeNotifier()
	deps := Deps{
		Tokens:     tokens,
		Generator:  generator,
		ImageStore: services.DataURLStore{},
		Notifier:   notifier,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	handler := newRouter(database.New(db), deps, withConfig(map[string]string{
		"ACCEPTED_ORIGINS": "https://marko.test",
		"BCRYPT_COST":      "4",
	}))
	return &testServer{t: t, db: db, handler: handler, generator: generator, notifier: notifier}
}

// do sends a request with an optional JSON body and session cookie.
func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// login creates a user with the given role and returns its session cookie.
func (s *testServer) login(username, role string) (*models.User, *http.Cookie) {
	s.t.Helper()

	user := testutil.CreateUser(s.t, s.db, username, role)
	rec := s.do(http.MethodPost, "/api/login", LoginRequest{Login: username, Password: testutil.TestPassword}, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return user, c
		}
	}
	s.t.Fatal("login did not set a session cookie")
	return nil, nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)
	assert.NotEmpty(t, health.Uptime)
}

func TestHealthDatabaseDown(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := s.do(http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, rec).Status)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/blog/posts", nil)
	req.Header.Set("Origin", "https://evil.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodOptions, "/api/blog/posts", nil)
	req.Header.Set("Origin", "https://marko.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://marko.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/tools/base64", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decode[ErrorResponse](t, rec).Status)
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t)

	huge := `{"mode":"encode","input":"` + string(bytes.Repeat([]byte("a"), 2<<20)) + `"}`
	rec := s.do(http.MethodPost, "/api/tools/base64", huge, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecoverPanics(t *testing.T) {
	handler := recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anything", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", decode[ErrorResponse](t, rec).Status)
}

func TestUnexpectedErrorsReachWebhook(t *testing.T) {
	alerts := make(chan errorAlert, 1)
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var alert errorAlert
		if json.NewDecoder(r.Body).Decode(&alert) == nil {
			alerts <- alert
		}
	}))
	defer webhook.Close()

	rec := httptest.NewRecorder()
	NewResponder(zerolog.Nop()).WithErrorWebhook(webhook.URL).WriteError(rec, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode[ErrorResponse](t, rec).Error)
	select {
	case alert := <-alerts:
		assert.Equal(t, "disk on fire", alert.ErrorMessage)
		assert.Equal(t, "marko-backend", alert.Service)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not called")
	}
}
