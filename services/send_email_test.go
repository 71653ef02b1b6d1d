package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markoai/marko-backend/models"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc, extra map[string]string) *Mailer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := map[string]string{
		"RESEND_API_KEY":      "re_test",
		"RESEND_FROM_EMAIL":   "Marko <noreply@marko.ai>",
		"RESEND_API_URL":      srv.URL,
		"ADMIN_NOTIFY_EMAILS": "admin@marko.ai, editor-in-chief@marko.ai",
		"BASE_URL":            "https://marko.ai",
	}
	for k, v := range extra {
		cfg[k] = v
	}
	m, err := NewMailer(cfg)
	require.NoError(t, err)
	return m
}

func TestNewMailerRequiresKeys(t *testing.T) {
	_, err := NewMailer(map[string]string{})
	assert.Error(t, err)

	_, err = NewMailer(map[string]string{"RESEND_API_KEY": "re_test"})
	assert.Error(t, err)
}

func TestPostSubmittedEmailsAdmins(t *testing.T) {
	var got ResendEmailRequest
	var auth string
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"email_1"}`))
	}, nil)

	post := &models.BlogPost{
		ID:      7,
		Title:   "Fish & Chips",
		Excerpt: "A <b>tasty</b> story",
		Author:  &models.User{Username: "jo"},
	}
	require.NoError(t, m.PostSubmitted(context.Background(), post))

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"admin@marko.ai", "editor-in-chief@marko.ai"}, got.To)
	assert.Equal(t, "Post pending review: Fish & Chips", got.Subject)
	assert.Contains(t, got.Html, "Fish &amp; Chips")
	assert.Contains(t, got.Html, "A &lt;b&gt;tasty&lt;/b&gt; story")
	assert.Contains(t, got.Html, "by jo")
	assert.Contains(t, got.Html, "https://marko.ai/admin/posts?status=pending")
}

func TestPostSubmittedWithoutRecipientsIsNoop(t *testing.T) {
	called := false
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, map[string]string{"ADMIN_NOTIFY_EMAILS": ""})

	require.NoError(t, m.PostSubmitted(context.Background(), &models.BlogPost{Title: "x"}))
	assert.False(t, called)
}

func TestPostModeratedEmailsAuthor(t *testing.T) {
	var got ResendEmailRequest
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"email_2"}`))
	}, nil)

	author := &models.User{Username: "jo", DisplayName: "Jo", Email: "jo@marko.ai"}
	post := &models.BlogPost{Title: "Hello", Slug: "hello", Status: models.PostStatusPublished}
	require.NoError(t, m.PostModerated(context.Background(), post, author))
	assert.Equal(t, []string{"jo@marko.ai"}, got.To)
	assert.Equal(t, "Your post was published: Hello", got.Subject)
	assert.Contains(t, got.Html, "https://marko.ai/blog/hello")

	note := "Needs sources"
	post = &models.BlogPost{Title: "Hello", Slug: "hello", Status: models.PostStatusRejected, ModerationNote: &note}
	require.NoError(t, m.PostModerated(context.Background(), post, author))
	assert.Equal(t, "Your post was not approved: Hello", got.Subject)
	assert.Contains(t, got.Html, "Reviewer note: Needs sources")
}

func TestSendEmailReportsAPIError(t *testing.T) {
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}, nil)

	err := m.SendEmail(context.Background(), "s", "b", []string{"a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "invalid from address")

	assert.Error(t, m.SendEmail(context.Background(), "s", "b", nil))
}
