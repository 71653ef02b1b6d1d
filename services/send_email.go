package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/markoai/marko-backend/config"
	"github.com/markoai/marko-backend/models"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Notifier tells people about moderation events on blog posts.
type Notifier interface {
	PostSubmitted(ctx context.Context, post *models.BlogPost) error
	PostModerated(ctx context.Context, post *models.BlogPost, author *models.User) error
}

// Mailer sends notification emails through the Resend API.
type Mailer struct {
	apiKey     string
	from       string
	admins     []string
	baseURL    string
	endpoint   string
	httpClient *http.Client
}

// NewMailer reads RESEND_API_KEY, RESEND_FROM_EMAIL, ADMIN_NOTIFY_EMAILS and BASE_URL.
func NewMailer(cfg map[string]string) (*Mailer, error) {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is not set")
	}
	from := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if from == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL is not set")
	}

	return &Mailer{
		apiKey:     apiKey,
		from:       from,
		admins:     config.GetList(cfg, "ADMIN_NOTIFY_EMAILS"),
		baseURL:    GetBaseURL(cfg),
		endpoint:   config.GetString(cfg, "RESEND_API_URL", resendEndpoint),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

var (
	submittedEmail = template.Must(template.New("submitted").Parse(
		`<p>A new post is waiting for review.</p>
<p><strong>{{.Title}}</strong>{{if .Author}} by {{.Author}}{{end}}</p>
{{if .Excerpt}}<p>{{.Excerpt}}</p>{{end}}
{{if .URL}}<p><a href="{{.URL}}">Open the moderation queue</a></p>{{end}}`))

	moderatedEmail = template.Must(template.New("moderated").Parse(
		`<p>Hi {{.Author}},</p>
{{if .Published}}<p>Your post <strong>{{.Title}}</strong> has been published.</p>
{{if .URL}}<p><a href="{{.URL}}">Read it online</a></p>{{end}}
{{else}}<p>Your post <strong>{{.Title}}</strong> was not approved.</p>
{{if .Note}}<p>Reviewer note: {{.Note}}</p>{{end}}{{end}}`))
)

// PostSubmitted emails ADMIN_NOTIFY_EMAILS about a post entering the moderation queue.
func (m *Mailer) PostSubmitted(ctx context.Context, post *models.BlogPost) error {
	if len(m.admins) == 0 {
		log.Debug().Uint("postId", post.ID).Msg("No admin notification recipients configured")
		return nil
	}

	data := map[string]any{
		"Title":   post.Title,
		"Excerpt": post.Excerpt,
		"Author":  "",
		"URL":     "",
	}
	if post.Author != nil {
		data["Author"] = post.Author.DisplayName
		if post.Author.DisplayName == "" {
			data["Author"] = post.Author.Username
		}
	}
	if m.baseURL != "" {
		data["URL"] = m.baseURL + "/admin/posts?status=" + models.PostStatusPending
	}

	body, err := render(submittedEmail, data)
	if err != nil {
		return err
	}
	return m.SendEmail(ctx, "Post pending review: "+post.Title, body, m.admins)
}

// PostModerated emails the author about an approve or reject decision.
func (m *Mailer) PostModerated(ctx context.Context, post *models.BlogPost, author *models.User) error {
	if author == nil || author.Email == "" {
		return nil
	}

	name := author.DisplayName
	if name == "" {
		name = author.Username
	}
	note := ""
	if post.ModerationNote != nil {
		note = *post.ModerationNote
	}
	published := post.Status == models.PostStatusPublished

	body, err := render(moderatedEmail, map[string]any{
		"Author":    name,
		"Title":     post.Title,
		"Published": published,
		"URL":       BuildBlogPostURL(m.baseURL, post.Slug),
		"Note":      note,
	})
	if err != nil {
		return err
	}

	subject := "Your post was published: " + post.Title
	if !published {
		subject = "Your post was not approved: " + post.Title
	}
	return m.SendEmail(ctx, subject, body, []string{author.Email})
}

func render(t *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// SendEmail sends an HTML email using the Resend API
func (m *Mailer) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Int("recipients", len(recipients)).Msg("Successfully sent email via Resend")
	}
	return nil
}
