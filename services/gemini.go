package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/markoai/marko-backend/errs"
)

const (
	geminiService           = "Gemini"
	defaultGeminiChatModel  = "gemini-2.5-flash"
	defaultGeminiImageModel = "imagen-4.0-generate-001"
	defaultGeminiTimeout    = 60 * time.Second
)

// Turn is one message of a conversation sent to the model. Role is "user" or "model".
type Turn struct {
	Role string
	Text string
}

type ImageOptions struct {
	AspectRatio string
	Count       int
}

type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// Generator is the generative-model boundary used by the content tools.
type Generator interface {
	// Chat continues a conversation: history is oldest first and does not include message.
	Chat(ctx context.Context, system string, history []Turn, message string) (string, error)
	// Generate runs a single prompt.
	Generate(ctx context.Context, system, prompt string, temperature float32) (string, error)
	GenerateImages(ctx context.Context, prompt string, opts ImageOptions) ([]GeneratedImage, error)
}

type GeminiConfig struct {
	APIKey     string
	ChatModel  string
	ImageModel string
	Timeout    time.Duration
}

// GeminiGenerator implements Generator with the Google Gen AI SDK.
type GeminiGenerator struct {
	client     *genai.Client
	chatModel  string
	imageModel string
	timeout    time.Duration
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errs.NewServiceNotConfiguredError(geminiService)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	g := &GeminiGenerator{
		client:     client,
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		timeout:    cfg.Timeout,
	}
	if g.chatModel == "" {
		g.chatModel = defaultGeminiChatModel
	}
	if g.imageModel == "" {
		g.imageModel = defaultGeminiImageModel
	}
	if g.timeout <= 0 {
		g.timeout = defaultGeminiTimeout
	}
	return g, nil
}

func (g *GeminiGenerator) Chat(ctx context.Context, system string, history []Turn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		var role genai.Role = genai.RoleUser
		if turn.Role == string(genai.RoleModel) {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	return g.generateText(ctx, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(system),
	})
}

func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return g.generateText(ctx, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(system),
		Temperature:       genai.Ptr(temperature),
	})
}

func (g *GeminiGenerator) generateText(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, contents, config)
	if err != nil {
		return "", mapGeminiError(ctx, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", errs.NewContentPolicyError(geminiService, string(resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", errs.NewContentPolicyError(geminiService, "response blocked by safety filters")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errs.NewUpstreamError(geminiService, errors.New("empty response"))
	}

	log.Debug().
		Str("model", g.chatModel).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("Gemini text generated")
	return text, nil
}

func (g *GeminiGenerator) GenerateImages(ctx context.Context, prompt string, opts ImageOptions) ([]GeneratedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(opts.Count),
		AspectRatio:    opts.AspectRatio,
	})
	if err != nil {
		return nil, mapGeminiError(ctx, err)
	}

	images := make([]GeneratedImage, 0, len(resp.GeneratedImages))
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := generated.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		images = append(images, GeneratedImage{Data: generated.Image.ImageBytes, MIMEType: mimeType})
	}

	if len(images) == 0 {
		return nil, errs.NewContentPolicyError(geminiService, "no image was returned for this prompt")
	}
	return images, nil
}

func systemInstruction(system string) *genai.Content {
	if strings.TrimSpace(system) == "" {
		return nil
	}
	return genai.NewContentFromText(system, genai.RoleUser)
}

// mapGeminiError converts SDK and transport errors into API errors with an HTTP status.
func mapGeminiError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.NewUpstreamTimeoutError(geminiService, err)
	}

	code, status, message := 0, "", err.Error()
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status, message = apiErr.Code, apiErr.Status, apiErr.Message
	case errors.As(err, &apiErrPtr):
		code, status, message = apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message
	}

	log.Warn().Err(err).Int("code", code).Str("status", status).Msg("Gemini request failed")

	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return errs.NewRateLimitError(geminiService, err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden || status == "PERMISSION_DENIED" || status == "UNAUTHENTICATED":
		return errs.NewInvalidAPIKeyError(geminiService, err)
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "api key"):
		return errs.NewInvalidAPIKeyError(geminiService, err)
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "safety"):
		return errs.NewContentPolicyError(geminiService, message)
	case code == http.StatusServiceUnavailable || status == "UNAVAILABLE":
		return errs.NewModelOverloadedError(geminiService, err)
	case code == http.StatusGatewayTimeout || status == "DEADLINE_EXCEEDED":
		return errs.NewUpstreamTimeoutError(geminiService, err)
	default:
		return errs.NewUpstreamError(geminiService, err)
	}
}
