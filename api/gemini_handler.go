package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

const (
	aiService = "AI"

	maxChatMessage      = 8000
	maxTranslateText    = 5000
	maxPromptLength     = 2000
	historyTurns        = 20
	maxConversationRead = 500
	maxLanguageName     = 64

	defaultWordCount = 800
	minWordCount     = 100
	maxWordCount     = 3000
	defaultTone      = "informative"
	defaultLanguage  = "English"

	defaultAspectRatio = "1:1"
	maxImages          = 4
	defaultPlatform    = "instagram"
	defaultCaptions    = 3
	maxCaptions        = 5

	articleTemperature   = 0.7
	captionTemperature   = 0.9
	translateTemperature = 0.2
)

var (
	aspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}
	platforms    = []string{"instagram", "twitter", "linkedin", "facebook", "tiktok"}
)

type geminiHandler struct {
	responder   Responder
	logger      zerolog.Logger
	generator   services.Generator
	imageStore  services.ImageStore
	chatLogRepo *database.ChatLogRepo
	now         func() time.Time
}

func newGeminiHandler(base handlerBase, generator services.Generator, imageStore services.ImageStore,
	chatLogRepo *database.ChatLogRepo) geminiHandler {
	responder, logger := base.build("geminiHandler")
	return geminiHandler{
		responder:   responder,
		logger:      logger,
		generator:   generator,
		imageStore:  imageStore,
		chatLogRepo: chatLogRepo,
		now:         time.Now,
	}
}

// conversationID validates a client supplied conversation ID, or starts a new one when it is blank.
func conversationID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errs.NewInvalidFieldError("conversationId", "must be a UUID")
	}
	return id.String(), nil
}

// upstreamError keeps typed upstream errors and wraps anything else as a bad gateway.
func upstreamError(err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return errs.NewUpstreamError(aiService, err)
}

func userIDOf(user *models.User) *uint {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

func (h geminiHandler) available(w http.ResponseWriter) bool {
	if h.generator == nil {
		h.responder.WriteError(w, errs.NewServiceNotConfiguredError(aiService))
		return false
	}
	return true
}

// logTool records a one-shot tool request so usage shows up on the dashboard.
func (h geminiHandler) logTool(ctx context.Context, tool, prompt, output string) {
	conversation := uuid.NewString()
	user := userIDOf(ctxGetUser(ctx))
	err := h.chatLogRepo.Add(ctx,
		&models.ChatMessage{ConversationID: conversation, UserID: user, Tool: tool, Role: models.RoleUser, Content: prompt},
		&models.ChatMessage{ConversationID: conversation, UserID: user, Tool: tool, Role: models.RoleModel, Content: output},
	)
	if err != nil {
		h.logger.Warn().Err(err).Str("tool", tool).Msg("Failed to log tool usage")
	}
}

func (h geminiHandler) chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.available(w) {
			return
		}

		var req ChatRequest
		if err := decodeJSON(r, &req, "chat"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		message, err := requireText("message", req.Message, maxChatMessage)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		convID, err := conversationID(req.ConversationID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		previous, err := h.chatLogRepo.FindConversation(r.Context(), convID, historyTurns)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find conversation", "chat_messages", err))
			return
		}
		history := make([]services.Turn, 0, len(previous))
		for _, m := range previous {
			history = append(history, services.Turn{Role: m.Role, Text: m.Content})
		}

		reply, err := h.generator.Chat(r.Context(), services.ChatSystemInstruction, history, message)
		if err != nil {
			h.responder.WriteError(w, upstreamError(err))
			return
		}

		user := userIDOf(ctxGetUser(r.Context()))
		answer := &models.ChatMessage{ConversationID: convID, UserID: user, Tool: models.ToolChat, Role: models.RoleModel, Content: reply}
		err = h.chatLogRepo.Add(r.Context(),
			&models.ChatMessage{ConversationID: convID, UserID: user, Tool: models.ToolChat, Role: models.RoleUser, Content: message},
			answer,
		)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("save", "chat_messages", err))
			return
		}

		h.responder.WriteJSON(w, ChatResponse{ConversationID: convID, Reply: reply, CreatedAt: answer.CreatedAt})
	}
}

func (h geminiHandler) getConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, err := conversationID(chi.URLParam(r, "conversationId"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		messages, err := h.chatLogRepo.FindConversation(r.Context(), convID, maxConversationRead)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find conversation", "chat_messages", err))
			return
		}
		if len(messages) == 0 {
			h.responder.WriteError(w, errs.NewNotFoundError("conversation"))
			return
		}
		h.responder.WriteJSON(w, ConversationResponse{ConversationID: convID, Messages: messages})
	}
}

func (h geminiHandler) writeArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.available(w) {
			return
		}

		var req ArticleRequest
		if err := decodeJSON(r, &req, "article"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		topic, err := requireText("topic", req.Topic, maxPromptLength)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		wordCount := req.WordCount
		switch {
		case wordCount == 0:
			wordCount = defaultWordCount
		case wordCount < minWordCount:
			wordCount = minWordCount
		case wordCount > maxWordCount:
			wordCount = maxWordCount
		}

		var keywords []string
		for _, k := range req.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}

		prompt, err := services.ArticlePrompt(services.ArticleInput{
			Topic:     topic,
			Keywords:  keywords,
			Tone:      optionalText(req.Tone, defaultTone),
			WordCount: wordCount,
			Language:  optionalText(req.Language, defaultLanguage),
		})
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build prompt", err))
			return
		}

		text, err := h.generator.Generate(r.Context(), "", prompt, articleTemperature)
		if err != nil {
			h.responder.WriteError(w, upstreamError(err))
			return
		}
		h.logTool(r.Context(), models.ToolArticle, topic, text)

		title, content := services.SplitArticle(text, topic)
		h.responder.WriteJSON(w, ArticleResponse{
			Title:     title,
			Content:   content,
			WordCount: len(strings.Fields(content)),
		})
	}
}

func (h geminiHandler) generateImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.available(w) {
			return
		}

		var req ImageRequest
		if err := decodeJSON(r, &req, "image"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		prompt, err := requireText("prompt", req.Prompt, maxPromptLength)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		aspectRatio := optionalText(req.AspectRatio, defaultAspectRatio)
		if !oneOf(aspectRatio, aspectRatios...) {
			h.responder.WriteError(w, errs.NewOneOfError("aspectRatio", aspectRatios...))
			return
		}
		count := req.Count
		if count == 0 {
			count = 1
		}
		if count < 1 || count > maxImages {
			h.responder.WriteError(w, errs.NewOutOfRangeError("count", 1, maxImages))
			return
		}

		images, err := h.generator.GenerateImages(r.Context(), prompt, services.ImageOptions{AspectRatio: aspectRatio, Count: count})
		if err != nil {
			h.responder.WriteError(w, upstreamError(err))
			return
		}

		results := make([]ImageResult, 0, len(images))
		for _, img := range images {
			url, err := h.imageStore.Put(r.Context(), services.NewImageKey(h.now(), img.MIMEType), img.MIMEType, img.Data)
			if err != nil {
				h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to store generated image", err))
				return
			}
			results = append(results, ImageResult{URL: url, MIMEType: img.MIMEType})
		}

		h.logTool(r.Context(), models.ToolImage, prompt, fmt.Sprintf("generated %d image(s) at %s", len(results), aspectRatio))
		h.responder.WriteJSON(w, ImageResponse{Images: results})
	}
}

func (h geminiHandler) writeCaptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.available(w) {
			return
		}

		var req CaptionRequest
		if err := decodeJSON(r, &req, "caption"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		description, err := requireText("description", req.Description, maxPromptLength)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		platform := strings.ToLower(optionalText(req.Platform, defaultPlatform))
		if !oneOf(platform, platforms...) {
			h.responder.WriteError(w, errs.NewOneOfError("platform", platforms...))
			return
		}
		count := req.Count
		if count == 0 {
			count = defaultCaptions
		}
		if count < 1 || count > maxCaptions {
			h.responder.WriteError(w, errs.NewOutOfRangeError("count", 1, maxCaptions))
			return
		}

		prompt, err := services.CaptionPrompt(services.CaptionInput{
			Description: description,
			Platform:    platform,
			Tone:        optionalText(req.Tone, "engaging"),
			Count:       count,
			Hashtags:    req.Hashtags,
		})
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build prompt", err))
			return
		}

		text, err := h.generator.Generate(r.Context(), "", prompt, captionTemperature)
		if err != nil {
			h.responder.WriteError(w, upstreamError(err))
			return
		}
		h.logTool(r.Context(), models.ToolCaption, description, text)

		response := CaptionResponse{Captions: services.ParseCaptions(text, count), Hashtags: []string{}}
		if response.Captions == nil {
			response.Captions = []string{}
		}
		if req.Hashtags {
			if tags := services.ExtractHashtags(text); tags != nil {
				response.Hashtags = tags
			}
		}
		h.responder.WriteJSON(w, response)
	}
}

func (h geminiHandler) translate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.available(w) {
			return
		}

		var req TranslateRequest
		if err := decodeJSON(r, &req, "translate"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		text, err := requireText("text", req.Text, maxTranslateText)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		target, err := requireText("targetLanguage", req.TargetLanguage, maxLanguageName)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		source := optionalText(req.SourceLanguage, "auto")
		if utf8.RuneCountInString(source) > maxLanguageName {
			h.responder.WriteError(w, errs.NewTooLongError("sourceLanguage", maxLanguageName))
			return
		}

		prompt, err := services.TranslatePrompt(text, source, target)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build prompt", err))
			return
		}

		translation, err := h.generator.Generate(r.Context(), "", prompt, translateTemperature)
		if err != nil {
			h.responder.WriteError(w, upstreamError(err))
			return
		}
		translation = strings.TrimSpace(translation)
		h.logTool(r.Context(), models.ToolTranslate, text, translation)

		h.responder.WriteJSON(w, TranslateResponse{
			Translation:    translation,
			SourceLanguage: source,
			TargetLanguage: target,
		})
	}
}
