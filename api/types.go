package api

import (
	"encoding/json"
	"time"

	"github.com/markoai/marko-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler      healthHandler
	userHandler        userHandler
	blogPostHandler    blogPostHandler
	categoryHandler    categoryHandler
	tagHandler         tagHandler
	dashboardHandler   dashboardHandler
	geminiHandler      geminiHandler
	toolsHandler       toolsHandler
	aiCharacterHandler aiCharacterHandler
	searchHandler      searchHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// BlogPostRequest is used for create and partial update; nil fields are left unchanged.
type BlogPostRequest struct {
	Title         *string   `json:"title"`
	Slug          *string   `json:"slug"`
	Excerpt       *string   `json:"excerpt"`
	Content       *string   `json:"content"`
	CoverImageURL *string   `json:"coverImageUrl"`
	CategoryID    *uint     `json:"categoryId"`
	Tags          *[]string `json:"tags"`
	Status        *string   `json:"status"`
}

type BlogPostListResponse struct {
	Posts []*models.BlogPost `json:"posts"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type ModerateRequest struct {
	Action string  `json:"action"`
	Note   *string `json:"note"`
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

type TagRequest struct {
	Name string `json:"name"`
}

type DashboardResponse struct {
	Posts           map[string]int64   `json:"posts"`
	Categories      int64              `json:"categories"`
	Tags            int64              `json:"tags"`
	Users           int64              `json:"users"`
	Characters      int64              `json:"characters"`
	ToolUsage       map[string]int64   `json:"toolUsage"`
	MessagesLast24h int64              `json:"messagesLast24h"`
	PendingPosts    []*models.BlogPost `json:"pendingPosts"`
}

type ChatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

type ChatResponse struct {
	ConversationID string    `json:"conversationId"`
	Reply          string    `json:"reply"`
	Greeting       string    `json:"greeting,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ConversationResponse struct {
	ConversationID string      `json:"conversationId"`
	Messages       interface{} `json:"messages"`
}

type ArticleRequest struct {
	Topic     string   `json:"topic"`
	Keywords  []string `json:"keywords"`
	Tone      string   `json:"tone"`
	WordCount int      `json:"wordCount"`
	Language  string   `json:"language"`
}

type ArticleResponse struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	Count       int    `json:"count"`
}

type ImageResult struct {
	URL      string `json:"url"`
	MIMEType string `json:"mimeType"`
}

type ImageResponse struct {
	Images []ImageResult `json:"images"`
}

type CaptionRequest struct {
	Description string `json:"description"`
	Platform    string `json:"platform"`
	Tone        string `json:"tone"`
	Count       int    `json:"count"`
	Hashtags    bool   `json:"hashtags"`
}

type CaptionResponse struct {
	Captions []string `json:"captions"`
	Hashtags []string `json:"hashtags"`
}

type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type TranslateResponse struct {
	Translation    string `json:"translation"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type Base64Request struct {
	Mode    string `json:"mode"`
	Input   string `json:"input"`
	URLSafe bool   `json:"urlSafe"`
}

type Base64Response struct {
	Mode   string `json:"mode"`
	Output string `json:"output"`
}

type AICharacterRequest struct {
	Name        *string         `json:"name"`
	Slug        *string         `json:"slug"`
	Tagline     *string         `json:"tagline"`
	Description *string         `json:"description"`
	Persona     *string         `json:"persona"`
	Greeting    *string         `json:"greeting"`
	AvatarURL   *string         `json:"avatarUrl"`
	Traits      json.RawMessage `json:"traits"`
	IsActive    *bool           `json:"isActive"`
}

type SearchPost struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

type SearchCharacter struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Tagline   string  `json:"tagline"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

type ToolEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

type SearchResponse struct {
	Query      string            `json:"query"`
	Posts      []SearchPost      `json:"posts"`
	Characters []SearchCharacter `json:"characters"`
	Tools      []ToolEntry       `json:"tools"`
	Degraded   bool              `json:"degraded"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}
