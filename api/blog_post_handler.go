package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

const (
	defaultPostsPerPage = 10
	maxPostsPerPage     = 100
	excerptLength       = 160
	notifyTimeout       = 30 * time.Second
)

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
	categoryRepo *database.CategoryRepo
	notifier     services.Notifier
	now          func() time.Time
}

func newBlogPostHandler(base handlerBase, blogPostRepo *database.BlogPostRepo, categoryRepo *database.CategoryRepo,
	notifier services.Notifier) blogPostHandler {
	responder, logger := base.build("blogPostHandler")
	return blogPostHandler{
		responder:    responder,
		logger:       logger,
		blogPostRepo: blogPostRepo,
		categoryRepo: categoryRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

// getBlogPosts lists posts page by page. Anonymous callers only see published posts;
// signed-in users may pass status (or "all"). Editors only see their own unpublished posts.
func (h blogPostHandler) getBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		limit, err := queryInt(r, "limit", defaultPostsPerPage, 1, maxPostsPerPage)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		q := r.URL.Query()
		filter := database.PostFilter{
			Status:       models.PostStatusPublished,
			CategorySlug: strings.TrimSpace(q.Get("category")),
			TagSlug:      strings.TrimSpace(q.Get("tag")),
			Query:        strings.TrimSpace(q.Get("q")),
			Page:         page,
			Limit:        limit,
		}

		user := ctxGetUser(r.Context())
		if status := strings.TrimSpace(q.Get("status")); status != "" && isStaff(user) {
			switch {
			case status == "all":
				filter.Status = ""
			case models.ValidPostStatus(status):
				filter.Status = status
			default:
				h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be draft, pending, published, rejected or all"))
				return
			}
			if !user.IsAdmin() && filter.Status != models.PostStatusPublished {
				filter.AuthorID = &user.ID
			}
		}

		posts, total, err := h.blogPostRepo.List(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog posts", "blog_posts", err))
			return
		}
		if posts == nil {
			posts = []*models.BlogPost{}
		}

		h.responder.WriteJSON(w, BlogPostListResponse{Posts: posts, Total: total, Page: page, Limit: limit})
	}
}

// findPost resolves the {id} URL parameter as a numeric ID or a slug.
func (h blogPostHandler) findPost(r *http.Request) (*models.BlogPost, error) {
	idOrSlug := chi.URLParam(r, "id")
	if id, err := strconv.ParseUint(idOrSlug, 10, 32); err == nil {
		return h.blogPostRepo.FindByID(r.Context(), uint(id))
	}
	return h.blogPostRepo.FindBySlug(r.Context(), idOrSlug)
}

// canView reports whether user may read post. Unpublished posts are visible to admins and their author.
func canView(user *models.User, post *models.BlogPost) bool {
	if post.Status == models.PostStatusPublished {
		return true
	}
	return isAdmin(user) || (user != nil && user.ID == post.AuthorID)
}

func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.findPost(r)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog_post", err))
			return
		}

		user := ctxGetUser(r.Context())
		if !canView(user, post) {
			h.responder.WriteError(w, errs.NewNotFoundError("blog_post"))
			return
		}

		if post.Status == models.PostStatusPublished && user == nil {
			if err := h.blogPostRepo.IncrementViews(r.Context(), post.ID); err != nil {
				h.logger.Warn().Err(err).Uint("postId", post.ID).Msg("Failed to count view")
			} else {
				post.ViewCount++
			}
		}

		h.responder.WriteJSON(w, post)
	}
}

// resolveStatus applies the role rules for a requested status: editors may only
// keep posts in draft or pending, and a request to publish becomes pending.
func resolveStatus(user *models.User, requested string) (string, error) {
	if !models.ValidPostStatus(requested) {
		return "", errs.NewInvalidFieldError("status", "must be draft, pending, published or rejected")
	}
	if user.IsAdmin() {
		return requested, nil
	}
	switch requested {
	case models.PostStatusPublished:
		return models.PostStatusPending, nil
	case models.PostStatusRejected:
		return "", errs.NewInvalidFieldError("status", "editors may only save drafts or submit for review")
	}
	return requested, nil
}

// excerptFrom cuts content to a plain-text summary on a word boundary.
func excerptFrom(content string) string {
	text := strings.Join(strings.Fields(strings.NewReplacer("#", "", "*", "", "_", "", "`", "", ">", "").Replace(content)), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)[:excerptLength]
	cut := string(runes)
	if i := strings.LastIndex(cut, " "); i > excerptLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func (h blogPostHandler) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := h.categoryRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewInvalidFieldError("categoryId", "category does not exist")
		}
		return wrapDatabaseError("find category", "category", err)
	}
	return nil
}

func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())

		var req BlogPostRequest
		if err := decodeJSON(r, &req, "blog post"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var title, content string
		var err error
		if req.Title != nil {
			title, err = requireText("title", *req.Title, 200)
		} else {
			err = errs.NewMissingRequiredFieldError("title")
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Content != nil {
			content, err = requireText("content", *req.Content, 0)
		} else {
			err = errs.NewMissingRequiredFieldError("content")
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status := models.PostStatusDraft
		if req.Status != nil {
			status = strings.TrimSpace(*req.Status)
		}
		if status, err = resolveStatus(user, status); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		categoryID := normalizeCategoryID(req.CategoryID)
		if err := h.checkCategory(r.Context(), categoryID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := &models.BlogPost{
			Title:          title,
			Slug:           postSlug(req.Slug, title),
			Content:        content,
			Excerpt:        excerptFrom(content),
			CoverImageURL:  trimmedOrNil(req.CoverImageURL),
			Status:         status,
			AuthorID:       user.ID,
			CategoryID:     categoryID,
			ReadingMinutes: models.ReadingMinutesFor(content),
		}
		if req.Excerpt != nil && strings.TrimSpace(*req.Excerpt) != "" {
			post.Excerpt = strings.TrimSpace(*req.Excerpt)
		}
		if status == models.PostStatusPublished {
			now := h.now()
			post.PublishedAt = &now
		}

		var tags []string
		if req.Tags != nil {
			tags = *req.Tags
		}
		if err := h.blogPostRepo.Add(r.Context(), post, tags); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create blog post", "blog_post", err))
			return
		}

		created, err := h.blogPostRepo.FindByID(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog_post", err))
			return
		}

		h.logger.Info().Uint("postId", created.ID).Str("status", created.Status).Msg("Blog post created")
		if created.Status == models.PostStatusPending {
			h.notifySubmitted(created)
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, created)
	}
}

// updateBlogPost applies a partial update. Admins may edit any post;
// authors may edit their own posts until they are published.
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())

		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req BlogPostRequest
		if err := decodeJSON(r, &req, "blog post"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.blogPostRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog_post", err))
			return
		}
		if !user.IsAdmin() {
			if post.AuthorID != user.ID {
				h.responder.WriteError(w, errs.NewNotAuthorError())
				return
			}
			if post.Status == models.PostStatusPublished {
				h.responder.WriteError(w, errs.NewPostLockedError())
				return
			}
		}

		previousStatus := post.Status
		if err := h.applyUpdate(r.Context(), user, post, req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var tags []string
		if req.Tags != nil {
			tags = *req.Tags
		}
		if err := h.blogPostRepo.Update(r.Context(), post, tags, req.Tags != nil); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update blog post", "blog_post", err))
			return
		}

		updated, err := h.blogPostRepo.FindByID(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog_post", err))
			return
		}

		if updated.Status == models.PostStatusPending && previousStatus != models.PostStatusPending {
			h.notifySubmitted(updated)
		}
		h.responder.WriteJSON(w, updated)
	}
}

func (h blogPostHandler) applyUpdate(ctx context.Context, user *models.User, post *models.BlogPost, req BlogPostRequest) error {
	if req.Title != nil {
		title, err := requireText("title", *req.Title, 200)
		if err != nil {
			return err
		}
		post.Title = title
	}
	if req.Content != nil {
		content, err := requireText("content", *req.Content, 0)
		if err != nil {
			return err
		}
		post.Content = content
		post.ReadingMinutes = models.ReadingMinutesFor(content)
		if req.Excerpt == nil {
			post.Excerpt = excerptFrom(content)
		}
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
		if post.Excerpt == "" {
			post.Excerpt = excerptFrom(post.Content)
		}
	}
	if req.Slug != nil {
		post.Slug = postSlug(req.Slug, post.Title)
	}
	if req.CoverImageURL != nil {
		post.CoverImageURL = trimmedOrNil(req.CoverImageURL)
	}
	if req.CategoryID != nil {
		categoryID := normalizeCategoryID(req.CategoryID)
		if err := h.checkCategory(ctx, categoryID); err != nil {
			return err
		}
		post.CategoryID = categoryID
		post.Category = nil
	}
	if req.Status != nil {
		status, err := resolveStatus(user, strings.TrimSpace(*req.Status))
		if err != nil {
			return err
		}
		post.Status = status
		if status == models.PostStatusPublished && post.PublishedAt == nil {
			now := h.now()
			post.PublishedAt = &now
		}
	}
	return nil
}

func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blogPostRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete blog post", "blog_post", err))
			return
		}

		h.logger.Info().Uint("postId", id).Msg("Blog post deleted")
		h.responder.WriteJSON(w, MessageResponse{Message: "blog post deleted"})
	}
}

// moderateBlogPost approves or rejects a pending post
func (h blogPostHandler) moderateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req ModerateRequest
		if err := decodeJSON(r, &req, "moderation"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var status string
		switch strings.ToLower(strings.TrimSpace(req.Action)) {
		case "approve":
			status = models.PostStatusPublished
		case "reject":
			status = models.PostStatusRejected
		case "":
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("action"))
			return
		default:
			h.responder.WriteError(w, errs.NewOneOfError("action", "approve", "reject"))
			return
		}

		moderated, err := h.blogPostRepo.Moderate(r.Context(), id, status, trimmedOrNil(req.Note), h.now())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("moderate blog post", "blog_post", err))
			return
		}

		post, err := h.blogPostRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog_post", err))
			return
		}
		if !moderated {
			h.responder.WriteError(w, errs.NewNotModeratableError(post.Status))
			return
		}

		h.logger.Info().Uint("postId", id).Str("status", status).Msg("Blog post moderated")
		h.notifyModerated(post)
		h.responder.WriteJSON(w, post)
	}
}

func (h blogPostHandler) notifySubmitted(post *models.BlogPost) {
	h.notify(post.ID, "submitted", func(ctx context.Context) error {
		return h.notifier.PostSubmitted(ctx, post)
	})
}

func (h blogPostHandler) notifyModerated(post *models.BlogPost) {
	h.notify(post.ID, "moderated", func(ctx context.Context) error {
		return h.notifier.PostModerated(ctx, post, post.Author)
	})
}

// notify runs send on its own goroutine so email delivery never delays the response.
func (h blogPostHandler) notify(postID uint, event string, send func(ctx context.Context) error) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			h.logger.Warn().Err(err).Uint("postId", postID).Str("event", event).Msg("Failed to send notification")
		}
	}()
}

func postSlug(requested *string, title string) string {
	slug := ""
	if requested != nil {
		slug = services.Slugify(*requested)
	}
	if slug == "" {
		slug = services.Slugify(title)
	}
	if slug == "" {
		slug = "post"
	}
	return slug
}

// normalizeCategoryID treats 0 as "no category".
func normalizeCategoryID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
