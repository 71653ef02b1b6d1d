package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/markoai/marko-backend/models"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Status       string
	CategorySlug string
	TagSlug      string
	Query        string
	AuthorID     *uint
	Page         int
	Limit        int
}

func (r *BlogPostRepo) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.BlogPost{})
	if f.Status != "" {
		q = q.Where("blog_posts.status = ?", f.Status)
	}
	if f.AuthorID != nil {
		q = q.Where("blog_posts.author_id = ?", *f.AuthorID)
	}
	if f.CategorySlug != "" {
		q = q.Where("blog_posts.category_id IN (?)",
			r.db.WithContext(ctx).Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.TagSlug != "" {
		q = q.Where("blog_posts.id IN (?)",
			r.db.WithContext(ctx).Table("post_tags").
				Select("post_tags.blog_post_id").
				Joins("JOIN tags ON tags.id = post_tags.tag_id").
				Where("tags.slug = ?", f.TagSlug))
	}
	if f.Query != "" {
		q = q.Where(containsClause("blog_posts.title", "blog_posts.excerpt", "blog_posts.content"),
			repeatArg(likePattern(f.Query), 3)...)
	}
	return q
}

// List returns one page of posts matching f, newest first, and the total match count
func (r *BlogPostRepo) List(ctx context.Context, f PostFilter) ([]*models.BlogPost, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.BlogPost
	err := r.filtered(ctx, f).
		Preload("Author").Preload("Category").Preload("Tags").
		Order("COALESCE(blog_posts.published_at, blog_posts.created_at) DESC").
		Order("blog_posts.id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&posts).Error
	return posts, total, err
}

// Search returns published posts whose title or excerpt contain q
func (r *BlogPostRepo) Search(ctx context.Context, q string, limit int) ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		Where(containsClause("title", "excerpt"), repeatArg(likePattern(q), 2)...).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// FindByID returns a blog post by its ID with author, category and tags
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").Preload("Category").Preload("Tags").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindBySlug returns a blog post by its slug with author, category and tags
func (r *BlogPostRepo) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").Preload("Category").Preload("Tags").
		Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new blog post and links its tags, creating missing tags
func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(ctx, tx, &models.BlogPost{}, post.Slug, 0)
		if err != nil {
			return err
		}
		post.Slug = slug
		post.Tags = nil

		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}

		tags, err := linkTags(ctx, tx, post.ID, tagNames)
		if err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
}

// Update saves the post columns. When replaceTags is set the tag set becomes tagNames.
func (r *BlogPostRepo) Update(ctx context.Context, post *models.BlogPost, tagNames []string, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(ctx, tx, &models.BlogPost{}, post.Slug, post.ID)
		if err != nil {
			return err
		}
		post.Slug = slug

		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}

		if !replaceTags {
			return nil
		}
		if err := tx.Where("blog_post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		tags, err := linkTags(ctx, tx, post.ID, tagNames)
		if err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
}

// linkTags resolves tagNames and inserts the post_tags rows for postID.
func linkTags(ctx context.Context, tx *gorm.DB, postID uint, tagNames []string) ([]models.Tag, error) {
	tags, err := resolveTags(ctx, tx, tagNames)
	if err != nil || len(tags) == 0 {
		return tags, err
	}

	links := make([]models.PostTag, 0, len(tags))
	for _, tag := range tags {
		links = append(links, models.PostTag{BlogPostID: postID, TagID: tag.ID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Moderate moves a pending post to status, returning false when the post was not pending
func (r *BlogPostRepo) Moderate(ctx context.Context, id uint, status string, note *string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":          status,
		"moderation_note": note,
		"updated_at":      at,
	}
	if status == models.PostStatusPublished {
		updates["published_at"] = gorm.Expr("COALESCE(published_at, ?)", at)
	}

	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("id = ? AND status = ?", id, models.PostStatusPending).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// IncrementViews bumps the view counter without touching updated_at
func (r *BlogPostRepo) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Delete removes a blog post and its tag links
func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.BlogPost{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountByStatus returns the number of posts per status
func (r *BlogPostRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{
		models.PostStatusDraft:     0,
		models.PostStatusPending:   0,
		models.PostStatusPublished: 0,
		models.PostStatusRejected:  0,
	}
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}
