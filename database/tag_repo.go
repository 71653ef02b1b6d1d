package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns all tags by name with their published post counts
func (r *TagRepo) FindAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Table("post_tags").
		Select("post_tags.tag_id AS id, COUNT(*) AS n").
		Joins("JOIN blog_posts ON blog_posts.id = post_tags.blog_post_id").
		Where("blog_posts.status = ?", models.PostStatusPublished).
		Group("post_tags.tag_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := countsByID(rows)
	for _, t := range tags {
		t.PostCount = counts[t.ID]
	}
	return tags, nil
}

// Add inserts a new tag; a name already present (any case) is a duplicate.
func (r *TagRepo) Add(ctx context.Context, name string) (*models.Tag, error) {
	var tag *models.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		created, err := createTag(ctx, tx, name)
		tag = created
		return err
	})
	return tag, err
}

// Delete removes a tag and its post links
func (r *TagRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *TagRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error
	return count, err
}

// NormalizeTagNames trims names and drops blanks and case-insensitive duplicates, keeping order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = strings.Join(strings.Fields(name), " ")
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// resolveTags finds each tag by name (ignoring case), creating the missing ones in tx.
func resolveTags(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = NormalizeTagNames(names)
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&tag).Error
		if err == nil {
			tags = append(tags, tag)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		created, err := createTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *created)
	}
	return tags, nil
}

func createTag(ctx context.Context, tx *gorm.DB, name string) (*models.Tag, error) {
	base := services.Slugify(name)
	if base == "" {
		base = "tag"
	}
	slug, err := uniqueSlug(ctx, tx, &models.Tag{}, base, 0)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: name, Slug: slug}
	if err := tx.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}
