package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/markoai/marko-backend/models"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

// FindAll returns all categories by name with their published post counts
func (r *CategoryRepo) FindAll(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Select("category_id AS id, COUNT(*) AS n").
		Where("status = ? AND category_id IS NOT NULL", models.PostStatusPublished).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := countsByID(rows)
	for _, c := range categories {
		c.PostCount = counts[c.ID]
	}
	return categories, nil
}

func (r *CategoryRepo) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Add inserts a category, suffixing the slug when it is taken
func (r *CategoryRepo) Add(ctx context.Context, category *models.Category) error {
	slug, err := uniqueSlug(ctx, r.db, &models.Category{}, category.Slug, 0)
	if err != nil {
		return err
	}
	category.Slug = slug
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *CategoryRepo) Update(ctx context.Context, category *models.Category) error {
	slug, err := uniqueSlug(ctx, r.db, &models.Category{}, category.Slug, category.ID)
	if err != nil {
		return err
	}
	category.Slug = slug
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category and detaches its posts
func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.BlogPost{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CategoryRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error
	return count, err
}
