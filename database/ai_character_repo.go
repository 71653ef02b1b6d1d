package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/markoai/marko-backend/models"
)

type AICharacterRepo struct {
	db *gorm.DB
}

func NewAICharacterRepo(db *gorm.DB) *AICharacterRepo {
	return &AICharacterRepo{db}
}

// FindAll returns characters by name; inactive ones only when includeInactive is set
func (r *AICharacterRepo) FindAll(ctx context.Context, includeInactive bool) ([]*models.AICharacter, error) {
	var characters []*models.AICharacter
	q := r.db.WithContext(ctx).Order("name")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&characters).Error
	return characters, err
}

func (r *AICharacterRepo) FindByID(ctx context.Context, id uint) (*models.AICharacter, error) {
	var character models.AICharacter
	if err := r.db.WithContext(ctx).First(&character, id).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *AICharacterRepo) FindBySlug(ctx context.Context, slug string) (*models.AICharacter, error) {
	var character models.AICharacter
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&character).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

// Search returns active characters whose name or tagline contain q
func (r *AICharacterRepo) Search(ctx context.Context, q string, limit int) ([]*models.AICharacter, error) {
	var characters []*models.AICharacter
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(containsClause("name", "tagline"), repeatArg(likePattern(q), 2)...).
		Order("name").
		Limit(limit).
		Find(&characters).Error
	return characters, err
}

// Add inserts a character, suffixing the slug when it is taken
func (r *AICharacterRepo) Add(ctx context.Context, character *models.AICharacter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(ctx, tx, &models.AICharacter{}, character.Slug, 0)
		if err != nil {
			return err
		}
		character.Slug = slug
		return tx.Create(character).Error
	})
}

func (r *AICharacterRepo) Update(ctx context.Context, character *models.AICharacter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(ctx, tx, &models.AICharacter{}, character.Slug, character.ID)
		if err != nil {
			return err
		}
		character.Slug = slug
		return tx.Save(character).Error
	})
}

// Delete removes a character and its chat history
func (r *AICharacterRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&models.CharacterChat{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.AICharacter{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *AICharacterRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AICharacter{}).Count(&count).Error
	return count, err
}
