package models

import (
	"fmt"

	"gorm.io/gorm"
)

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Category{},
		&Tag{},
		&BlogPost{},
		&PostTag{},
		&ChatMessage{},
		&AICharacter{},
		&CharacterChat{},
	}
}

// SetupJoinTables registers custom join models. It must run on every *gorm.DB
// before the many2many associations are used.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&BlogPost{}, "Tags", &PostTag{}); err != nil {
		return fmt.Errorf("setup post_tags join table: %w", err)
	}
	return nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
