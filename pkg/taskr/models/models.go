package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: User and Category must be migrated before Task, Tag before Tagging
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Task{},
		&Subtask{},
		&Tag{},
		&Tagging{},
		&APIKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}
	return db.AutoMigrate(AllModels()...)
}

// SetupJoinTables registers Tagging as the join model behind Task.Tags and
// Tag.Tasks. It must run on every connection before the associations are used.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Task{}, "Tags", &Tagging{}); err != nil {
		return err
	}
	return db.SetupJoinTable(&Tag{}, "Tasks", &Tagging{})
}
