package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NormalizeTagNames trims every name, drops blanks and collapses duplicates.
// First occurrence wins, so input order is kept.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// SplitTagFilter turns "a, b,,c" into [a b c]
func SplitTagFilter(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeTagNames(strings.Split(raw, ","))
}

// FindOrCreateTag returns the tag called name, creating it if needed.
// The insert is a no-op when another writer got there first, and the
// following lookup then returns that writer's row.
func FindOrCreateTag(tx *gorm.DB, name string) (*models.Tag, error) {
	tag := models.Tag{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		return nil, fmt.Errorf("insert tag %q: %w", name, err)
	}

	var found models.Tag
	if err := tx.Where("name = ?", name).First(&found).Error; err != nil {
		return nil, fmt.Errorf("load tag %q: %w", name, err)
	}
	return &found, nil
}

// AttachTags links every named tag to the task. Existing links are left alone.
func AttachTags(tx *gorm.DB, taskID uint, names []string) error {
	for _, name := range names {
		tag, err := FindOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		tagging := models.Tagging{TaskID: taskID, TagID: tag.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tagging).Error; err != nil {
			return fmt.Errorf("tag task %d with %q: %w", taskID, name, err)
		}
	}
	return nil
}

// DetachTag removes the link between a task and the named tag. The tag row stays.
func DetachTag(tx *gorm.DB, taskID uint, name string) (bool, error) {
	sub := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Tag{}).Select("id").Where("name = ?", name)
	res := tx.Where("task_id = ? AND tag_id IN (?)", taskID, sub).Delete(&models.Tagging{})
	if res.Error != nil {
		return false, fmt.Errorf("untag task %d: %w", taskID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReplaceTags drops every tagging of the task and attaches names instead.
// Callers run it inside a transaction so readers never see a half-replaced set.
func ReplaceTags(tx *gorm.DB, taskID uint, names []string) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.Tagging{}).Error; err != nil {
		return fmt.Errorf("clear tags of task %d: %w", taskID, err)
	}
	return AttachTags(tx, taskID, NormalizeTagNames(names))
}

// SetTags is ReplaceTags in its own transaction
func SetTags(ctx context.Context, db *gorm.DB, taskID uint, names []string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ReplaceTags(tx, taskID, names)
	})
}

func orderTagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name ASC")
}
