package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateParams are the permitted fields of a new task
type CreateParams struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Due         *time.Time `json:"due"`
	Completed   bool       `json:"completed"`
	CategoryID  *uint      `json:"category_id"`
	TagsArray   []string   `json:"tags_array"`
}

// Creator inserts tasks together with their tags
type Creator struct {
	db *gorm.DB
}

// NewCreator creates a task creator
func NewCreator(db *gorm.DB) *Creator {
	return &Creator{db: db}
}

// Create validates and stores a task for userID, then attaches its tags.
// On a validation failure the unsaved task is returned alongside
// ValidationErrors and nothing is written.
func (c *Creator) Create(ctx context.Context, userID uint, p CreateParams) (*models.Task, error) {
	task := models.Task{
		UserID:      userID,
		Title:       p.Title,
		Description: p.Description,
		Due:         p.Due,
		Completed:   p.Completed,
		CategoryID:  p.CategoryID,
	}
	if err := Validate(&task); err != nil {
		return &task, err
	}

	db := c.db.WithContext(ctx)
	if err := checkCategory(db, task.CategoryID); err != nil {
		return &task, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return AttachTags(tx, task.ID, NormalizeTagNames(p.TagsArray))
	})
	if err != nil {
		return &task, err
	}

	return FindOwned(ctx, c.db, userID, task.ID)
}

// checkCategory reports a dangling category reference as a validation error
func checkCategory(db *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var category models.Category
	err := db.Select("id").First(&category, *id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ValidationErrors{"category_id": "does not exist"}
	}
	if err != nil {
		return fmt.Errorf("load category %d: %w", *id, err)
	}
	return nil
}
