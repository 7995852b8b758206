package tasks

import (
	"context"
	"fmt"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateParams are the permitted fields of a task update. Nil fields are
// left unchanged, except TagsArray: the task's tags always become exactly
// TagsArray, so omitting it clears them. Due and CategoryID are cleared by
// an explicit null.
type UpdateParams struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Due         DueDate        `json:"due"`
	Completed   *bool          `json:"completed"`
	CategoryID  CategoryFilter `json:"category_id"`
	TagsArray   []string       `json:"tags_array"`
}

// Updator applies field changes and replaces tag sets
type Updator struct {
	db *gorm.DB
}

// NewUpdator creates a task updator
func NewUpdator(db *gorm.DB) *Updator {
	return &Updator{db: db}
}

// Update applies p to task. On a validation failure the task is returned
// unchanged with ValidationErrors and its tags are not touched.
func (u *Updator) Update(ctx context.Context, task *models.Task, p UpdateParams) (*models.Task, error) {
	updated := *task
	updated.Tags = nil
	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	updated.Due = p.Due.Apply(task.Due)
	if p.Completed != nil {
		updated.Completed = *p.Completed
	}
	if p.CategoryID.Present {
		updated.CategoryID = p.CategoryID.ID
		updated.Category = nil
	}

	if err := Validate(&updated); err != nil {
		return task, err
	}

	db := u.db.WithContext(ctx)
	if p.CategoryID.Present {
		if err := checkCategory(db, updated.CategoryID); err != nil {
			return task, err
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&updated).Error; err != nil {
			return fmt.Errorf("save task %d: %w", updated.ID, err)
		}
		return ReplaceTags(tx, updated.ID, p.TagsArray)
	})
	if err != nil {
		return task, err
	}

	return FindOwned(ctx, u.db, updated.UserID, updated.ID)
}
