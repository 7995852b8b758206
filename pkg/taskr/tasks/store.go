package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
)

// FindOwned loads a task owned by userID with its tags and category
func FindOwned(ctx context.Context, db *gorm.DB, userID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := db.WithContext(ctx).
		Preload("Tags", orderTagsByName).
		Preload("Category").
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, taskID)
		}
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}
	if task.Tags == nil {
		task.Tags = []models.Tag{}
	}
	return &task, nil
}

// Delete soft-deletes a task owned by userID along with its taggings.
// It returns ErrHasSubtasks while any subtask remains.
func Delete(ctx context.Context, db *gorm.DB, userID, taskID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Select("id").Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrNotFound, taskID)
		}
		if err != nil {
			return fmt.Errorf("load task %d: %w", taskID, err)
		}

		var subtasks int64
		if err := tx.Model(&models.Subtask{}).Where("task_id = ?", taskID).Count(&subtasks).Error; err != nil {
			return fmt.Errorf("count subtasks of task %d: %w", taskID, err)
		}
		if subtasks > 0 {
			return ErrHasSubtasks
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.Tagging{}).Error; err != nil {
			return fmt.Errorf("clear tags of task %d: %w", taskID, err)
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("delete task %d: %w", taskID, err)
		}
		return nil
	})
}
