// Package subtasks manages the subtasks of a task. Every operation first
// checks that the parent task belongs to the caller.
package subtasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned for a subtask missing from the given task
var ErrNotFound = errors.New("subtask not found")

// CreateParams are the permitted fields of a new subtask
type CreateParams struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Due         *time.Time `json:"due"`
	Completed   bool       `json:"completed"`
}

// UpdateParams are the permitted fields of a subtask update; nil fields are
// kept and "due": null clears the due date
type UpdateParams struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Due         tasks.DueDate `json:"due"`
	Completed   *bool         `json:"completed"`
}

// Service stores subtasks
type Service struct {
	db *gorm.DB
}

// NewService creates a subtask service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) parent(ctx context.Context, userID, taskID uint) error {
	var task models.Task
	err := s.db.WithContext(ctx).Select("id").Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", tasks.ErrNotFound, taskID)
	}
	if err != nil {
		return fmt.Errorf("load task %d: %w", taskID, err)
	}
	return nil
}

// List returns the subtasks of a task in creation order
func (s *Service) List(ctx context.Context, userID, taskID uint) ([]models.Subtask, error) {
	if err := s.parent(ctx, userID, taskID); err != nil {
		return nil, err
	}
	subtasks := []models.Subtask{}
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id ASC").Find(&subtasks).Error; err != nil {
		return nil, fmt.Errorf("list subtasks of task %d: %w", taskID, err)
	}
	return subtasks, nil
}

// Get returns one subtask of a task
func (s *Service) Get(ctx context.Context, userID, taskID, subtaskID uint) (*models.Subtask, error) {
	if err := s.parent(ctx, userID, taskID); err != nil {
		return nil, err
	}
	var subtask models.Subtask
	err := s.db.WithContext(ctx).Where("id = ? AND task_id = ?", subtaskID, taskID).First(&subtask).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, subtaskID)
	}
	if err != nil {
		return nil, fmt.Errorf("load subtask %d: %w", subtaskID, err)
	}
	return &subtask, nil
}

// Create adds a subtask to a task. Validation failures are tasks.ValidationErrors.
func (s *Service) Create(ctx context.Context, userID, taskID uint, p CreateParams) (*models.Subtask, error) {
	if err := s.parent(ctx, userID, taskID); err != nil {
		return nil, err
	}
	subtask := models.Subtask{
		TaskID:      taskID,
		Title:       p.Title,
		Description: p.Description,
		Due:         p.Due,
		Completed:   p.Completed,
	}
	if err := tasks.Validate(&subtask); err != nil {
		return &subtask, err
	}
	if err := s.db.WithContext(ctx).Create(&subtask).Error; err != nil {
		return nil, fmt.Errorf("insert subtask: %w", err)
	}
	return &subtask, nil
}

// Update applies p to a subtask
func (s *Service) Update(ctx context.Context, userID, taskID, subtaskID uint, p UpdateParams) (*models.Subtask, error) {
	subtask, err := s.Get(ctx, userID, taskID, subtaskID)
	if err != nil {
		return nil, err
	}

	updated := *subtask
	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	updated.Due = p.Due.Apply(subtask.Due)
	if p.Completed != nil {
		updated.Completed = *p.Completed
	}
	if err := tasks.Validate(&updated); err != nil {
		return subtask, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&updated).Error; err != nil {
		return nil, fmt.Errorf("save subtask %d: %w", subtaskID, err)
	}
	return &updated, nil
}

// Delete removes a subtask
func (s *Service) Delete(ctx context.Context, userID, taskID, subtaskID uint) error {
	subtask, err := s.Get(ctx, userID, taskID, subtaskID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(subtask).Error; err != nil {
		return fmt.Errorf("delete subtask %d: %w", subtaskID, err)
	}
	return nil
}
