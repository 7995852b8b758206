// Package categories manages the shared list of task categories
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrDuplicateName = errors.New("category name already exists")
	// ErrCategoryInUse blocks deleting a category that tasks still reference
	ErrCategoryInUse = errors.New("category is in use")
)

// Service stores categories
type Service struct {
	db *gorm.DB
}

// NewService creates a category service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns every category ordered by name
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get returns one category
func (s *Service) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}
	return &category, nil
}

// Create adds a category
func (s *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	category := models.Category{Name: strings.TrimSpace(name)}
	if err := tasks.Validate(&category); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &category, nil
}

// Rename changes a category's name
func (s *Service) Rename(ctx context.Context, id uint, name string) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(name)
	if err := tasks.Validate(category); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("save category %d: %w", id, err)
	}
	return category, nil
}

// Delete removes a category nobody uses. Soft-deleted tasks do not count.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		err := tx.First(&category, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load category %d: %w", id, err)
		}

		var inUse int64
		if err := tx.Model(&models.Task{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return fmt.Errorf("count tasks in category %d: %w", id, err)
		}
		if inUse > 0 {
			return ErrCategoryInUse
		}

		// Detach soft-deleted tasks so the row can go
		if err := tx.Unscoped().Model(&models.Task{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach deleted tasks from category %d: %w", id, err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		return nil
	})
}
