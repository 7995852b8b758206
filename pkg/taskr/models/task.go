package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a unit of work owned by exactly one user
type Task struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint          `gorm:"index" json:"category_id"`
	Title       string         `gorm:"not null" json:"title" validate:"notblank"`
	Description string         `gorm:"type:text;not null" json:"description" validate:"notblank"`
	Due         *time.Time     `json:"due"`
	Completed   bool           `gorm:"default:false;index" json:"completed"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnDelete:RESTRICT" json:"subtasks,omitempty"`
	Tags     []Tag     `gorm:"many2many:taggings;" json:"tags"`
}

// Subtask belongs to a task and blocks the task's deletion while it exists
type Subtask struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	TaskID      uint           `gorm:"not null;index" json:"task_id"`
	Title       string         `gorm:"not null" json:"title" validate:"notblank"`
	Description string         `gorm:"type:text;not null" json:"description" validate:"notblank"`
	Due         *time.Time     `json:"due"`
	Completed   bool           `gorm:"default:false;index" json:"completed"`
}
