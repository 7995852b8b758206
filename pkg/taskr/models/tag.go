package models

import "time"

// Tag is a globally unique label. Tags are shared between users and are
// never removed when a task drops them; only the Tagging goes away.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`

	// Relationships
	Tasks []Task `gorm:"many2many:taggings;" json:"-"`
}

// Tagging is the join row between a task and a tag
type Tagging struct {
	TaskID    uint      `gorm:"primaryKey" json:"task_id"`
	TagID     uint      `gorm:"primaryKey;index" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
