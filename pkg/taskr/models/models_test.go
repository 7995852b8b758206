package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	// Verify tables exist by checking if we can query them
	tables := []string{"users", "categories", "tasks", "subtasks", "tags", "taggings"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUserModel(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Name:         "Test User",
		SystemRole:   SystemRoleUser,
	}

	result := db.Create(&user)
	if result.Error != nil {
		t.Fatalf("Failed to create user: %v", result.Error)
	}

	if user.ID == 0 {
		t.Error("Expected user ID to be set after create")
	}

	// Test unique email constraint
	user2 := User{
		Email:        "test@example.com",
		PasswordHash: "another_hash",
		Name:         "Another User",
	}
	result = db.Create(&user2)
	if result.Error == nil {
		t.Error("Expected error when creating user with duplicate email")
	}
}

func TestTaskWithTags(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{Email: "test@example.com", PasswordHash: "hash", Name: "Test"}
	db.Create(&user)

	tag1 := Tag{Name: "golang"}
	tag2 := Tag{Name: "programming"}
	db.Create(&tag1)
	db.Create(&tag2)

	task := Task{
		UserID:      user.ID,
		Title:       "Write code",
		Description: "Lots of it",
		Tags:        []Tag{tag1, tag2},
	}
	result := db.Create(&task)
	if result.Error != nil {
		t.Fatalf("Failed to create task: %v", result.Error)
	}

	var loadedTask Task
	db.Preload("Tags").First(&loadedTask, task.ID)
	if len(loadedTask.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(loadedTask.Tags))
	}

	// The join rows are Tagging records
	var taggings []Tagging
	db.Where("task_id = ?", task.ID).Find(&taggings)
	if len(taggings) != 2 {
		t.Errorf("Expected 2 taggings, got %d", len(taggings))
	}
}

func TestTagNameUniqueness(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	if err := db.Create(&Tag{Name: "urgent"}).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	if err := db.Create(&Tag{Name: "urgent"}).Error; err == nil {
		t.Error("Expected error when creating tag with duplicate name")
	}
}

func TestTaskCategoryIsOptional(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{Email: "test@example.com", PasswordHash: "hash"}
	db.Create(&user)
	category := Category{Name: "work"}
	db.Create(&category)

	withCategory := Task{UserID: user.ID, CategoryID: &category.ID, Title: "a", Description: "a"}
	without := Task{UserID: user.ID, Title: "b", Description: "b"}
	if err := db.Create(&withCategory).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if err := db.Create(&without).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	var loaded Task
	db.Preload("Category").First(&loaded, withCategory.ID)
	if loaded.Category == nil || loaded.Category.Name != "work" {
		t.Errorf("Expected category 'work', got %+v", loaded.Category)
	}

	var count int64
	db.Model(&Task{}).Where("category_id IS NULL").Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 uncategorized task, got %d", count)
	}
}
