package tags

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"gorm.io/gorm"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	TaskCount int    `json:"task_count,omitempty"`
}

// SetTagsRequest represents the request to set tags on a task
type SetTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

func toResponses(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, t := range tags {
		out[i] = TagResponse{ID: t.ID, Name: t.Name}
	}
	return out
}

// loadTask resolves :id to a task owned by the caller, writing the error response if it can't
func (h *Handler) loadTask(c *gin.Context) (*models.Task, bool) {
	userID, _ := auth.GetUserID(c)
	taskID, ok := tasks.ParseTaskID(c)
	if !ok {
		return nil, false
	}
	task, err := tasks.FindOwned(c.Request.Context(), h.db, userID, taskID)
	if err != nil {
		tasks.WriteError(c, err, "Failed to fetch task")
		return nil, false
	}
	return task, true
}

// List returns the tags used on the caller's tasks
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	type tagWithCount struct {
		ID        uint
		Name      string
		TaskCount int
	}

	var results []tagWithCount
	err := h.db.WithContext(c.Request.Context()).Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT tasks.id) as task_count").
		Joins("INNER JOIN taggings ON tags.id = taggings.tag_id").
		Joins("INNER JOIN tasks ON taggings.task_id = tasks.id AND tasks.user_id = ? AND tasks.deleted_at IS NULL", userID).
		Group("tags.id, tags.name").
		Order("task_count DESC, tags.name ASC").
		Find(&results).Error

	if err != nil {
		middleware.Logger(c).WithError(err).Error("list tags")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	tags := make([]TagResponse, len(results))
	for i, r := range results {
		tags[i] = TagResponse{
			ID:        r.ID,
			Name:      r.Name,
			TaskCount: r.TaskCount,
		}
	}

	c.JSON(http.StatusOK, tags)
}

// GetTaskTags returns tags for a specific task
func (h *Handler) GetTaskTags(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponses(task.Tags))
}

// SetTaskTags sets the tags for a task (replaces existing tags)
func (h *Handler) SetTaskTags(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	var req SetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := tasks.SetTags(ctx, h.db, task.ID, req.Tags); err != nil {
		tasks.WriteError(c, err, "Failed to update tags")
		return
	}

	updated, err := tasks.FindOwned(ctx, h.db, task.UserID, task.ID)
	if err != nil {
		tasks.WriteError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, toResponses(updated.Tags))
}

// AddTaskTag adds a single tag to a task
func (h *Handler) AddTaskTag(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.Param("tag"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag name"})
		return
	}

	var tag *models.Tag
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tasks.AttachTags(tx, task.ID, []string{name}); err != nil {
			return err
		}
		var err error
		tag, err = tasks.FindOrCreateTag(tx, name)
		return err
	})
	if err != nil {
		tasks.WriteError(c, err, "Failed to add tag")
		return
	}

	c.JSON(http.StatusOK, TagResponse{
		ID:   tag.ID,
		Name: tag.Name,
	})
}

// RemoveTaskTag removes a tag from a task. The tag itself is kept.
func (h *Handler) RemoveTaskTag(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	removed, err := tasks.DetachTag(h.db.WithContext(c.Request.Context()), task.ID, c.Param("tag"))
	if err != nil {
		tasks.WriteError(c, err, "Failed to remove tag")
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag removed"})
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)

	// Task tag operations
	rg.GET("/tasks/:id/tags", h.GetTaskTags)
	rg.PUT("/tasks/:id/tags", h.SetTaskTags)
	rg.POST("/tasks/:id/tags/:tag", h.AddTaskTag)
	rg.DELETE("/tasks/:id/tags/:tag", h.RemoveTaskTag)
}
