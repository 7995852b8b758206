package subtasks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"gorm.io/gorm"
)

// Handler handles subtask requests
type Handler struct {
	service *Service
}

// NewHandler creates a new subtasks handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{service: NewService(db)}
}

func parseIDs(c *gin.Context, withSubtask bool) (taskID, subtaskID uint, ok bool) {
	taskID, ok = tasks.ParseTaskID(c)
	if !ok || !withSubtask {
		return taskID, 0, ok
	}
	id, err := strconv.ParseUint(c.Param("subtaskId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subtask ID"})
		return 0, 0, false
	}
	return taskID, uint(id), true
}

func writeError(c *gin.Context, err error, failure string) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
		return
	}
	tasks.WriteError(c, err, failure)
}

// List returns the subtasks of a task
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, _, ok := parseIDs(c, false)
	if !ok {
		return
	}

	subtasks, err := h.service.List(c.Request.Context(), userID, taskID)
	if err != nil {
		writeError(c, err, "Failed to fetch subtasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

// Get returns a single subtask
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, subtaskID, ok := parseIDs(c, true)
	if !ok {
		return
	}

	subtask, err := h.service.Get(c.Request.Context(), userID, taskID, subtaskID)
	if err != nil {
		writeError(c, err, "Failed to fetch subtask")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtask": subtask})
}

// Create adds a subtask
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, _, ok := parseIDs(c, false)
	if !ok {
		return
	}

	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subtask, err := h.service.Create(c.Request.Context(), userID, taskID, params)
	if err != nil {
		writeError(c, err, "Failed to create subtask")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subtask": subtask, "success": true})
}

// Update changes a subtask
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, subtaskID, ok := parseIDs(c, true)
	if !ok {
		return
	}

	var params UpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subtask, err := h.service.Update(c.Request.Context(), userID, taskID, subtaskID, params)
	if err != nil {
		writeError(c, err, "Failed to update subtask")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtask": subtask, "success": true})
}

// Delete removes a subtask
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, subtaskID, ok := parseIDs(c, true)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, taskID, subtaskID); err != nil {
		writeError(c, err, "Failed to delete subtask")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes registers subtask routes under /tasks/:id
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks/:id/subtasks", h.List)
	rg.POST("/tasks/:id/subtasks", h.Create)
	rg.GET("/tasks/:id/subtasks/:subtaskId", h.Get)
	rg.PUT("/tasks/:id/subtasks/:subtaskId", h.Update)
	rg.DELETE("/tasks/:id/subtasks/:subtaskId", h.Delete)
}
