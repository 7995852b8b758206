package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"gorm.io/gorm"
)

// ErrUserHasTasks blocks deleting a user who still owns tasks
var ErrUserHasTasks = errors.New("user owns tasks")

// Handler handles admin requests
type Handler struct {
	db         *gorm.DB
	aggregator *tasks.Aggregator
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB, aggregator *tasks.Aggregator) *Handler {
	return &Handler{db: db, aggregator: aggregator}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	SystemRole string `json:"system_role"`
	CreatedAt  string `json:"created_at"`
	TaskCount  int64  `json:"task_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	SystemRole *string `json:"system_role"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalUsers      int64 `json:"total_users"`
	AdminUsers      int64 `json:"admin_users"`
	TotalTasks      int64 `json:"total_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	TotalSubtasks   int64 `json:"total_subtasks"`
	TotalTags       int64 `json:"total_tags"`
	TotalCategories int64 `json:"total_categories"`
}

func (h *Handler) toResponse(c *gin.Context, user models.User) (UserResponse, error) {
	var taskCount int64
	err := h.db.WithContext(c.Request.Context()).Model(&models.Task{}).Where("user_id = ?", user.ID).Count(&taskCount).Error
	if err != nil {
		return UserResponse{}, fmt.Errorf("count tasks of user %d: %w", user.ID, err)
	}

	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		SystemRole: string(user.SystemRole),
		CreatedAt:  user.CreatedAt.Format("2006-01-02T15:04:05Z"),
		TaskCount:  taskCount,
	}, nil
}

// writeUser answers with one user, or 500 if its task count cannot be read
func (h *Handler) writeUser(c *gin.Context, user models.User) {
	resp, err := h.toResponse(c, user)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("load user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return uint(id), true
}

// ListUsers returns all users (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User

	query := h.db.Order("created_at DESC")

	// Optional search by email or name
	if search := c.Query("q"); search != "" {
		query = query.Where("email LIKE ? OR name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		query = query.Where("system_role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		middleware.Logger(c).WithError(err).Error("list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		resp, err := h.toResponse(c, user)
		if err != nil {
			middleware.Logger(c).WithError(err).Error("list users")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		responses[i] = resp
	}

	c.JSON(http.StatusOK, responses)
}

// GetUser returns a single user by ID (admin only)
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	h.writeUser(c, user)
}

// UpdateUser updates a user's profile (admin only)
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Prevent admin from demoting themselves
	currentUserID, _ := auth.GetUserID(c)
	if id == currentUserID && req.SystemRole != nil && *req.SystemRole != string(models.SystemRoleAdmin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote yourself"})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SystemRole != nil {
		role := models.SystemRole(*req.SystemRole)
		if role != models.SystemRoleAdmin && role != models.SystemRoleUser {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid system role"})
			return
		}
		updates["system_role"] = role
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			middleware.Logger(c).WithError(err).Error("update user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	h.db.First(&user, id)
	h.writeUser(c, user)
}

// DeleteUser soft-deletes a user who owns no tasks (admin only)
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	// Prevent admin from deleting themselves
	currentUserID, _ := auth.GetUserID(c)
	if id == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Task{}).Where("user_id = ?", user.ID).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return ErrUserHasTasks
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.APIKey{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})

	switch {
	case errors.Is(err, ErrUserHasTasks):
		c.JSON(http.StatusConflict, gin.H{"error": "User still owns tasks"})
		return
	case err != nil:
		middleware.Logger(c).WithError(err).Error("delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// GetStats returns system-wide record counts (admin only)
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&stats.AdminUsers)
	h.db.Model(&models.Task{}).Count(&stats.TotalTasks)
	h.db.Model(&models.Task{}).Where("completed = ?", true).Count(&stats.CompletedTasks)
	h.db.Model(&models.Subtask{}).Count(&stats.TotalSubtasks)
	h.db.Model(&models.Tag{}).Count(&stats.TotalTags)
	h.db.Model(&models.Category{}).Count(&stats.TotalCategories)

	c.JSON(http.StatusOK, stats)
}

// RefreshTaskStats drops the cached task aggregate and returns a fresh one
func (h *Handler) RefreshTaskStats(c *gin.Context) {
	stats, err := h.aggregator.Refresh(c.Request.Context())
	if err != nil {
		middleware.Logger(c).WithError(err).Error("refresh task stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.POST("/stats/refresh", h.RefreshTaskStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
}
