package tasks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"gorm.io/gorm"
)

// Handler handles task requests
type Handler struct {
	db         *gorm.DB
	selector   *Selector
	aggregator *Aggregator
	creator    *Creator
	updator    *Updator
}

// NewHandler creates a new tasks handler
func NewHandler(db *gorm.DB, selector *Selector, aggregator *Aggregator) *Handler {
	return &Handler{
		db:         db,
		selector:   selector,
		aggregator: aggregator,
		creator:    NewCreator(db),
		updator:    NewUpdator(db),
	}
}

// ParseTaskID reads the :id path parameter
func ParseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return uint(id), true
}

// parseFilter maps the query string onto a Filter. category_id= and
// category_id=null both mean "uncategorized only".
func parseFilter(c *gin.Context) (Filter, error) {
	f := Filter{Tags: c.Query("tags")}
	raw, ok := c.GetQuery("category_id")
	if !ok {
		return f, nil
	}
	if raw == "" || raw == "null" {
		f.Category = NullCategory()
		return f, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return f, err
	}
	f.Category = CategoryID(uint(id))
	return f, nil
}

// WriteError maps domain errors onto responses. Anything unexpected is
// logged and reported as failure.
func WriteError(c *gin.Context, err error, failure string) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": verrs})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, ErrHasSubtasks):
		c.JSON(http.StatusConflict, gin.H{"error": "Task has subtasks"})
	default:
		middleware.Logger(c).WithError(err).Error(failure)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}

// List returns the caller's tasks
// @Summary List tasks
// @Description Tasks owned by the caller in creation order, optionally filtered
// @Tags tasks
// @Produce json
// @Param tags query string false "Comma separated tag names"
// @Param category_id query string false "Category ID, or empty/null for uncategorized"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid category ID"
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	tasks, err := h.selector.Select(c.Request.Context(), userID, filter)
	if err != nil {
		WriteError(c, err, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Create creates a task for the caller
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body CreateParams true "Task details"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.creator.Create(c.Request.Context(), userID, params)
	if err != nil {
		WriteError(c, err, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task, "success": true})
}

// Get returns a single task
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, ok := ParseTaskID(c)
	if !ok {
		return
	}

	task, err := FindOwned(c.Request.Context(), h.db, userID, taskID)
	if err != nil {
		WriteError(c, err, "Failed to fetch task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Update changes a task and replaces its tags
// @Summary Update a task
// @Description Omitting tags_array removes every tag from the task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body UpdateParams true "Fields to change"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, ok := ParseTaskID(c)
	if !ok {
		return
	}

	var params UpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := FindOwned(c.Request.Context(), h.db, userID, taskID)
	if err != nil {
		WriteError(c, err, "Failed to fetch task")
		return
	}

	task, err = h.updator.Update(c.Request.Context(), task, params)
	if err != nil {
		WriteError(c, err, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task, "success": true})
}

// Delete removes a task without subtasks
// @Summary Delete a task
// @Tags tasks
// @Param id path int true "Task ID"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 409 {object} map[string]string "Task has subtasks"
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID, ok := ParseTaskID(c)
	if !ok {
		return
	}

	if err := Delete(c.Request.Context(), h.db, userID, taskID); err != nil {
		WriteError(c, err, "Failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats returns the cross-user aggregate
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Success 200 {object} Stats
// @Security BearerAuth
// @Router /tasks/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.aggregator.Aggregate(c.Request.Context())
	if err != nil {
		WriteError(c, err, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers task routes on a group that is already authenticated
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("", h.Create)
		tasks.GET("/stats", h.Stats)
		tasks.GET("/:id", h.Get)
		tasks.PUT("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
	}
}
