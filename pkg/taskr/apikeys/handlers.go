package apikeys

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"gorm.io/gorm"
)

// Handler serves the caller's API keys
type Handler struct {
	keys *Service
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{keys: NewService(db)}
}

// KeyView is an API key as listed; the secret is never included
type KeyView struct {
	ID          uint       `json:"id"`
	KeyPrefix   string     `json:"key_prefix"`
	Description string     `json:"description"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IssueRequest is the optional body of POST /api-keys
type IssueRequest struct {
	Description string `json:"description"`
}

// IssueResponse carries the raw key, shown only here
type IssueResponse struct {
	KeyView
	Key string `json:"key"`
}

func toView(k models.APIKey) KeyView {
	return KeyView{
		ID:          k.ID,
		KeyPrefix:   k.KeyPrefix,
		Description: k.Description,
		LastUsedAt:  k.LastUsedAt,
		CreatedAt:   k.CreatedAt,
	}
}

// Issue godoc
// @Summary      Create an API key
// @Tags         api-keys
// @Router       /api-keys [post]
func (h *Handler) Issue(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req IssueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	raw, key, err := h.keys.Issue(c.Request.Context(), userID, req.Description)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("issue api key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	middleware.Logger(c).WithField("key_prefix", key.KeyPrefix).Info("api key issued")
	c.JSON(http.StatusCreated, IssueResponse{KeyView: toView(*key), Key: raw})
}

func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	keys, err := h.keys.List(c.Request.Context(), userID)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list api keys")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch API keys"})
		return
	}

	views := make([]KeyView, 0, len(keys))
	for _, k := range keys {
		views = append(views, toView(k))
	}
	c.JSON(http.StatusOK, gin.H{"api_keys": views})
}

func (h *Handler) Revoke(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	keyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	err = h.keys.Revoke(c.Request.Context(), userID, uint(keyID))
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
	case err != nil:
		middleware.Logger(c).WithError(err).Error("revoke api key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// RegisterRoutes registers API key routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/api-keys", h.Issue)
	rg.GET("/api-keys", h.List)
	rg.DELETE("/api-keys/:id", h.Revoke)
}
