package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/logs"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GetMe GET /api/users/me
func (h *Handler) GetMe(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	u, err := NewRepository(h.db).Ensure(c.Request.Context(), userID, c.GetString("user_email"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			logs.LogJSON("WARN", "User not found", map[string]interface{}{
				"route":  route,
				"userID": userID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load user"})
		logs.LogJSON("ERROR", "User lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	}})
}
