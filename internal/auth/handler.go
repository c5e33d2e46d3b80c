package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/logs"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/user"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/utils"
)

type Handler struct {
	identity *Client
	db       *gorm.DB
}

func NewHandler(identity *Client, db *gorm.DB) *Handler {
	return &Handler{identity: identity, db: db}
}

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Signup POST /api/auth/register
func (h *Handler) Signup(c *gin.Context) {
	route := c.FullPath()

	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": utils.ParseErrors(err)})
		return
	}

	ctx := c.Request.Context()
	users := user.NewRepository(h.db)

	exists, err := users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not check email"})
		logs.LogJSON("ERROR", "Email lookup failed", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already used"})
		return
	}

	userID, err := h.identity.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) && providerErr.Status < http.StatusInternalServerError {
			c.JSON(providerErr.Status, gin.H{"error": "Signup rejected", "details": providerErr.Body})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider unavailable"})
		}
		logs.LogJSON("ERROR", "Identity provider signup failed", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	newUser := user.User{
		ID:        userID,
		Email:     input.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(ctx, &newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save user"})
		logs.LogJSON("ERROR", "User insert failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered",
		"user":    newUser,
	})
	logs.LogJSON("INFO", "User registered", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// Login POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": utils.ParseErrors(err)})
		return
	}

	status, body, err := h.identity.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider unavailable"})
		logs.LogJSON("ERROR", "Identity provider login failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return
	}

	c.Data(status, "application/json", body)
}
