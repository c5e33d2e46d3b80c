package post

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/logs"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/storage"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type uploadForm struct {
	Caption string                `form:"caption" binding:"required,max=255"`
	File    *multipart.FileHeader `form:"file" binding:"required"`
}

// Upload POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			logs.LogJSON("WARN", "Upload body over limit", map[string]interface{}{
				"limit":  tooLarge.Limit,
				"route":  route,
				"userID": userID,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload", "details": utils.ParseErrors(err)})
		logs.LogJSON("WARN", "Invalid upload form", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	file, err := form.File.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable media"})
		logs.LogJSON("WARN", "Unreadable media", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}
	defer file.Close()

	view, err := h.service.CreatePost(c.Request.Context(), CreatePostInput{
		UploaderID:    userID,
		UploaderEmail: c.GetString("user_email"),
		Caption:       form.Caption,
		Content:       file,
		ContentType:   form.File.Header.Get("Content-Type"),
		Filename:      form.File.Filename,
	})
	if err != nil {
		fields := map[string]interface{}{
			"error":    err.Error(),
			"route":    route,
			"userID":   userID,
			"filename": form.File.Filename,
		}
		switch {
		case errors.Is(err, ErrInvalidPost):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			logs.LogJSON("WARN", "Invalid post", fields)
		case errors.Is(err, ErrUnknownUploader):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			logs.LogJSON("WARN", "Uploader has no user record", fields)
		case storage.IsUploadError(err):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Media upload failed"})
			logs.LogJSON("ERROR", "Media upload failed", fields)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create post"})
			logs.LogJSON("ERROR", "Post creation failed", fields)
		}
		return
	}

	c.JSON(http.StatusOK, view)
	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"postID": view.ID,
	})
}

// Feed GET /api/feed
func (h *Handler) Feed(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	items, err := h.service.ListFeed(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load feed"})
		logs.LogJSON("ERROR", "Feed query failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// GetPost GET /api/posts/:id
func (h *Handler) GetPost(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	postID := c.Param("id")

	item, err := h.service.GetPost(c.Request.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load post"})
		logs.LogJSON("ERROR", "Post lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": item})
}

// DeletePost DELETE /api/posts/:id
func (h *Handler) DeletePost(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	postID := c.Param("id")

	fields := map[string]interface{}{
		"route":  route,
		"userID": userID,
		"postID": postID,
	}

	err := h.service.DeletePost(c.Request.Context(), userID, postID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"detail": "Post deleted successfully"})
		logs.LogJSON("INFO", "Post deleted", fields)
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		logs.LogJSON("WARN", "Post not found", fields)
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this post"})
		logs.LogJSON("WARN", "Delete refused for non-owner", fields)
	default:
		fields["error"] = err.Error()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete post"})
		logs.LogJSON("ERROR", "Post deletion failed", fields)
	}
}
