package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/auth"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/middleware"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/post"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/user"
)

type Options struct {
	JWTSecret      string
	CORSOrigins    []string
	MaxUploadBytes int64
}

type Handlers struct {
	Auth  *auth.Handler
	Users *user.Handler
	Posts *post.Handler
}

func NewRouter(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
		r.Use(limitBody(opts.MaxUploadBytes))
	}

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Signup)
		api.POST("/auth/login", h.Auth.Login)
	}

	secured := api.Group("")
	secured.Use(middleware.AuthMiddleware(opts.JWTSecret))
	secured.GET("/users/me", h.Users.GetMe)
	secured.POST("/upload", h.Posts.Upload)
	secured.GET("/feed", h.Posts.Feed)
	secured.GET("/posts/:id", h.Posts.GetPost)
	secured.DELETE("/posts/:id", h.Posts.DeletePost)

	return r
}

// limitBody caps request bodies; multipart overhead gets one extra megabyte.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
		}
		c.Next()
	}
}
