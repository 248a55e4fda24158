package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"reviewhub/internal/auth"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/pkg/logger"
)

// RouterConfig carries everything the HTTP surface needs wired in.
type RouterConfig struct {
	Logger      *logger.Logger
	CORSOrigins []string
	Tokens      *auth.TokenIssuer
	AuthLimiter middleware.Limiter

	Auth       *AuthHandler
	Users      *UserHandler
	Categories *CategoryHandler
	Genres     *GenreHandler
	Titles     *TitleHandler
	Reviews    *ReviewHandler
	Comments   *CommentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(middleware.ResolveActor(cfg.Tokens))

	authGroup := v1.Group("/auth")
	if cfg.AuthLimiter != nil {
		authGroup.Use(middleware.RateLimit(cfg.AuthLimiter, cfg.Logger))
	}
	cfg.Auth.RegisterRoutes(authGroup)

	cfg.Users.RegisterRoutes(v1.Group("/users"))
	cfg.Categories.RegisterRoutes(v1.Group("/categories"))
	cfg.Genres.RegisterRoutes(v1.Group("/genres"))

	titles := v1.Group("/titles")
	cfg.Titles.RegisterRoutes(titles)

	reviews := titles.Group("/:title_id/reviews")
	cfg.Reviews.RegisterRoutes(reviews)

	comments := reviews.Group("/:review_id/comments")
	cfg.Comments.RegisterRoutes(comments)

	return r
}
