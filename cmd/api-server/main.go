package main

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"reviewhub/database"
	"reviewhub/internal/auth"
	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/handler"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/httpapi/service"
	"reviewhub/internal/mailer"
	"reviewhub/internal/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logg, err := logger.New(cfg.GoEnv)
	if err != nil {
		log.Fatalf("could not init logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.ConnectDB(cfg, logg)
	if err != nil {
		logg.Fatal("could not connect to database", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	codes := auth.NewCodeGenerator(cfg.ConfirmationSecret)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	} else {
		mail = mailer.NewLog(logg)
	}

	var authLimiter middleware.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logg.Fatal("could not parse redis url", "error", err)
		}
		authLimiter = middleware.NewRedisLimiter(redis.NewClient(opts), cfg.AuthRateLimit, cfg.AuthRateWindow)
	} else {
		authLimiter = middleware.NewLocalLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	authService := service.NewAuthService(userRepo, codes, tokens, mail, logg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	r := handler.NewRouter(handler.RouterConfig{
		Logger:      logg,
		CORSOrigins: cfg.CORSOrigins,
		Tokens:      tokens,
		AuthLimiter: authLimiter,
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserHandler(userService),
		Categories:  handler.NewCategoryHandler(categoryService),
		Genres:      handler.NewGenreHandler(genreService),
		Titles:      handler.NewTitleHandler(titleService),
		Reviews:     handler.NewReviewHandler(reviewService),
		Comments:    handler.NewCommentHandler(commentService),
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logg.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		logg.Fatal("server exited", "error", err)
	}
}
