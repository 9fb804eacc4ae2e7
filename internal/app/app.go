package app

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/postlane/postlane/internal/config"
	"github.com/postlane/postlane/internal/db"
	"github.com/postlane/postlane/internal/middleware"
	"github.com/postlane/postlane/internal/password"
	"github.com/postlane/postlane/internal/repository"
	"github.com/postlane/postlane/internal/service"
	"github.com/postlane/postlane/internal/token"
)

// App wires config, database, repositories and services together.
type App struct {
	Cfg          *config.Config
	DB           *mongo.Database
	Auth         *middleware.Auth
	AuthService  *service.AuthService
	UserService  *service.UserService
	PostService  *service.PostService
	EmailService *service.EmailService
	Sweeper      *service.Sweeper
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Init(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	actionTokenRepository := repository.NewActionTokenRepository(database)
	oldPasswordRepository := repository.NewOldPasswordRepository(database)
	postRepository := repository.NewPostRepository(database)

	// Token codec, one secret+TTL per kind
	codec := token.NewCodec(map[token.Kind]token.KindConfig{
		token.KindAccess:         {Secret: []byte(cfg.AccessSecret), TTL: cfg.AccessExpiry},
		token.KindRefresh:        {Secret: []byte(cfg.RefreshSecret), TTL: cfg.RefreshExpiry},
		token.KindForgotPassword: {Secret: []byte(cfg.ForgotSecret), TTL: cfg.ForgotExpiry},
		token.KindVerifyEmail:    {Secret: []byte(cfg.VerifyEmailSecret), TTL: cfg.VerifyEmailExpiry},
		token.KindAccountRestore: {Secret: []byte(cfg.RestoreSecret), TTL: cfg.RestoreExpiry},
	})

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	hasher := password.NewHasher()
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		actionTokenRepository,
		oldPasswordRepository,
		hasher,
		codec,
		emailService,
	)
	userService := service.NewUserService(userRepository, sessionRepository, actionTokenRepository)
	postService := service.NewPostService(postRepository, userRepository)

	sweeper := service.NewSweeper(
		service.SweeperConfig{
			Interval:          cfg.SweepInterval,
			RefreshExpiry:     cfg.RefreshExpiry,
			ForgotExpiry:      cfg.ForgotExpiry,
			VerifyEmailExpiry: cfg.VerifyEmailExpiry,
			RestoreExpiry:     cfg.RestoreExpiry,
			OldPasswordExpiry: cfg.OldPasswordExpiry,
			OldVisitAfter:     cfg.OldVisitAfter,
		},
		sessionRepository,
		actionTokenRepository,
		oldPasswordRepository,
		userRepository,
		emailService,
	)

	return &App{
		Cfg:          cfg,
		DB:           database,
		Auth:         middleware.NewAuth(codec, sessionRepository, actionTokenRepository),
		AuthService:  authService,
		UserService:  userService,
		PostService:  postService,
		EmailService: emailService,
		Sweeper:      sweeper,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
