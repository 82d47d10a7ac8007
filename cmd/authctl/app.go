package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-auth/internal/auth"
	"github.com/redmonkez12/go-blog-auth/internal/config"
	"github.com/redmonkez12/go-blog-auth/internal/database"
	"github.com/redmonkez12/go-blog-auth/internal/email"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
	"github.com/redmonkez12/go-blog-auth/internal/token"
	"github.com/redmonkez12/go-blog-auth/internal/user"
)

// app holds the stores behind the auth service for a single command
type app struct {
	service *auth.Service
	db      *bun.DB
	redis   *redis.Client
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient, err := token.Connect(ctx, cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := token.NewRedisStore(redisClient)
	service := auth.NewService(
		user.NewRepository(db),
		user.NewKeyRepository(db),
		token.NewSignUpTokenRepository(store, cfg.Tokens.SignUpTTL),
		token.NewPasswordTokenRepository(store, cfg.Tokens.PasswordTTL),
		auth.NewArgon2idHasher(),
		email.NewService(cfg.Email),
		nil, // no metrics endpoint for one-shot commands
		logger,
	)

	return &app{service: service, db: db, redis: redisClient}, nil
}

func (a *app) Close() {
	a.redis.Close()
	a.db.Close()
}
