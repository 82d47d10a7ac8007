package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/redmonkez12/go-blog-auth/docs" // Swagger docs (generated)
	"github.com/redmonkez12/go-blog-auth/internal/auth"
	"github.com/redmonkez12/go-blog-auth/internal/config"
	"github.com/redmonkez12/go-blog-auth/internal/database"
	"github.com/redmonkez12/go-blog-auth/internal/email"
	httpServer "github.com/redmonkez12/go-blog-auth/internal/http"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
	"github.com/redmonkez12/go-blog-auth/internal/ratelimit"
	"github.com/redmonkez12/go-blog-auth/internal/token"
	"github.com/redmonkez12/go-blog-auth/internal/user"
)

// @title           Blog Auth API
// @version         1.0
// @description     Pin-confirmed sign-up, password login, temporary-password reset and cookie sessions.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"session_format", cfg.Session.TokenFormat,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := token.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "postgres"),
	)
	metrics := auth.NewMetrics(registry)

	// Repositories
	tokenStore := token.NewRedisStore(redisClient)
	userRepo := user.NewRepository(db)
	keyRepo := user.NewKeyRepository(db)
	signUpTokens := token.NewSignUpTokenRepository(tokenStore, cfg.Tokens.SignUpTTL)
	passwordTokens := token.NewPasswordTokenRepository(tokenStore, cfg.Tokens.PasswordTTL)

	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit)
	emailService := email.NewService(cfg.Email)

	tokenService, err := auth.NewTokenService(cfg.Session.TokenFormat, cfg.Session.Key)
	if err != nil {
		return fmt.Errorf("failed to initialize session tokens: %w", err)
	}
	sessions := auth.NewCookieSessionManager(
		tokenService,
		cfg.Session.CookieName,
		cfg.Session.Duration,
		!cfg.Server.IsDevelopment(), // secure cookies outside dev
	)

	authService := auth.NewService(
		userRepo,
		keyRepo,
		signUpTokens,
		passwordTokens,
		auth.NewArgon2idHasher(),
		emailService,
		metrics,
		logger,
	)

	authHandler := auth.NewHandler(authService, sessions, rateLimiter)
	authMiddleware := auth.NewMiddleware(sessions)

	router := httpServer.NewRouter(
		cfg,
		authHandler,
		authMiddleware,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger,
	)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
