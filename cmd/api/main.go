package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travel-planner/internal/config"
	"travel-planner/internal/db"
	"travel-planner/internal/email"
	apihttp "travel-planner/internal/http"
	"travel-planner/internal/overpass"
	"travel-planner/internal/repository"
	"travel-planner/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	checks := map[string]apihttp.HealthCheck{
		"database": func(ctx context.Context) error { return db.Ping(ctx, pool) },
	}

	sessions := service.NewMemorySessionStore()
	loginLimiter := service.NewMemoryRateLimiter(cfg.LoginRateWindow, cfg.LoginRateLimit)
	resetLimiter := service.NewMemoryRateLimiter(cfg.LoginRateWindow, cfg.LoginRateLimit)
	spotCache := service.NewMemorySpotCache()

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			sessions = service.NewRedisSessionStore(redisClient)
			loginLimiter = service.NewRedisRateLimiter(redisClient, "ratelimit:login:", cfg.LoginRateWindow, cfg.LoginRateLimit)
			resetLimiter = service.NewRedisRateLimiter(redisClient, "ratelimit:reset:", cfg.LoginRateWindow, cfg.LoginRateLimit)
			spotCache = service.NewRedisSpotCache(redisClient)
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	userRepo := repository.NewPgUserRepository(pool)
	resetRepo := repository.NewPgResetTokenRepository(pool)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)

	resilientCfg := overpass.DefaultResilientConfig()
	resilientCfg.Logger = logger
	overpassClient := overpass.NewResilientClient(
		overpass.NewHTTPClient(cfg.OverpassURL, cfg.OverpassTimeout, logger),
		resilientCfg,
	)

	userSvc := service.NewUserService(logger, userRepo, hasher)
	authSvc := service.NewAuthService(logger, userRepo, hasher, sessions, service.NewSessionTokenSigner(cfg.SessionSecret), loginLimiter, service.AuthConfig{
		SessionTTL: cfg.SessionTTL,
	})
	resetSvc := service.NewPasswordResetService(logger, userRepo, resetRepo, hasher, sessions, emailSender, resetLimiter, service.PasswordResetConfig{
		BaseURL:  cfg.AppBaseURL,
		TokenTTL: cfg.ResetTokenTTL,
	})
	spotSvc := service.NewSpotService(logger, overpassClient, spotCache, cfg.OverpassCacheTTL)

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			CookieName:     cfg.SessionCookieName,
			ForceHTTPS:     cfg.ForceHTTPS,
		},
		authSvc,
		apihttp.NewUserHandler(logger, userSvc, authSvc, apihttp.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
		}),
		apihttp.NewPasswordHandler(logger, resetSvc),
		apihttp.NewSpotHandler(logger, spotSvc, service.NewSpotCatalog(cfg.SpotsFile)),
		apihttp.NewHealthHandler(logger, checks),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
