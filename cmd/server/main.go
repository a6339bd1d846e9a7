// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authHandler "github.com/festy23/ctf_platform/internal/auth/handler"
	authRouter "github.com/festy23/ctf_platform/internal/auth/router"
	authService "github.com/festy23/ctf_platform/internal/auth/service"
	"github.com/festy23/ctf_platform/internal/auth/session"
	"github.com/festy23/ctf_platform/internal/auth/token"
	"github.com/festy23/ctf_platform/internal/config"
	"github.com/festy23/ctf_platform/internal/database/database"
	"github.com/festy23/ctf_platform/internal/database/migrate"
	"github.com/festy23/ctf_platform/internal/health"
	"github.com/festy23/ctf_platform/internal/mail"
	"github.com/festy23/ctf_platform/internal/middleware"
	problemHandler "github.com/festy23/ctf_platform/internal/problem/handler"
	problemRouter "github.com/festy23/ctf_platform/internal/problem/router"
	problemService "github.com/festy23/ctf_platform/internal/problem/service"
	"github.com/festy23/ctf_platform/internal/scoring/cache"
	scoringHandler "github.com/festy23/ctf_platform/internal/scoring/handler"
	scoringRepository "github.com/festy23/ctf_platform/internal/scoring/repository"
	scoringRouter "github.com/festy23/ctf_platform/internal/scoring/router"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	statisticsRouter "github.com/festy23/ctf_platform/internal/statistics/router"
	"github.com/festy23/ctf_platform/internal/storage"
	submissionHandler "github.com/festy23/ctf_platform/internal/submission/handler"
	submissionRouter "github.com/festy23/ctf_platform/internal/submission/router"
	submissionService "github.com/festy23/ctf_platform/internal/submission/service"
	teamHandler "github.com/festy23/ctf_platform/internal/team/handler"
	teamRouter "github.com/festy23/ctf_platform/internal/team/router"
	teamService "github.com/festy23/ctf_platform/internal/team/service"
	userHandler "github.com/festy23/ctf_platform/internal/user/handler"
	userRouter "github.com/festy23/ctf_platform/internal/user/router"
	userService "github.com/festy23/ctf_platform/internal/user/service"
	"github.com/festy23/ctf_platform/internal/validation"
	writeupHandler "github.com/festy23/ctf_platform/internal/writeup/handler"
	writeupRouter "github.com/festy23/ctf_platform/internal/writeup/router"
	writeupService "github.com/festy23/ctf_platform/internal/writeup/service"
	"github.com/festy23/ctf_platform/pkg/logger"
	"github.com/festy23/ctf_platform/pkg/retry"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatalw("server stopped with error", "error", err)
	}
}

func run(cfg config.Config, appLogger *zap.SugaredLogger) error {
	gin.SetMode(cfg.GinMode)
	validation.MustRegister()

	db, err := database.New(logger.Named(appLogger, "database"))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLogger.Warnw("failed to close database", "error", err)
		}
	}()

	if err := migrate.Migrate(db, logger.Named(appLogger, "migrate")); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer func() { _ = rdb.Close() }()

	redisRetry := retry.RedisConfig()
	redisRetry.OnRetry = func(attempt int, err error, delay time.Duration) {
		appLogger.Warnw("redis not ready, retrying", "attempt", attempt, "delay", delay, "error", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err = retry.Do(pingCtx, redisRetry, func() error {
		return rdb.Ping(pingCtx).Err()
	})
	cancel()
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	store, err := storage.NewLocal(cfg.Storage.UploadDir, logger.Named(appLogger, "storage"))
	if err != nil {
		return fmt.Errorf("open upload storage: %w", err)
	}

	// Scoring
	scoringLogger := logger.Named(appLogger, "scoring")
	engine := scoring.NewEngine(db, cfg.Scoring.RankMode, scoringLogger)
	leaderboard := scoring.NewLeaderboard(
		scoringRepository.New(db, scoringLogger),
		cache.NewRedis(rdb, scoringLogger),
		cfg.Scoring.LeaderboardTTL,
		scoringLogger,
	)

	// Auth
	authLogger := logger.Named(appLogger, "auth")
	authSvc := authService.New(authService.Deps{
		DB:          db,
		Engine:      engine,
		Leaderboard: leaderboard,
		Tokens:      token.NewIssuer(cfg.Auth.JWTSecret),
		Sessions:    session.NewStore(rdb),
		Throttle:    session.NewThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginForbidTime),
		Mailer:      mail.New(cfg.Mail, logger.Named(appLogger, "mail")),
	}, authService.Options{
		SessionTTL:  cfg.Auth.SessionTTL,
		ConfirmTTL:  cfg.Auth.ConfirmTTL,
		MailTimeout: cfg.Mail.Timeout,
		PublicURL:   cfg.PublicURL,
	}, authLogger)

	auth := middleware.NewAuth(authSvc, cfg.Auth.CookieName, authLogger)
	cookie := middleware.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}

	// Domain services
	teamSvc := teamService.New(db, engine, leaderboard, logger.Named(appLogger, "team"))
	userSvc := userService.New(userService.Deps{
		DB:          db,
		Engine:      engine,
		Leaderboard: leaderboard,
		Teams:       teamSvc,
		Confirmer:   authSvc,
		Sessions:    authSvc,
	}, logger.Named(appLogger, "user"))
	problemSvc := problemService.New(db, store, cfg.PublicURL, logger.Named(appLogger, "problem"))
	submissionSvc := submissionService.New(db, engine, leaderboard, logger.Named(appLogger, "submission"))
	writeupSvc := writeupService.New(db, logger.Named(appLogger, "writeup"))

	// Router
	r := gin.New()
	r.Use(middleware.Recovery(appLogger))
	r.Use(middleware.Logger(logger.Named(appLogger, "http")))
	r.Use(middleware.BodyLimit(cfg.Storage.MaxUploadSize))
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	r.GET("/health", health.New(db, rdb, logger.Named(appLogger, "health")).Check)

	authRouter.RegisterRoutes(r, authHandler.New(authSvc, cookie, authLogger), auth)
	userRouter.RegisterRoutes(r, userHandler.New(userSvc, cookie, logger.Named(appLogger, "user")), auth)
	teamRouter.RegisterRoutes(r, teamHandler.New(teamSvc, logger.Named(appLogger, "team")), auth)
	problemRouter.RegisterRoutes(r, problemHandler.New(problemSvc, logger.Named(appLogger, "problem")), auth)
	submissionRouter.RegisterRoutes(r, submissionHandler.New(submissionSvc, logger.Named(appLogger, "submission")), auth)
	writeupRouter.RegisterRoutes(r, writeupHandler.New(writeupSvc, logger.Named(appLogger, "writeup")), auth)
	scoringRouter.RegisterRoutes(r, scoringHandler.New(leaderboard, scoringLogger), auth)
	statisticsRouter.RegisterRoutes(r, db, auth, logger.Named(appLogger, "statistics"))

	if cfg.Auth.AdminName != "" {
		adminCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authSvc.EnsureAdmin(adminCtx, cfg.Auth.AdminName, cfg.Auth.AdminPassword)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure admin account: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Infow("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		appLogger.Infow("shutting down server", "signal", sig.String())
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	appLogger.Info("server stopped")
	return nil
}
