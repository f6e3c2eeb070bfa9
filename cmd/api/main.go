package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ginkit/internal/audit"
	"ginkit/internal/auth"
	"ginkit/internal/config"
	"ginkit/internal/database"
	"ginkit/internal/dblog"
	"ginkit/internal/logger"
	"ginkit/internal/metrics"
	"ginkit/internal/router"
	"ginkit/internal/services"
)

// @title           ginkit API
// @version         1.0
// @description     Customer and order API with an entity audit trail and token authentication.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	recorder, err := newRecorder(cfg.Audit)
	if err != nil {
		return fmt.Errorf("failed to configure audit recorder: %w", err)
	}

	dbManager, err := database.NewManager(cfg.DB, recorder)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	if cfg.Log.ToDB && !dbLogSupported(cfg.DB.Driver) {
		log.Warnf("LOG_TO_DB ignored: the %s driver runs on a single connection", cfg.DB.Driver)
	} else if cfg.Log.ToDB {
		logger.Attach(dblog.NewCore(db,
			dblog.WithLevel(cfg.Log.DBLevel),
			dblog.WithLoggerFilter(cfg.Log.Loggers...),
		))
		log = logger.Get()
	}

	metrics.Init()

	users := services.NewUserService(db)
	issuer, err := auth.NewIssuer(auth.Options{
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
		SigningKey:        []byte(cfg.JWT.Secret),
		SigningMethod:     cfg.JWT.SigningMethod,
		Expiration:        cfg.JWT.ExpiresIn,
		AllowInsecureHTTP: cfg.JWT.AllowInsecureHTTP,
		ResolveIdentity:   services.NewIdentityResolver(users),
		AugmentClaims:     services.NewClaimsAugmenter(users),
	})
	if err != nil {
		return fmt.Errorf("failed to configure token issuer: %w", err)
	}

	if cfg.Log.ToDB && cfg.Log.Retention > 0 {
		pruner := dblog.NewPruner(db, cfg.Log.Retention)
		if err := pruner.Start(cfg.Log.PruneSchedule); err != nil {
			return err
		}
		defer func() { <-pruner.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(router.Deps{Config: cfg, DB: db, Issuer: issuer}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting ginkit server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newRecorder builds the audit recorder from the configured allow-lists.
func newRecorder(cfg config.Audit) (*audit.Recorder, error) {
	recorder := audit.NewRecorder()
	lists := map[audit.ActionKind][]string{
		audit.ActionCreate: cfg.CreateTypes,
		audit.ActionUpdate: cfg.UpdateTypes,
		audit.ActionDelete: cfg.DeleteTypes,
	}
	for action, types := range lists {
		if len(types) == 0 {
			continue
		}
		if err := recorder.RegisterTypes(action, types...); err != nil {
			return nil, err
		}
	}
	return recorder, nil
}

// dbLogSupported reports whether log records can be written through driver.
// sqlite holds one connection, so a log call made inside an open transaction
// would wait on that transaction forever.
func dbLogSupported(driver string) bool {
	return driver != "sqlite"
}
