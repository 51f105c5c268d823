package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sdas-dev/accountly/internal/api"
	"github.com/sdas-dev/accountly/internal/api/handlers"
	"github.com/sdas-dev/accountly/internal/auth"
	"github.com/sdas-dev/accountly/internal/blob"
	"github.com/sdas-dev/accountly/internal/config"
	"github.com/sdas-dev/accountly/internal/service"
	"github.com/sdas-dev/accountly/internal/store"
)

// @title Accountly API
// @version 1.0
// @description User account service: registration, login, profile, and admin user management.
// @BasePath /
func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := store.Connect(cfg.DBURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	userStore := store.NewGormUserStore(db)

	var cache store.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = store.NewRedisCache(rdb)
	} else {
		logrus.Warn("REDIS_ADDR not set, caching disabled")
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	svc := service.NewAccountService(userStore, cache, hasher, issuer, logrus.StandardLogger())

	blobClient := blob.New(cfg.Blob)
	h := handlers.New(svc, blobClient, cfg, logrus.StandardLogger())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(h, issuer, cfg.CorsConfig),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("Starting account service on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
