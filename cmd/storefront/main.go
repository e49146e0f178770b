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

	"github.com/kookie-shop/storefront/internal/cache"
	"github.com/kookie-shop/storefront/internal/config"
	h "github.com/kookie-shop/storefront/internal/http"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/metrics"
	"github.com/kookie-shop/storefront/internal/observability"
	"github.com/kookie-shop/storefront/internal/publisher"
	"github.com/kookie-shop/storefront/internal/repository"
	"github.com/kookie-shop/storefront/internal/service"
	"github.com/kookie-shop/storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, log, cfg.ServiceName, cfg.TracingExporter)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	repo, err := repository.NewRepository(&repository.Credentials{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database ready", "driver", cfg.DBDriver)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis ping succeeded", "addr", cfg.RedisAddr)

	serverMetrics := metrics.NewServerMetrics()
	products := cache.NewCachedProducts(repo, cache.NewRedisCache(redisClient, cfg.ProductTTL), log)
	sessions := session.NewResolver(session.NewRedisStore(redisClient, cfg.SessionTTL))

	router := h.NewRouter(h.RouterDeps{
		Cart:     service.NewCartService(repo, products, log),
		Checkout: service.NewCheckoutService(repo, log, serverMetrics),
		Orders:   service.NewOrderService(repo, log),
		Auth:     service.NewAuthService(repo, service.NewMergeService(repo, log), sessions, log),
		Sessions: sessions,
		DB:       repo,
		Metrics:  serverMetrics,
		Log:      log,
		Cookie: h.CookieConfig{
			Name:   "sid",
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
		},
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxRequestBodySize,
		AdminAPIKey:    cfg.AdminAPIKey,
		ServiceName:    cfg.ServiceName,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, log, cfg.OutboxTopic, cfg.OutboxTick, cfg.KafkaBrokers...)
		g.Go(func() error {
			return poller.Run(gctx)
		})
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
