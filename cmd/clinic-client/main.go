package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/chat"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/clinicapi"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/config"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/notify"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/observability/metrics"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/push"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/session"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/status"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic client",
		"env", cfg.Env,
		"api", cfg.APIBaseURL,
		"push", cfg.PushURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable local state: Redis when reachable, memory otherwise
	var st store.Store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, state will not survive restarts", "addr", cfg.RedisAddr, "error", err)
		st = store.NewMemoryStore()
	} else {
		st = store.NewRedisStore(redisClient, nil)
	}

	sess, err := session.New(ctx, st)
	if err != nil {
		logger.Error("failed to initialize session", "error", err)
		os.Exit(1)
	}

	apiClient, err := clinicapi.New(clinicapi.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
	}, sess)
	if err != nil {
		logger.Error("failed to build API client", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	clientMetrics := metrics.NewClientMetrics(registry)

	// Notification surfaces
	policy := notify.NewPolicy(cfg.ErrorThrottleWindow)
	sink := notify.NewSilentSink(ctx, st, logger)
	center := notify.NewCenter(ctx, st, policy, sink, cfg.NotificationAutoDismiss, logger, clientMetrics)

	// Push transport and channels
	connector := push.NewConnector(cfg.PushURL, sess, logger, clientMetrics)
	connector.Subscribe(push.TopicPublicNotifications, center.HandleInbound)
	connector.Subscribe(push.QueuePrivateNotifications, center.HandleInbound)
	chatSvc := chat.NewService(apiClient, connector, sess, logger)

	// Connect when a stored token already identifies the user; otherwise
	// the first login triggers the connect.
	if _, ok := sess.CurrentUser(); ok {
		if err := connector.Connect(ctx); err != nil {
			logger.Warn("initial connect failed, continuing with REST only", "error", err)
		}
	} else {
		logger.Info("no stored token, push transport stays down until login")
	}

	go chatSvc.RunUnreadRefresher(ctx, cfg.UnreadRefreshInterval)

	// Local status surface for presentation adapters
	handler := status.New(status.Config{
		Connection: connector,
		Center:     center,
		Silent:     sink,
		Chat:       chatSvc,
		Logger:     logger,
		Registry:   registry,
	})
	srv := &http.Server{
		Addr:         cfg.StatusAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("status server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("status server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to shut down cleanly
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	cancel()

	if err := connector.Disconnect(); err != nil {
		logger.Warn("transport teardown", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("status server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped")
}
