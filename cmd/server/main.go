package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/factuurly/signing-api/internal/config"
	"github.com/factuurly/signing-api/internal/db"
	"github.com/factuurly/signing-api/internal/logger"
	"github.com/factuurly/signing-api/internal/ratelimit"
	"github.com/factuurly/signing-api/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(log); err != nil {
			log.Error("migrate-only failed", "err", err)
			os.Exit(1)
		}
		log.Info("migrations completed; exiting as requested")
		return
	}

	dbConn, err := db.ConnectAndMigrate(log)
	if err != nil {
		log.Error("db connection failed", "err", err)
		os.Exit(1)
	}

	// Per-token signing budget: Redis when configured (required for more than
	// one instance), in-process counters otherwise.
	var limiter ratelimit.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Error("redis unreachable", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		cancel()
		limiter = ratelimit.NewRedisStore(client)
		log.Info("rate limiting via redis", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryStore()
		log.Warn("rate limiting in-process; configure REDIS_ADDR when scaling out")
	}

	handler := server.New(dbConn, limiter, log, server.Options{
		GlobalRPS:   cfg.GlobalRPS,
		GlobalBurst: cfg.GlobalBurst,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	log.Info("server gracefully stopped")
}
