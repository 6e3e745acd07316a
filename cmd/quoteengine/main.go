package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/solana-zh/dlmm-quote-engine/internal/httpapi"
	"github.com/solana-zh/dlmm-quote-engine/pkg/config"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := config.Load()

	redisOpts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	quoteStore := store.NewRedisStore(redisClient, cfg.RedisRPS, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := quoteStore.Ping(ctx); err != nil {
		log.Warnw("redis not reachable at startup, continuing anyway", "error", err)
	}
	cancel()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := httpapi.NewServer(addr, quoteStore, cfg, log)

	go func() {
		log.Infow("quote engine listening", "addr", addr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Infow("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
