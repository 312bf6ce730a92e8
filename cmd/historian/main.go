// cmd/historian/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/cache"
	"github.com/wildstack/server/internal/database"
	"github.com/wildstack/server/internal/historian"
)

func main() {
	logger := logrus.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := cache.Connect(ctx)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer queue.Close()

	db, err := database.Connect(ctx)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	svc := historian.New(logger, queue, db, historian.Config{
		BatchSize:  envInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay: time.Duration(envInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	})
	svc.Run(ctx)
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
