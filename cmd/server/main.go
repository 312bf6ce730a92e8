// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/auth"
	"github.com/wildstack/server/internal/cache"
	"github.com/wildstack/server/internal/database"
	"github.com/wildstack/server/internal/handlers"
	"github.com/wildstack/server/internal/middleware"
)

func main() {
	logger := logrus.New()
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	keyring, err := auth.NewKeyring(tokenTTL(logger))
	if err != nil {
		logger.Fatalf("keyring init: %v", err)
	}

	ctx := context.Background()

	// Postgres and Redis are both optional. Without them the server still
	// hosts guest rooms and games; accounts and history are simply off.
	var db *database.Store
	if os.Getenv("PG_HOST") != "" {
		db, err = database.Connect(ctx)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatalf("schema: %v", err)
		}
	} else {
		logger.Info("PG_HOST unset, running without accounts or results")
	}

	var history *cache.Queue
	if os.Getenv("REDIS_ADDR") != "" {
		history, err = cache.Connect(ctx)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer history.Close()
	} else {
		logger.Info("REDIS_ADDR unset, running without action history")
	}

	srv := handlers.NewServer(logger, keyring, db, history)

	logged := middleware.Logging(logger)
	mux := http.NewServeMux()
	mux.Handle("/user/create", logged(http.HandlerFunc(srv.CreateUserHandler)))
	mux.Handle("/user/login", logged(http.HandlerFunc(srv.LoginHandler)))
	mux.Handle("/room/create", logged(http.HandlerFunc(srv.CreateRoomHandler)))
	mux.Handle("/room/list", logged(http.HandlerFunc(srv.ListRoomsHandler)))
	// The WS route skips the access-log wrapper: the wrapper's recorder
	// hides http.Hijacker from the upgrade.
	mux.HandleFunc("/room/ws/", srv.RoomWSHandler)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}

// tokenTTL parses TOKEN_EXPIRE_TIME ("72h", "never", empty means never).
func tokenTTL(logger *logrus.Logger) time.Duration {
	v := os.Getenv("TOKEN_EXPIRE_TIME")
	if v == "" || v == "never" || v == "0" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Fatalf("parse TOKEN_EXPIRE_TIME: %v", err)
	}
	return d
}
