package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/auth"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/config"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/database"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/logs"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/post"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/server"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/storage"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/user"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/utils"
)

func fatal(message string, err error) {
	logs.LogJSON("FATAL", message, map[string]interface{}{"error": err.Error()})
	os.Exit(1)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("Invalid configuration", err)
	}

	ctx, shutdown := utils.NewShutdownManager(context.Background(), 15*time.Second)

	db, err := database.Connect(cfg.DBUrl)
	if err != nil {
		fatal("Database connection failed", err)
	}
	shutdown.Register(func(context.Context) error {
		return database.Close(db)
	})

	if err := database.Migrate(db); err != nil {
		fatal("Database migration failed", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fatal("Media store initialisation failed", err)
	}

	posts := post.NewService(db, store, post.WithStorageTimeout(cfg.Storage.Timeout))

	router := server.NewRouter(server.Options{
		JWTSecret:      cfg.JWTSecret,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, server.Handlers{
		Auth:  auth.NewHandler(auth.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey), db),
		Users: user.NewHandler(db),
		Posts: post.NewHandler(posts),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdown.Register(srv.Shutdown)

	go func() {
		logs.LogJSON("INFO", "Server listening", map[string]interface{}{
			"addr":    srv.Addr,
			"storage": cfg.Storage.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server stopped", err)
		}
	}()

	shutdown.Wait(ctx)
}
