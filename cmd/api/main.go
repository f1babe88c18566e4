package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/easysplit/internal/config"
	"github.com/MrJamesThe3rd/easysplit/internal/database"
	easysplitHttp "github.com/MrJamesThe3rd/easysplit/internal/http"
	menuHandler "github.com/MrJamesThe3rd/easysplit/internal/http/menu"
	splitHandler "github.com/MrJamesThe3rd/easysplit/internal/http/split"
	"github.com/MrJamesThe3rd/easysplit/internal/logging"
	"github.com/MrJamesThe3rd/easysplit/internal/menu"
	menuStore "github.com/MrJamesThe3rd/easysplit/internal/menu/store"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
	splitStore "github.com/MrJamesThe3rd/easysplit/internal/split/store"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.SetupWith(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(cfg.DB.Driver, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err, "driver", cfg.DB.Driver)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		menuService  = menu.NewService(menuStore.New(db))
		splitService = split.NewService(splitStore.New(db))
	)

	lookup := easysplitHttp.LookupLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	var (
		menuH  = menuHandler.NewHandler(menuService, splitService, lookup)
		splitH = splitHandler.NewHandler(splitService, lookup)
	)

	router := easysplitHttp.New(easysplitHttp.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}, menuH, splitH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "environment", cfg.App.Environment, "driver", cfg.DB.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
