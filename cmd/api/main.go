package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/config"
	"taskhub/internal/pkg/logger"
	"taskhub/internal/pkg/manifest"
)

func main() {
	cfg := config.LoadOrDefault()
	log := logger.NewDefault(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := api.NewServer(ctx, cfg, log)
	if err != nil {
		log.Error("server init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer server.Close()

	// 启动时按清单晋升管理员，清单缺失不阻塞启动
	promoted, err := server.PromoteAdminsFromManifest(ctx)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			log.Info("admin manifest not found, skip bootstrap",
				slog.String("path", cfg.App.AdminManifestPath))
		} else {
			log.Error("admin bootstrap failed", slog.Any("error", err))
			os.Exit(1)
		}
	} else if promoted > 0 {
		log.Info("admin bootstrap done", slog.Int("promoted", promoted))
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: server.Router(),
	}

	go func() {
		log.Info("api server listening", slog.String("addr", cfg.App.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
