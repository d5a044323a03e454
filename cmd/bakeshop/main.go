// Package main запускает HTTP-сервер пекарни.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/config"
	"github.com/mmeshcher/bakeshop-system/internal/handler"
	"github.com/mmeshcher/bakeshop-system/internal/middleware"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
	"github.com/mmeshcher/bakeshop-system/internal/service"
)

const sessionTTL = 24 * time.Hour

const (
	ownerEmail    = "owner@bakeshop.local"
	ownerFullName = "Shop Owner"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	svc := service.NewService(repo)
	defer svc.Close()

	// Без учётной записи владельца разделы каталога недоступны.
	if err := svc.SeedOwner(context.Background(), cfg.OwnerUsername, ownerEmail, ownerFullName, cfg.OwnerPassword); err != nil {
		sugar.Fatalw("owner seeding error", "error", err.Error())
	}

	sessions := auth.NewSessions(cfg.SessionSecret, sessionTTL)
	sessionMiddleware := middleware.NewSessionMiddleware(sessions, svc)
	visitorMiddleware := middleware.NewVisitorMiddleware(cfg.SessionSecret)

	middleware.InitMetrics()

	h := handler.NewHandler(svc, logger, sessionMiddleware, visitorMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting bakeshop server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
