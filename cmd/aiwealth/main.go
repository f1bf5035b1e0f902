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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"aiwealth/internal/advisor"
	"aiwealth/internal/chat"
	"aiwealth/internal/config"
	"aiwealth/internal/events"
	apphttp "aiwealth/internal/http"
	applog "aiwealth/internal/log"
	"aiwealth/internal/services"
	"aiwealth/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := applog.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Database ready", "path", cfg.DBPath)

	var pub services.Publisher
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		pub = amqpPub
		logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Event publishing disabled")
	}

	var adv *advisor.Advisor
	if cfg.GeminiAPIKey != "" {
		adv, err = advisor.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		logger.Info("Gemini advisor enabled", "model", cfg.GeminiModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant runs in limited mode")
	}

	sessions := chat.NewSessionStore(cfg.SessionTTL)
	defer sessions.Stop()

	ledger := services.NewLedger(store, pub)
	reports := services.NewReports(store)
	goals := services.NewGoals(store)
	notifications := services.NewNotifications(store)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, reports, goals, notifications, adv, sessions)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting aiwealth server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}
