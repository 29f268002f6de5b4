package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"evalia/internal/chatbot"
	"evalia/internal/config"
	"evalia/internal/dashboard"
	"evalia/internal/health"
	"evalia/internal/interview"
	"evalia/internal/interviewer"
	"evalia/internal/metrics"
	"evalia/internal/observe"
	"evalia/internal/web"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("evalia exited with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(observe.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	met := metrics.NewNoop()
	if cfg.Telemetry.Enabled {
		tel, err := observe.Setup(ctx, observe.ProviderConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
		})
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := tel.Shutdown(sctx); err != nil {
				slog.Warn("telemetry shutdown", "err", err)
			}
		}()
		if met, err = metrics.New(tel.Meters); err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	policy := resiliencePolicy(cfg.Resilience)

	llm, err := buildLLM(ctx, cfg.LLM, policy, met)
	if err != nil {
		return err
	}
	transcriber, err := buildTranscriber(cfg.Speech, policy, met)
	if err != nil {
		return err
	}
	store, checkers, closeStore, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()
	publisher, pubCheck, closePublisher, err := buildPublisher(cfg.Notify)
	if err != nil {
		return err
	}
	defer closePublisher()
	if pubCheck != nil {
		checkers = append(checkers, *pubCheck)
	}
	checkers = append(checkers, health.Checker{
		Name: "llm",
		Check: func(context.Context) error {
			if !llm.Available() {
				return errors.New("every provider circuit is open")
			}
			return nil
		},
	})

	iv := interviewer.New(llm,
		interviewer.WithRecorder(met),
		interviewer.WithQuestionCount(cfg.Interview.QuestionsPerRound),
		interviewer.WithTechDifficulty(cfg.Interview.TechDifficulty),
	)
	machine := interview.NewMachine(interview.Deps{
		Interviewer:  iv,
		Transcriber:  transcriber,
		Store:        store,
		Publisher:    publisher,
		Recorder:     met,
		NewAssistant: func() *chatbot.Conversation { return chatbot.New(llm) },
	})

	sessions := web.NewRegistry(met)
	limiter := web.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	srv := web.New(machine, dashboard.New(llm, store, met), sessions, limiter, met, health.New(checkers...))

	go sessions.RunCleanup(ctx, cfg.Server.CleanupInterval, cfg.Server.SessionIdleTimeout, limiter.Prune)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("evalia started",
		"version", version,
		"addr", httpServer.Addr,
		"llm_providers", llm.Providers(),
		"questions_per_round", cfg.Interview.QuestionsPerRound,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
