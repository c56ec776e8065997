package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"voice-trading-bot/internal/engine"
	"voice-trading-bot/internal/engine/engineobs"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/server"
	"voice-trading-bot/internal/store"
	"voice-trading-bot/internal/trace"
	"voice-trading-bot/internal/tradelog"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	must(trace.Init())

	cfg, err := store.LoadConfig("config.yaml")
	if errors.Is(err, os.ErrNotExist) {
		cfg = store.Default()
		err = nil
	}
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			_ = tradelog.CompressOlder(n)
		}
	}

	deps, err := buildDeps(ctx, cfg)
	must(err)
	defer deps.close()

	eng := engineobs.Wrap(engine.New(cfg, deps.dir, deps.broker, deps.recorder))

	srv := server.New(server.Params{
		Engine:      eng,
		Transcriber: deps.transcriber,
		Recorder:    deps.recorder,
		Reload:      deps.reloadDirectory,
		Health:      deps.healthInfo,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Directory.RefreshMinutes > 0 {
		go deps.refreshLoop(ctx, time.Duration(cfg.Directory.RefreshMinutes)*time.Minute)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", cfg.Server.Addr, "mode", cfg.Mode)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down")
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "HTTP server failed", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = trace.Shutdown(shutdownCtx)
}
