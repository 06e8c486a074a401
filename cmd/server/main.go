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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"agrocert/internal/app"
	"agrocert/internal/platform/config"
	"agrocert/internal/platform/httpserver"
	"agrocert/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "agrocert:", err)
		os.Exit(1)
	}
}

// run serves the wired application until SIGINT or SIGTERM.
func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.Demo != nil {
		log.Info("demo reference data loaded", "productor", a.Demo.ProductorCodigo, "comunidad", a.Demo.ComunidadID.String())
	}

	srv := httpserver.New(cfg.Addr, a.Router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting agrocert", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, log)
	})
	return g.Wait()
}

func shutdown(srv *http.Server, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
