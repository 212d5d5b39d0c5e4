// Command server runs the ancient DNA sample API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"

	"ancientdna/internal/adapters/httpapi"
	"ancientdna/internal/blob"
	"ancientdna/internal/config"
	"ancientdna/internal/core"
	"ancientdna/internal/genai"
	"ancientdna/internal/infra/persistence"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		charmlog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "listen address")
	flag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "ancientdna",
	})

	store, err := persistence.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	logger.Info("storage ready", "driver", storageDriver(cfg))

	serviceOpts := []core.Option{core.WithLogger(logger)}
	if cfg.GeminiAPIKey != "" {
		serviceOpts = append(serviceOpts, core.WithAnswerer(genai.NewClient(cfg.GeminiAPIKey)))
	} else {
		logger.Warn("GEMINI_API_KEY not set, model fallback for open questions is disabled")
	}
	service := core.NewService(store, serviceOpts...)

	apiOpts := []httpapi.Option{httpapi.WithLogger(logger)}
	if cfg.ArchiveEnabled() {
		archive, err := blob.Open(context.Background(), cfg.Blob)
		if err != nil {
			return err
		}
		apiOpts = append(apiOpts, httpapi.WithArchive(archive))
		logger.Info("upload archive ready", "driver", archive.Driver())
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.New(service, apiOpts...),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func storageDriver(cfg config.Config) string {
	if cfg.Storage.Driver == "" {
		return string(persistence.DriverMemory)
	}
	return cfg.Storage.Driver
}
