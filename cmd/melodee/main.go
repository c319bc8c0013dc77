package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sphildreth/melodee/internal/config"
	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
	"github.com/sphildreth/melodee/internal/logger"
	"github.com/sphildreth/melodee/internal/modules/modulemanager"
	"github.com/sphildreth/melodee/internal/server"

	// Modules register themselves on import.
	_ "github.com/sphildreth/melodee/internal/modules/librarymodule"
	_ "github.com/sphildreth/melodee/internal/modules/scannermodule"
	_ "github.com/sphildreth/melodee/internal/modules/settingsmodule"
	_ "github.com/sphildreth/melodee/internal/modules/usermodule"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	bus := events.NewBus()
	events.SetGlobalEventBus(bus)
	defer bus.Shutdown()

	if err := database.Initialize(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := modulemanager.LoadAll(database.GetDB()); err != nil {
		return fmt.Errorf("modules: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Melodee listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	modulemanager.ShutdownAll(ctx)
	return srv.Shutdown(ctx)
}
