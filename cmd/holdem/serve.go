package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/feltworks/holdem/internal/config"
	"github.com/feltworks/holdem/internal/server"
)

// ServeCmd runs the WebSocket server from an HCL configuration file.
type ServeCmd struct {
	Config string `short:"c" default:"holdem.hcl" help:"Path to the HCL configuration file"`
	Debug  bool   `help:"Enable debug logging"`
}

func (c *ServeCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting holdem server",
		"addr", cfg.ListenAddress(), "tables", len(cfg.Tables), "bots", len(cfg.Bots))
	return srv.Run(ctx)
}

func setupLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
