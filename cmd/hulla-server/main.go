package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"hulla/internal/auth"
	"hulla/internal/server"
	"hulla/internal/storage"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"hulla-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Database string `short:"d" long:"database" help:"SQLite database path (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Database != "" {
		cfg.Server.DatabasePath = CLI.Database
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.ListenAddr()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	store, err := storage.New(cfg.Server.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "path", cfg.Server.DatabasePath, "error", err)
		kctx.Exit(1)
	}
	defer store.Close()

	coordinator := server.NewCoordinator(cfg, logger, quartz.NewReal(), store)
	wsServer := server.NewServer(addr, coordinator, logger)
	if cfg.Auth != nil && cfg.Auth.URL != "" {
		wsServer.SetAuth(auth.NewHTTPValidator(cfg.Auth.URL, cfg.Auth.AdminSecret), cfg.Auth.FailOpen)
		logger.Info("External auth enabled", "url", cfg.Auth.URL, "failOpen", cfg.Auth.FailOpen)
	}

	logger.Info("Starting hulla server",
		"addr", addr,
		"db", cfg.Server.DatabasePath,
		"maxRounds", cfg.Rooms.MaxRounds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsServer.Start()
	})
	g.Go(func() error {
		err := coordinator.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		return wsServer.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		kctx.Exit(1)
	}
}
