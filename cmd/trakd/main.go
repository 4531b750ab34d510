package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pythagonacci/trak/pkg/actions/memory"
	"github.com/pythagonacci/trak/pkg/api"
	"github.com/pythagonacci/trak/pkg/catalog"
	"github.com/pythagonacci/trak/pkg/config"
	"github.com/pythagonacci/trak/pkg/engine"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		logger.Error("trakd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flagSet := flag.NewFlagSet("trakd", flag.ContinueOnError)
	configPath := flagSet.String("config", "", "Path to configuration file")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	mode := ""
	if remaining := flagSet.Args(); len(remaining) > 0 {
		mode = remaining[0]
	}

	if mode == "tools" {
		return cmdTools()
	}

	return cmdServe(ctx, *configPath)
}

// cmdTools prints the operation catalog as JSON.
func cmdTools() error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(catalog.Default().List())
}

func cmdServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	store := memory.NewStore()
	cat := catalog.Default()
	eng := engine.New(store, cat,
		engine.WithLogger(logger),
		engine.WithPageSize(cfg.Workspace.PageSize),
	)

	apiCfg := api.Config{Enable: cfg.HTTP.Enable, Addr: cfg.HTTP.Addr, APIKey: cfg.HTTP.APIKey}
	server := api.NewServer(apiCfg, eng, cat, cfg.Workspace.ID, logger)

	logger.Info("trakd listening", "addr", cfg.HTTP.Addr, "workspace", cfg.Workspace.ID, "operations", len(cat.Names()))
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("trakd stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
