package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeycumines/goapjobs/internal/command"
	"github.com/joeycumines/goapjobs/internal/config"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return err
	}

	logs, closer, err := command.SetupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logs.Logger)

	registry := command.NewRegistry()
	registry.Register(command.NewHelpCommand(registry))
	registry.Register(command.NewVersionCommand(version))
	registry.Register(command.NewConfigCommand(cfg, configPath))
	registry.Register(command.NewPlanCommand(cfg, logs))
	registry.Register(command.NewSimulateCommand(cfg, logs))
	registry.Register(command.NewStressCommand(cfg, logs))

	return registry.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
