package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/haveebot/agentpoker/internal/registry"
	"github.com/haveebot/agentpoker/internal/server"
)

type ServeCmd struct {
	Config   string `short:"c" default:"agentpoker.hcl" help:"Path to HCL configuration file"`
	LogLevel string `help:"Log level override (debug, info, warn, error)"`
	Monitor  bool   `short:"m" help:"Print a live account of table events to stdout"`
}

func (cmd *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.LogLevel != "" {
		cfg.Server.LogLevel = cmd.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Server.LogLevel, err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	reg := registry.New(logger, quartz.NewReal(), seed)
	for _, tc := range cfg.Tables {
		tbl, err := reg.CreateTable(tc.GameConfig())
		if err != nil {
			return fmt.Errorf("table %s: %w", tc.Name, err)
		}
		logger.Info("table open", "name", tc.Name, "id", tbl.ID(),
			"blinds", fmt.Sprintf("%d/%d", tc.SmallBlind, tc.BigBlind))

		if cmd.Monitor {
			tbl.Subscribe(server.NewConsoleMonitor(os.Stdout).HandleEvent)
		}
	}

	srv := server.NewServer(cfg.ListenAddress(), logger, reg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig)
		return srv.Stop()
	}
}
