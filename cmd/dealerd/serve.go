package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dealerd/dealerd/internal/advisor"
	"github.com/dealerd/dealerd/internal/game"
	"github.com/dealerd/dealerd/internal/ledger"
	"github.com/dealerd/dealerd/internal/server"
)

// ServeCmd runs the blackjack server
type ServeCmd struct {
	Config string `kong:"default='dealerd.hcl',help='Path to HCL config file'"`
	Addr   string `kong:"help='Server address, overrides the config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ServeCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	bal := ledger.New(cfg.Ledger.Path, cfg.Ledger.HouseBalance, logger)
	if err := bal.Load(); err != nil {
		return fmt.Errorf("load balances: %w", err)
	}

	advisorCfg := cfg.AdvisorConfig()
	if advisorCfg.APIKey == "" {
		logger.Warn("No advisor API key set, house decisions will fall back",
			"env", cfg.Advisor.APIKeyEnv)
	}
	policy := advisor.NewPolicy(advisor.NewOpenAI(advisorCfg, logger), logger)

	srv := server.NewServer(addr, logger)
	messenger := server.NewRoomMessenger(srv, logger)
	registry := game.NewRegistry(cfg.GameConfig(), messenger, policy, bal, logger)
	srv.SetRegistry(registry)

	logger.Info("Starting dealerd",
		"addr", addr,
		"ledger", cfg.Ledger.Path,
		"model", cfg.Advisor.Model,
		"join_timeout", cfg.Game.JoinTimeout,
		"default_bet", cfg.Game.DefaultBet)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		return srv.Stop()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	// Flush balances once more so a shutdown mid-round loses nothing
	// past the last settled game.
	if err := bal.Save(); err != nil {
		logger.Error("Failed to save balances on shutdown", "error", err)
	}
	return nil
}

func setupLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
