// Package main runs the track generator headless, optionally serving the
// inspection API while it runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/config"
	"github.com/Faultbox/trackloop/internal/game"
	"github.com/Faultbox/trackloop/internal/inspect"
	"github.com/Faultbox/trackloop/internal/logger"
)

// eventBacklog bounds the inspect event queue.
const eventBacklog = 1024

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	fileCfg := logger.DefaultFileConfig(cfg.Logging.LogFile)
	fileCfg.JSON = cfg.Logging.JSON
	if err := logger.Init(cfg.Logging.Level, fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== trackloop generator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("generator error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("generator stopped normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	serving := cfg.Inspect.Addr != ""
	opts := []game.Option{
		// Unbounded runs and runs someone is watching hold the tick rate;
		// fixed-length batch runs go as fast as possible.
		game.WithPacing(cfg.Run.Ticks == 0 || serving),
	}

	var srv *inspect.Server
	if serving {
		state := inspect.NewState(eventBacklog, logger.Named("inspect"))
		srv = inspect.NewServer(state, logger.Named("inspect"))
		opts = append(opts, game.WithReporter(state))
	}

	g, err := game.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if srv == nil {
		return g.Run(ctx)
	}

	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe(srvCtx, cfg.Inspect.Addr) }()

	runErr := g.Run(ctx)
	stopServer()
	if err := <-srvErr; err != nil {
		logger.Warn("inspect server error", zap.Error(err))
	}
	return runErr
}
