// Package main shows the track generator in an SDL2 window.
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
	"github.com/Faultbox/trackloop/internal/viewer"
)

const eventBacklog = 1024

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.DefaultFileConfig(cfg.Logging.LogFile)
	fileCfg.JSON = cfg.Logging.JSON
	if err := logger.Init(cfg.Logging.Level, fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== trackloop viewer ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []game.Option
	if cfg.Inspect.Addr != "" {
		state := inspect.NewState(eventBacklog, logger.Named("inspect"))
		srv := inspect.NewServer(state, logger.Named("inspect"))
		opts = append(opts, game.WithReporter(state))
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Inspect.Addr); err != nil {
				logger.Warn("inspect server error", zap.Error(err))
			}
		}()
	}

	g, err := game.New(cfg, opts...)
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(g, cfg.Viewer)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		v.Close()
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
