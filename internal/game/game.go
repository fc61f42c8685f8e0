// Package game wires the track generator, the biome world and the train
// into a tick-driven simulation.
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/config"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/game/train"
	"github.com/Faultbox/trackloop/internal/logger"
)

// Reporter receives simulation snapshots. It is notified on the simulation
// goroutine and must copy what it keeps.
type Reporter interface {
	track.Observer
	UpdateTrain(tr *train.Train, broadcast bool)
	UpdateStats(st track.Stats)
}

// broadcastRate is how many train updates per second reach reporters as
// events.
const broadcastRate = 10

// Game is one simulation instance.
type Game struct {
	cfg      *config.Config
	seed     uint64
	gen      *track.Generator
	train    *train.Train
	reporter Reporter
	log      *zap.Logger

	paced  bool
	paused bool
	ticks  int
}

// Option customizes a Game.
type Option func(*Game)

// WithReporter attaches a reporter to the generator and the tick loop.
func WithReporter(r Reporter) Option {
	return func(g *Game) { g.reporter = r }
}

// WithPacing makes Run sleep between ticks to hold the configured tick rate.
func WithPacing(paced bool) Option {
	return func(g *Game) { g.paced = paced }
}

// New builds the world from cfg, spawns the initial tiles and places the
// train. A zero seed draws a random one.
func New(cfg *config.Config, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:  cfg,
		seed: cfg.Run.Seed,
		log:  logger.Named("game"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seed == 0 {
		g.seed = rand.Uint64()
	}

	g.log.Info("initializing simulation",
		zap.Uint64("seed", g.seed),
		zap.Float64("tileSize", cfg.Track.TileSize),
		zap.Int("biomes", len(cfg.Biomes.List)),
	)

	trackCfg, err := cfg.Track.Generator()
	if err != nil {
		return nil, fmt.Errorf("track config: %w", err)
	}
	provider, err := cfg.Biomes.Provider(g.seed)
	if err != nil {
		return nil, fmt.Errorf("biomes config: %w", err)
	}

	genOpts := []track.Option{
		track.WithRand(rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))),
		track.WithLogger(logger.Named("track")),
	}
	if g.reporter != nil {
		genOpts = append(genOpts, track.WithObserver(g.reporter))
	}
	g.gen, err = track.New(trackCfg, cfg.Track.Catalog(), provider, genOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	if err := g.gen.Start(); err != nil {
		return nil, fmt.Errorf("failed to start track: %w", err)
	}

	g.train, err = train.New(g.gen, cfg.Train.Train())
	if err != nil {
		return nil, fmt.Errorf("failed to create train: %w", err)
	}
	if err := g.train.Place(); err != nil {
		return nil, fmt.Errorf("failed to place train: %w", err)
	}
	g.report(true)

	g.log.Info("simulation initialized successfully")
	return g, nil
}

// Run ticks the simulation until ctx is cancelled or the configured number
// of ticks has elapsed.
func (g *Game) Run(ctx context.Context) error {
	rate := g.cfg.Run.TickRate
	dt := 1 / float64(rate)
	limit := g.cfg.Run.Ticks

	var tick <-chan time.Time
	if g.paced {
		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
		tick = ticker.C
	}

	g.log.Info("starting simulation loop",
		zap.Int("ticks", limit),
		zap.Int("tickRate", rate),
		zap.Bool("paced", g.paced),
	)
	start := time.Now()

	for limit == 0 || g.ticks < limit {
		if tick != nil {
			select {
			case <-ctx.Done():
				return g.finish(start)
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return g.finish(start)
		}

		if err := g.Tick(dt); err != nil {
			return fmt.Errorf("tick %d: %w", g.ticks, err)
		}
		if !g.paused && g.ticks%(rate*10) == 0 {
			st := g.gen.Stats()
			g.log.Info("progress",
				zap.Int("tick", g.ticks),
				zap.Float64("odometer", g.train.Odometer()),
				zap.Int("lap", st.Lap),
				zap.Int("resident", st.Resident),
			)
		}
	}
	return g.finish(start)
}

func (g *Game) finish(start time.Time) error {
	st := g.gen.Stats()
	g.log.Info("simulation stopped",
		zap.Int("ticks", g.ticks),
		zap.Duration("elapsed", time.Since(start)),
		zap.Float64("odometer", g.train.Odometer()),
		zap.Int("spawned", st.Spawned),
		zap.Int("evicted", st.Evicted),
		zap.Int("laps", st.Lap),
		zap.Int("holds", g.train.Holds()),
		zap.Int("failedQueries", st.FailedQueries),
		zap.Int("blendRejects", st.BlendRejects),
	)
	return nil
}

// Tick advances the simulation by dt seconds. A paused game does nothing.
func (g *Game) Tick(dt float64) error {
	if g.paused {
		return nil
	}
	if err := g.train.Step(dt); err != nil {
		return err
	}
	g.ticks++
	every := max(g.cfg.Run.TickRate/broadcastRate, 1)
	g.report(g.ticks%every == 0)
	return nil
}

func (g *Game) report(broadcast bool) {
	if g.reporter == nil {
		return
	}
	g.reporter.UpdateTrain(g.train, broadcast)
	g.reporter.UpdateStats(g.gen.Stats())
}

// SetPaused pauses or resumes ticking.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
	g.log.Debug("pause toggled", zap.Bool("paused", paused))
}

// Paused reports whether ticking is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Seed returns the world seed in use.
func (g *Game) Seed() uint64 {
	return g.seed
}

// Ticks returns the number of ticks simulated.
func (g *Game) Ticks() int {
	return g.ticks
}

// Generator returns the track generator.
func (g *Game) Generator() *track.Generator {
	return g.gen
}

// Train returns the train.
func (g *Game) Train() *train.Train {
	return g.train
}

// Config returns the configuration the game was built from.
func (g *Game) Config() *config.Config {
	return g.cfg
}
