package track

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/internal/logger"
	"github.com/Faultbox/trackloop/pkg/math"
)

// Config holds the generation parameters of a Generator.
type Config struct {
	TileSize      float64 // world units per tile side
	Resolution    int     // height samples per tile side
	MaxHeight     float64
	SampleSpacing float64 // max centerline distance between path samples

	Origin       GridLocation // south-west corner of the loop
	LegLength    int          // grid steps per loop side
	DetourChance float64

	FlattenThreshold float64 // distance from the centerline where flattening fades out
	FlattenCurve     math.Curve
	BlendRows        int // rows smoothed inward from each seam
	BlendCurve       math.Curve

	TilesAhead   int // tiles spawned by Start
	RetainBehind int // tiles kept behind the trailing boundary
	PoolCapacity int // hard cap on live meshes
}

// Validate checks the configuration for values generation cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile size %v must be positive", c.TileSize))
	}
	if c.Resolution < 2 {
		errs = append(errs, fmt.Errorf("resolution %d must be at least 2", c.Resolution))
	}
	if c.SampleSpacing <= 0 {
		errs = append(errs, fmt.Errorf("sample spacing %v must be positive", c.SampleSpacing))
	}
	if c.LegLength < 3 {
		errs = append(errs, fmt.Errorf("leg length %d must be at least 3", c.LegLength))
	}
	if c.DetourChance < 0 || c.DetourChance > 1 {
		errs = append(errs, fmt.Errorf("detour chance %v outside [0,1]", c.DetourChance))
	}
	if c.FlattenCurve == nil || c.BlendCurve == nil {
		errs = append(errs, errors.New("flatten and blend curves are required"))
	}
	if c.BlendRows < 1 || c.BlendRows >= c.Resolution {
		errs = append(errs, fmt.Errorf("blend rows %d must be in [1, resolution)", c.BlendRows))
	}
	if c.TilesAhead < 2 {
		errs = append(errs, fmt.Errorf("tiles ahead %d must be at least 2", c.TilesAhead))
	}
	if c.RetainBehind < 1 {
		errs = append(errs, fmt.Errorf("retain behind %d must be at least 1", c.RetainBehind))
	}
	if c.PoolCapacity < c.TilesAhead+c.RetainBehind+2 {
		errs = append(errs, fmt.Errorf("pool capacity %d below tiles ahead + retain behind + 2", c.PoolCapacity))
	}
	// A grid cell comes round again only after three other legs, so the
	// lookup can never hold two live tiles for one location.
	if c.LegLength*3 <= c.PoolCapacity {
		errs = append(errs, fmt.Errorf("leg length %d too short for pool capacity %d", c.LegLength, c.PoolCapacity))
	}
	return errors.Join(errs...)
}

// Stats summarizes generator activity.
type Stats struct {
	Spawned       int
	Evicted       int
	Resident      int
	Lap           int
	Leg           int
	PoolCapacity  int
	PoolAllocated int
	PoolInUse     int
	BlendRejects  int
	Reshaped      int // published tiles whose heights a later seam moved
	FailedQueries int
}

// Generator spawns tiles along the loop, keeps a sliding window of resident
// tiles and answers position queries. It is not safe for concurrent use:
// spawning, advancing and querying must happen on one goroutine.
type Generator struct {
	cfg      Config
	provider StrategyProvider
	catalog  *TemplateCatalog
	rng      *rand.Rand
	log      *zap.Logger

	planners    [4]*Planner
	active      int // slot feeding descriptors
	rebuildSlot int // slot rebuilt on the last leg change
	lap         int

	lookup       map[GridLocation]*Tile
	window       []*Tile
	current      *Tile
	currentIndex int

	pool      *terrain.MeshPool
	observers []Observer
	serial    uint64
	stats     Stats
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRand sets the random source. Without it every run draws a fresh seed.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithObserver registers an observer for window changes.
func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observers = append(g.observers, o) }
}

// New creates a generator and plans all four legs of the loop.
func New(cfg Config, catalog *TemplateCatalog, provider StrategyProvider, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid track config: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:      cfg,
		provider: provider,
		catalog:  catalog,
		lookup:   make(map[GridLocation]*Tile),
		pool:     terrain.NewMeshPool(cfg.PoolCapacity),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.log == nil {
		g.log = logger.Named("track")
	}

	for i, leg := range LoopLegs(cfg.Origin, cfg.LegLength) {
		g.planners[i] = NewPlanner(leg, catalog, g.rng, cfg.DetourChance)
		if err := g.planners[i].Build(); err != nil {
			return nil, err
		}
	}
	g.rebuildSlot = 2

	return g, nil
}

// Start spawns the initial lookahead and makes the first tile current.
func (g *Generator) Start() error {
	for range g.cfg.TilesAhead {
		if _, err := g.SpawnNext(); err != nil {
			return err
		}
	}
	g.log.Info("track started",
		zap.Int("tiles", len(g.window)),
		zap.Float64("tileSize", g.cfg.TileSize),
		zap.Int("resolution", g.cfg.Resolution),
	)
	return nil
}

// SpawnNext generates and publishes the next tile along the loop.
func (g *Generator) SpawnNext() (*Tile, error) {
	d, err := g.nextDescriptor()
	if err != nil {
		return nil, err
	}
	return g.spawn(d)
}

func (g *Generator) nextDescriptor() (Descriptor, error) {
	for {
		if d, ok := g.planners[g.active].Next(); ok {
			return d, nil
		}
		if err := g.advanceLeg(); err != nil {
			return Descriptor{}, err
		}
	}
}

// advanceLeg moves to the next planner and rebuilds the slot that was
// active two legs ago. That slot is the only one ever rebuilt, and it is
// never adjacent to the live window.
func (g *Generator) advanceLeg() error {
	g.active = (g.active + 1) % len(g.planners)
	if g.active == 0 {
		g.lap++
	}
	g.rebuildSlot = (g.active + 2) % len(g.planners)
	if err := g.planners[g.rebuildSlot].Build(); err != nil {
		return fmt.Errorf("rebuilding leg %d: %w", g.rebuildSlot, err)
	}

	g.log.Info("leg advanced",
		zap.Int("leg", g.active),
		zap.Int("lap", g.lap),
		zap.Int("rebuilt", g.rebuildSlot),
		zap.Int("tiles", g.planners[g.active].Remaining()),
	)
	for _, o := range g.observers {
		o.LegAdvanced(g.active, g.lap)
	}
	return nil
}

// spawn runs the full generation pipeline for one descriptor.
func (g *Generator) spawn(d Descriptor) (*Tile, error) {
	cfg := g.cfg
	t := newTile(d, cfg.TileSize, cfg.SampleSpacing, cfg.Resolution)
	g.serial++
	t.Serial = g.serial

	// Check out the mesh first so a full pool fails before any neighbor
	// receives a seam from a tile that never gets published.
	mesh, err := g.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("spawning %s: %w", d.Location, err)
	}

	strategy := g.provider.StrategyFor(d.Location)
	heights, colors := strategy.GenerateHeightField(d.Location, cfg.Resolution, cfg.TileSize, cfg.MaxHeight)
	n := cfg.Resolution * cfg.Resolution
	if len(heights) != n || len(colors) != n {
		g.pool.Release(mesh)
		return nil, fmt.Errorf("height field for %s: got %d heights and %d colors, want %d",
			d.Location, len(heights), len(colors), n)
	}
	t.heights = heights
	t.colors = colors

	g.flatten(t)

	neighbors := g.neighbors(d.Location)
	g.blendHeights(t, neighbors)

	if err := terrain.BuildGridMesh(mesh, t.grid, t.heights, t.colors); err != nil {
		g.pool.Release(mesh)
		return nil, fmt.Errorf("building mesh for %s: %w", d.Location, err)
	}
	t.Mesh = mesh

	positions, normals := t.worldAttributes()
	strategy.PaintSurface(d.Location, cfg.Resolution, cfg.MaxHeight, positions, normals, t.colors)
	g.blendColors(t, neighbors)
	mesh.SetColors(t.colors)

	strategy.PlaceDecorations(d.Location, cfg.Resolution, cfg.MaxHeight, cfg.TileSize,
		positions, normals, t.colors, t.trackDistance, t)

	g.publish(t)
	return t, nil
}

// worldAttributes returns per-sample world positions and normals from the mesh.
func (t *Tile) worldAttributes() ([]math.Vec3, []math.Vec3) {
	positions := make([]math.Vec3, len(t.Mesh.Vertices))
	normals := make([]math.Vec3, len(t.Mesh.Vertices))
	for i, v := range t.Mesh.Vertices {
		lx, lz := t.grid.Local(i%t.grid.Resolution, i/t.grid.Resolution)
		positions[i] = math.Vec3{X: t.Origin.X + lx, Y: t.heights[i], Z: t.Origin.Z + lz}
		normals[i] = math.Vec3{X: float64(v.Normal[0]), Y: float64(v.Normal[1]), Z: float64(v.Normal[2])}
	}
	return positions, normals
}

func (g *Generator) publish(t *Tile) {
	g.lookup[t.Location] = t
	g.window = append(g.window, t)
	if g.current == nil {
		g.current = t
		g.currentIndex = len(g.window) - 1
	}
	g.stats.Spawned++

	g.log.Debug("tile spawned",
		zap.Uint64("serial", t.Serial),
		zap.Stringer("location", t.Location),
		zap.Stringer("turn", t.Turn),
		zap.String("template", t.Template),
		zap.Int("decorations", t.DecorationCount()),
	)
	for _, o := range g.observers {
		o.TileSpawned(t)
	}
}

// Stats returns a snapshot of generator counters.
func (g *Generator) Stats() Stats {
	s := g.stats
	s.Resident = len(g.window)
	s.Lap = g.lap
	s.Leg = g.active
	s.PoolCapacity = g.pool.Capacity()
	s.PoolAllocated = g.pool.Allocated()
	s.PoolInUse = g.pool.InUse()
	return s
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.cfg
}
