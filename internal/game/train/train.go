// Package train moves a chain of fixed-length cars along the generated
// track and drives the generator's window as it goes.
package train

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/logger"
	"github.com/Faultbox/trackloop/pkg/math"
)

// ErrNotPlaced is returned by Step before Place succeeded.
var ErrNotPlaced = errors.New("train not placed on the track")

const (
	// maxChunks bounds how many window-sized pieces one Step is split into.
	maxChunks = 64
	// lookaheadMargin keeps a chunk clear of the far edge of the window.
	lookaheadMargin = 1e-6
)

// Track is the part of the generator a train needs.
type Track interface {
	PlaceSegment(tile *track.Tile, distance, length float64) (track.Placement, bool)
	CurrentTile() *track.Tile
	GetFollowingTile(t *track.Tile) *track.Tile
	AdvanceCurrentTile() error
	SetTrailingBoundaryTile(t *track.Tile)
}

// Config holds train dimensions and speed.
type Config struct {
	Cars      int
	CarLength float64
	Gap       float64 // path distance between a car's tail and the next car's head
	Speed     float64 // world units per second
	MaxSpeed  float64 // upper bound for SetSpeed, zero for none
}

// Length returns the path length of the whole train.
func (c Config) Length() float64 {
	return float64(c.Cars)*c.CarLength + float64(max(c.Cars-1, 0))*c.Gap
}

// Car is one placed segment of the train. Car 0 is the locomotive.
type Car struct {
	Index int
	track.Placement
}

// Heading returns the unit direction from tail to head on the ground plane.
func (c Car) Heading() math.Vec3 {
	d := c.Head.Sub(c.Tail)
	d.Y = 0
	return d.Normalize()
}

// Train is a chain of cars. It is driven from the generator's goroutine.
type Train struct {
	track Track
	cfg   Config
	log   *zap.Logger

	cars     []Car
	placed   bool
	odometer float64
	holds    int
}

// New creates an unplaced train.
func New(t Track, cfg Config) (*Train, error) {
	if cfg.Cars < 1 {
		return nil, fmt.Errorf("train needs at least one car, got %d", cfg.Cars)
	}
	if cfg.CarLength <= 0 {
		return nil, fmt.Errorf("car length %v must be positive", cfg.CarLength)
	}
	if cfg.MaxSpeed > 0 && cfg.Speed > cfg.MaxSpeed {
		return nil, fmt.Errorf("speed %v exceeds max speed %v", cfg.Speed, cfg.MaxSpeed)
	}
	return &Train{
		track: t,
		cfg:   cfg,
		log:   logger.Named("train"),
		cars:  make([]Car, cfg.Cars),
	}, nil
}

// Place puts the train on the current tile with its last car's tail close
// to the tile entry. One car length of slack covers chords being shorter
// than the arcs they span on corner tiles.
func (tr *Train) Place() error {
	start := tr.track.CurrentTile()
	if start == nil {
		return errors.New("no current tile to place the train on")
	}
	cars, ok := tr.layout(start, tr.cfg.Length()+tr.cfg.CarLength)
	if !ok {
		return fmt.Errorf("train of length %v does not fit on the track at %s", tr.cfg.Length(), start.Location)
	}
	tr.cars = cars
	tr.placed = true
	if err := tr.follow(); err != nil {
		return err
	}

	tr.log.Info("train placed",
		zap.Int("cars", tr.cfg.Cars),
		zap.Float64("length", tr.cfg.Length()),
		zap.Stringer("tile", cars[0].HeadTile),
	)
	return nil
}

// Step advances the train by Speed×dt. An advance longer than the spawned
// lookahead is split into pieces that fit, moving the window between them.
// If any car cannot be placed the whole train holds its last position.
func (tr *Train) Step(dt float64) error {
	if !tr.placed {
		return ErrNotPlaced
	}
	remaining := tr.cfg.Speed * dt
	for range maxChunks {
		if remaining <= 0 {
			return nil
		}
		loco := tr.cars[0]
		advance := min(remaining, tr.lookahead(loco))
		var cars []Car
		ok := advance > 0
		if ok {
			cars, ok = tr.layout(loco.HeadTile, loco.HeadDistance+advance)
		}
		if !ok {
			tr.holds++
			tr.log.Debug("train holding position",
				zap.Stringer("tile", loco.HeadTile),
				zap.Float64("distance", loco.HeadDistance),
				zap.Int("holds", tr.holds),
			)
			return nil
		}

		tr.cars = cars
		tr.odometer += advance
		remaining -= advance
		if err := tr.follow(); err != nil {
			return err
		}
	}
	if remaining > 0 {
		tr.log.Debug("advance truncated", zap.Float64("dropped", remaining))
	}
	return nil
}

// lookahead returns how far the locomotive head can move before running off
// the last spawned tile.
func (tr *Train) lookahead(loco Car) float64 {
	d := loco.HeadTile.Length - loco.HeadDistance
	for t := tr.track.GetFollowingTile(loco.HeadTile); t != nil; t = tr.track.GetFollowingTile(t) {
		d += t.Length
	}
	return d - lookaheadMargin
}

// layout places every car behind a locomotive head at distance into tile.
func (tr *Train) layout(tile *track.Tile, distance float64) ([]Car, bool) {
	cars := make([]Car, tr.cfg.Cars)
	for i := range cars {
		p, ok := tr.track.PlaceSegment(tile, distance, tr.cfg.CarLength)
		if !ok {
			return nil, false
		}
		cars[i] = Car{Index: i, Placement: p}
		tile, distance = p.TailTile, p.TailDistance-tr.cfg.Gap
	}
	return cars, true
}

// follow moves the generator window along with the train: the current tile
// tracks the locomotive and the trailing boundary tracks the last car.
func (tr *Train) follow() error {
	head := tr.cars[0].HeadTile
	steps, found := 0, false
	for t := tr.track.CurrentTile(); t != nil; t = tr.track.GetFollowingTile(t) {
		if t == head {
			found = true
			break
		}
		steps++
	}
	if found && steps > 0 {
		for range steps {
			if err := tr.track.AdvanceCurrentTile(); err != nil {
				return fmt.Errorf("advancing with locomotive at %s: %w", head.Location, err)
			}
		}
		tr.log.Debug("locomotive entered tile", zap.Stringer("tile", head), zap.Int("advanced", steps))
	}

	tr.track.SetTrailingBoundaryTile(tr.cars[len(tr.cars)-1].TailTile)
	return nil
}

// Cars returns a copy of the car placements.
func (tr *Train) Cars() []Car {
	out := make([]Car, len(tr.cars))
	copy(out, tr.cars)
	return out
}

// Locomotive returns the lead car.
func (tr *Train) Locomotive() Car {
	return tr.cars[0]
}

// Odometer returns the distance the locomotive has travelled.
func (tr *Train) Odometer() float64 {
	return tr.odometer
}

// Holds returns how many ticks the train spent holding position.
func (tr *Train) Holds() int {
	return tr.holds
}

// SetSpeed changes the travel speed, clamped to [0, MaxSpeed].
func (tr *Train) SetSpeed(speed float64) {
	speed = max(speed, 0)
	if tr.cfg.MaxSpeed > 0 {
		speed = min(speed, tr.cfg.MaxSpeed)
	}
	tr.cfg.Speed = speed
}

// Config returns the train configuration.
func (tr *Train) Config() Config {
	return tr.cfg
}
