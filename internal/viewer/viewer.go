// Package viewer draws a running simulation top-down with SDL2.
package viewer

import (
	"context"
	"fmt"
	gomath "math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/config"
	"github.com/Faultbox/trackloop/internal/engine/camera"
	"github.com/Faultbox/trackloop/internal/engine/debug"
	"github.com/Faultbox/trackloop/internal/engine/input"
	"github.com/Faultbox/trackloop/internal/engine/window"
	"github.com/Faultbox/trackloop/internal/game"
	"github.com/Faultbox/trackloop/internal/logger"
)

// maxFrameDt caps the simulated time of one frame after a stall.
const maxFrameDt = 0.1

const speedFactor = 1.25

var colorBackground = rgba{20, 24, 28, 255}

// Viewer owns the window and drives the game from the frame loop.
type Viewer struct {
	game     *game.Game
	win      *window.Window
	input    *input.Input
	cam      *camera.FollowCamera
	bindings input.Bindings
	shots    *debug.SnapshotWriter
	log      *zap.Logger

	last          frame
	width, height int

	fpsLimit    int
	decorations bool
	running     bool
}

// New opens a window for g.
func New(g *game.Game, cfg config.ViewerConfig) (*Viewer, error) {
	win, err := window.New(window.Config{
		Title:  "trackloop",
		Width:  cfg.Width,
		Height: cfg.Height,
		VSync:  cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v := &Viewer{
		game:        g,
		win:         win,
		input:       input.New(),
		cam:         camera.NewFollowCamera(cfg.Zoom),
		bindings:    input.DefaultBindings(),
		shots:       debug.NewSnapshotWriter(cfg.SnapshotDir, "trackloop"),
		log:         logger.Named("viewer"),
		fpsLimit:    cfg.FPSLimit,
		decorations: true,
	}
	v.cam.Center = g.Train().Locomotive().Head.XZ()
	return v, nil
}

// Run shows frames until the window is closed or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	var frameBudget time.Duration
	if v.fpsLimit > 0 {
		frameBudget = time.Second / time.Duration(v.fpsLimit)
	}

	v.log.Info("starting viewer loop")

	for v.running && ctx.Err() == nil {
		frameStart := time.Now()
		dt := gomath.Min(frameStart.Sub(lastTime).Seconds(), maxFrameDt)
		lastTime = frameStart

		if v.input.Update() {
			break
		}
		if err := v.handleActions(); err != nil {
			return err
		}
		v.handlePan(dt)

		if err := v.game.Tick(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		v.cam.Follow(v.game.Train().Locomotive().Head.XZ(), dt)

		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.win.Present()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.updateTitle(frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}
		if frameBudget > 0 {
			if rest := frameBudget - time.Since(frameStart); rest > 0 {
				sdl.Delay(uint32(rest / time.Millisecond))
			}
		}
	}

	return nil
}

// Close releases the window.
func (v *Viewer) Close() {
	if v.win != nil {
		v.win.Close()
	}
}

func (v *Viewer) handleActions() error {
	for _, a := range v.bindings.Actions(v.input.Events()) {
		switch a {
		case input.ActionQuit:
			v.running = false
		case input.ActionPause:
			v.game.SetPaused(!v.game.Paused())
		case input.ActionStep:
			if !v.game.Paused() {
				continue
			}
			v.game.SetPaused(false)
			err := v.game.Tick(1 / float64(v.game.Config().Run.TickRate))
			v.game.SetPaused(true)
			if err != nil {
				return fmt.Errorf("step error: %w", err)
			}
		case input.ActionZoomIn:
			v.cam.HandleZoom(1)
		case input.ActionZoomOut:
			v.cam.HandleZoom(-1)
		case input.ActionToggleFollow:
			v.cam.Following = !v.cam.Following
		case input.ActionToggleDecorations:
			v.decorations = !v.decorations
		case input.ActionFaster, input.ActionSlower:
			tr := v.game.Train()
			speed := tr.Config().Speed
			if a == input.ActionFaster {
				speed *= speedFactor
			} else {
				speed /= speedFactor
			}
			tr.SetSpeed(speed)
			v.log.Debug("train speed changed", zap.Float64("speed", tr.Config().Speed))
		case input.ActionSnapshot:
			v.snapshot()
		}
	}
	return nil
}

// handlePan moves the camera with the arrow keys and stops following.
func (v *Viewer) handlePan(dt float64) {
	var dx, dy float64
	if v.input.IsKeyHeld(sdl.SCANCODE_LEFT) {
		dx--
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_RIGHT) {
		dx++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_UP) {
		dy++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_DOWN) {
		dy--
	}
	if dx != 0 || dy != 0 {
		v.cam.Following = false
		v.cam.Pan(dx, dy, dt)
	}
}

func (v *Viewer) render() error {
	r := v.win.Renderer()
	width, height := v.win.GetSize()
	gen := v.game.Generator()

	f := buildFrame(gen.Window(), gen.CurrentTile(), v.game.Train().Cars(), v.cam, frameOptions{
		Width:       width,
		Height:      height,
		Decorations: v.decorations,
	})
	v.last, v.width, v.height = f, width, height

	if err := setColor(r, colorBackground); err != nil {
		return err
	}
	if err := r.Clear(); err != nil {
		return err
	}

	for _, rc := range f.Rects {
		if err := setColor(r, rc.Color); err != nil {
			return err
		}
		sr := sdl.Rect{
			X: int32(gomath.Floor(rc.X)),
			Y: int32(gomath.Floor(rc.Y)),
			W: int32(gomath.Ceil(rc.W)),
			H: int32(gomath.Ceil(rc.H)),
		}
		if err := r.FillRect(&sr); err != nil {
			return err
		}
	}

	for _, l := range f.Lines {
		if err := setColor(r, l.Color); err != nil {
			return err
		}
		for o := range l.Width {
			off := int32(o - l.Width/2)
			if err := r.DrawLine(int32(l.X1)+off, int32(l.Y1)+off, int32(l.X2)+off, int32(l.Y2)+off); err != nil {
				return err
			}
		}
	}
	return nil
}

// snapshot saves the last drawn frame as a PNG.
func (v *Viewer) snapshot() {
	if v.width == 0 || v.height == 0 {
		return
	}
	name, err := v.shots.Save(rasterize(v.last, v.width, v.height, colorBackground))
	if err != nil {
		v.log.Warn("snapshot failed", zap.Error(err))
		return
	}
	v.log.Info("snapshot saved", zap.String("file", name))
}

func setColor(r *sdl.Renderer, c rgba) error {
	return r.SetDrawColor(c.R, c.G, c.B, c.A)
}

func (v *Viewer) updateTitle(fps int) {
	st := v.game.Generator().Stats()
	state := ""
	if v.game.Paused() {
		state = " [paused]"
	}
	v.win.SetTitle(fmt.Sprintf("trackloop - seed %d - lap %d leg %d - %d tiles - %.0f m - %d fps%s",
		v.game.Seed(), st.Lap, st.Leg, st.Resident, v.game.Train().Odometer(), fps, state))
	v.log.Debug("fps", zap.Int("count", fps), zap.Int("resident", st.Resident))
}
