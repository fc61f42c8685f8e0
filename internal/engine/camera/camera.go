// Package camera provides the top-down camera used by the track viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/trackloop/pkg/math"
)

// FollowCamera looks straight down on the XZ plane with north up and
// eases its center toward a target.
type FollowCamera struct {
	// Center is the world XZ position shown in the middle of the screen.
	Center math.Vec2

	// Zoom is the number of screen pixels per world unit.
	Zoom    float64
	MinZoom float64
	MaxZoom float64

	// Sensitivity
	ZoomSensitivity float64
	PanSpeed        float64 // screen pixels per second

	// Stiffness controls how quickly Follow closes the gap to its target
	// (1/seconds). Zero snaps.
	Stiffness float64

	// Following disables Follow when false, leaving the camera to Pan.
	Following bool
}

// NewFollowCamera creates a camera with default settings.
func NewFollowCamera(zoom float64) *FollowCamera {
	return &FollowCamera{
		Zoom:            zoom,
		MinZoom:         0.02,
		MaxZoom:         8,
		ZoomSensitivity: 0.1,
		PanSpeed:        600,
		Stiffness:       4,
		Following:       true,
	}
}

// Follow moves the center toward target over dt seconds.
func (c *FollowCamera) Follow(target math.Vec2, dt float64) {
	if !c.Following {
		return
	}
	if c.Stiffness <= 0 || dt <= 0 {
		c.Center = target
		return
	}
	// Frame-rate independent exponential approach.
	k := 1 - gomath.Exp(-c.Stiffness*dt)
	c.Center = c.Center.Add(target.Sub(c.Center).Scale(k))
}

// HandleZoom scales the zoom by wheel delta. Positive zooms in.
func (c *FollowCamera) HandleZoom(delta float64) {
	c.Zoom *= 1 + delta*c.ZoomSensitivity
	c.Zoom = math.Clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// Pan moves the center by a screen-space direction for dt seconds. dx is
// right, dy is up.
func (c *FollowCamera) Pan(dx, dy, dt float64) {
	step := c.PanSpeed * dt / c.Zoom
	c.Center.X += dx * step
	c.Center.Y += dy * step
}

// WorldToScreen maps a world XZ point onto a width×height viewport.
func (c *FollowCamera) WorldToScreen(p math.Vec2, width, height int) (x, y float64) {
	x = float64(width)/2 + (p.X-c.Center.X)*c.Zoom
	y = float64(height)/2 - (p.Y-c.Center.Y)*c.Zoom
	return x, y
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c *FollowCamera) ScreenToWorld(x, y float64, width, height int) math.Vec2 {
	return math.Vec2{
		X: c.Center.X + (x-float64(width)/2)/c.Zoom,
		Y: c.Center.Y - (y-float64(height)/2)/c.Zoom,
	}
}

// Visible returns the world XZ rectangle covered by the viewport.
func (c *FollowCamera) Visible(width, height int) (min, max math.Vec2) {
	hw := float64(width) / 2 / c.Zoom
	hh := float64(height) / 2 / c.Zoom
	return math.Vec2{X: c.Center.X - hw, Y: c.Center.Y - hh},
		math.Vec2{X: c.Center.X + hw, Y: c.Center.Y + hh}
}
