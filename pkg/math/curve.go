package math

import "fmt"

// Curve maps t in [0,1] to a weight in [0,1] with Curve(0)=0 and Curve(1)=1.
// Inputs outside [0,1] are clamped.
type Curve func(t float64) float64

// Named falloff curves accepted in configuration.
var curves = map[string]Curve{
	"linear":       Linear,
	"smoothstep":   SmoothStep,
	"smootherstep": SmootherStep,
	"ease_in":      EaseIn,
	"ease_out":     EaseOut,
}

// ParseCurve returns the curve registered under name.
func ParseCurve(name string) (Curve, error) {
	c, ok := curves[name]
	if !ok {
		return nil, fmt.Errorf("unknown falloff curve %q", name)
	}
	return c, nil
}

// Linear returns t.
func Linear(t float64) float64 {
	return Clamp(t, 0, 1)
}

// SmoothStep is the cubic Hermite ramp 3t²-2t³.
func SmoothStep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// SmootherStep is Perlin's quintic ramp.
func SmootherStep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * t * (t*(t*6-15) + 10)
}

// EaseIn returns t².
func EaseIn(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t
}

// EaseOut returns 1-(1-t)².
func EaseOut(t float64) float64 {
	t = Clamp(t, 0, 1)
	return 1 - (1-t)*(1-t)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
