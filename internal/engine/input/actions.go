package input

import "github.com/veandco/go-sdl2/sdl"

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPause
	ActionStep
	ActionZoomIn
	ActionZoomOut
	ActionToggleFollow
	ActionToggleDecorations
	ActionFaster
	ActionSlower
	ActionSnapshot
)

// Bindings maps keys to actions.
type Bindings map[sdl.Scancode]Action

// DefaultBindings returns the viewer key map.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_ESCAPE:       ActionQuit,
		sdl.SCANCODE_Q:            ActionQuit,
		sdl.SCANCODE_SPACE:        ActionPause,
		sdl.SCANCODE_PERIOD:       ActionStep,
		sdl.SCANCODE_EQUALS:       ActionZoomIn,
		sdl.SCANCODE_MINUS:        ActionZoomOut,
		sdl.SCANCODE_F:            ActionToggleFollow,
		sdl.SCANCODE_D:            ActionToggleDecorations,
		sdl.SCANCODE_RIGHTBRACKET: ActionFaster,
		sdl.SCANCODE_LEFTBRACKET:  ActionSlower,
		sdl.SCANCODE_F12:          ActionSnapshot,
	}
}

// Actions returns the actions triggered by key presses this frame, in
// event order. Wheel movement becomes zoom actions.
func (b Bindings) Actions(events []Event) []Action {
	var out []Action
	for _, e := range events {
		switch e.Type {
		case EventQuit:
			out = append(out, ActionQuit)
		case EventKeyDown:
			if a, ok := b[e.Key]; ok {
				out = append(out, a)
			}
		case EventMouseWheel:
			switch {
			case e.WheelY > 0:
				out = append(out, ActionZoomIn)
			case e.WheelY < 0:
				out = append(out, ActionZoomOut)
			}
		}
	}
	return out
}
