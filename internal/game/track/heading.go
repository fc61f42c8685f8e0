// Package track generates the endless loop of terrain tiles a train runs on
// and answers the position queries that keep a chain of cars on the rails.
package track

import (
	"fmt"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
)

// Heading is a compass direction on the tile grid. It names both travel
// directions and tile sides.
type Heading int

// Compass headings, clockwise from north.
const (
	North Heading = iota
	East
	South
	West
)

// String returns the heading name.
func (h Heading) String() string {
	switch h {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return fmt.Sprintf("Heading(%d)", int(h))
	}
}

// Reverse returns the opposite heading.
func (h Heading) Reverse() Heading {
	return (h + 2) % 4
}

// Right returns h rotated 90° clockwise seen from above.
func (h Heading) Right() Heading {
	return (h + 1) % 4
}

// Left returns h rotated 90° counter-clockwise seen from above.
func (h Heading) Left() Heading {
	return (h + 3) % 4
}

// Step returns the grid offset of one step in direction h.
func (h Heading) Step() GridLocation {
	switch h {
	case North:
		return GridLocation{0, 1}
	case East:
		return GridLocation{1, 0}
	case South:
		return GridLocation{0, -1}
	default:
		return GridLocation{-1, 0}
	}
}

// Side converts h to the grid side it names.
func (h Heading) Side() terrain.Side {
	return terrain.Side(h)
}

// GridLocation is an integer tile coordinate. X grows east, Y grows north.
type GridLocation struct {
	X, Y int
}

// Move returns g moved n steps toward h.
func (g GridLocation) Move(h Heading, n int) GridLocation {
	s := h.Step()
	return GridLocation{g.X + s.X*n, g.Y + s.Y*n}
}

// ManhattanDistance returns |dx|+|dy| between two locations.
func (g GridLocation) ManhattanDistance(other GridLocation) int {
	return abs(g.X-other.X) + abs(g.Y-other.Y)
}

// ChebyshevDistance returns max(|dx|, |dy|) between two locations.
func (g GridLocation) ChebyshevDistance(other GridLocation) int {
	return max(abs(g.X-other.X), abs(g.Y-other.Y))
}

// String returns "(x,y)".
func (g GridLocation) String() string {
	return fmt.Sprintf("(%d,%d)", g.X, g.Y)
}

// TurnType classifies how a tile bends the path.
type TurnType int

// Turn types.
const (
	Straight TurnType = iota
	LeftTurn
	RightTurn
)

// String returns the turn type name.
func (t TurnType) String() string {
	switch t {
	case Straight:
		return "Straight"
	case LeftTurn:
		return "LeftTurn"
	case RightTurn:
		return "RightTurn"
	default:
		return fmt.Sprintf("TurnType(%d)", int(t))
	}
}

// Apply returns the travel heading after passing a tile of this type
// while travelling toward h.
func (t TurnType) Apply(h Heading) Heading {
	switch t {
	case LeftTurn:
		return h.Left()
	case RightTurn:
		return h.Right()
	default:
		return h
	}
}

// Descriptor is the pure topology of one tile: how the path enters, where
// it leaves and which authored template decorates it.
type Descriptor struct {
	Turn     TurnType
	Location GridLocation
	Entry    Heading // side the path comes in through
	Exit     Heading // side the path leaves through
	Template string
}

// NewDescriptor builds the descriptor for a tile at loc entered while
// travelling toward heading, bent by turn.
func NewDescriptor(turn TurnType, loc GridLocation, heading Heading) Descriptor {
	return Descriptor{
		Turn:     turn,
		Location: loc,
		Entry:    heading.Reverse(),
		Exit:     turn.Apply(heading),
	}
}

// IsCorner reports whether entry and exit are perpendicular.
func (d Descriptor) IsCorner() bool {
	return d.Entry != d.Exit.Reverse()
}

// TurnFor derives the turn type of a tile from its entry and exit sides.
func TurnFor(entry, exit Heading) TurnType {
	travel := entry.Reverse()
	switch exit {
	case travel:
		return Straight
	case travel.Left():
		return LeftTurn
	default:
		return RightTurn
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
