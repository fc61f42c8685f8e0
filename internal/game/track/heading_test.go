package track

import "testing"

func TestHeadingRotation(t *testing.T) {
	tests := []struct {
		h                    Heading
		reverse, right, left Heading
	}{
		{North, South, East, West},
		{East, West, South, North},
		{South, North, West, East},
		{West, East, North, South},
	}
	for _, tt := range tests {
		t.Run(tt.h.String(), func(t *testing.T) {
			if got := tt.h.Reverse(); got != tt.reverse {
				t.Errorf("Reverse() = %v, want %v", got, tt.reverse)
			}
			if got := tt.h.Right(); got != tt.right {
				t.Errorf("Right() = %v, want %v", got, tt.right)
			}
			if got := tt.h.Left(); got != tt.left {
				t.Errorf("Left() = %v, want %v", got, tt.left)
			}
		})
	}
}

func TestGridLocationMove(t *testing.T) {
	o := GridLocation{2, 3}
	tests := []struct {
		h    Heading
		want GridLocation
	}{
		{North, GridLocation{2, 5}},
		{East, GridLocation{4, 3}},
		{South, GridLocation{2, 1}},
		{West, GridLocation{0, 3}},
	}
	for _, tt := range tests {
		if got := o.Move(tt.h, 2); got != tt.want {
			t.Errorf("Move(%v, 2) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestGridLocationDistances(t *testing.T) {
	a, b := GridLocation{-1, 4}, GridLocation{2, 0}
	if got := a.ManhattanDistance(b); got != 7 {
		t.Errorf("ManhattanDistance() = %d, want 7", got)
	}
	if got := a.ChebyshevDistance(b); got != 4 {
		t.Errorf("ChebyshevDistance() = %d, want 4", got)
	}
	if got := a.String(); got != "(-1,4)" {
		t.Errorf("String() = %q, want (-1,4)", got)
	}
}

func TestNewDescriptor(t *testing.T) {
	tests := []struct {
		turn    TurnType
		heading Heading
		entry   Heading
		exit    Heading
	}{
		{Straight, North, South, North},
		{RightTurn, North, South, East},
		{LeftTurn, North, South, West},
		{RightTurn, West, East, North},
		{LeftTurn, East, West, North},
	}
	for _, tt := range tests {
		d := NewDescriptor(tt.turn, GridLocation{}, tt.heading)
		if d.Entry != tt.entry || d.Exit != tt.exit {
			t.Errorf("NewDescriptor(%v, %v) = %v->%v, want %v->%v", tt.turn, tt.heading, d.Entry, d.Exit, tt.entry, tt.exit)
		}
		if d.Entry == d.Exit {
			t.Errorf("NewDescriptor(%v, %v) entry equals exit", tt.turn, tt.heading)
		}
		if got := d.IsCorner(); got != (tt.turn != Straight) {
			t.Errorf("IsCorner() = %v for %v", got, tt.turn)
		}
		if got := TurnFor(d.Entry, d.Exit); got != tt.turn {
			t.Errorf("TurnFor(%v, %v) = %v, want %v", d.Entry, d.Exit, got, tt.turn)
		}
	}
}

func TestHeadingSideOpposite(t *testing.T) {
	for h := North; h <= West; h++ {
		if got, want := h.Side().Opposite(), h.Reverse().Side(); got != want {
			t.Errorf("%v.Side().Opposite() = %v, want %v", h, got, want)
		}
	}
}
