package track

import (
	"fmt"
	"math/rand/v2"
)

// Leg describes one side of the rectangular loop.
type Leg struct {
	Index   int
	Start   GridLocation // corner where the leg's leading turn sits
	End     GridLocation // corner owned by the next leg
	Heading Heading      // travel direction along the leg
	Arrival Heading      // travel direction when reaching Start
}

// LoopLegs returns the four legs of a clockwise square loop whose south-west
// corner is origin and whose sides are legLength grid steps long.
func LoopLegs(origin GridLocation, legLength int) [4]Leg {
	corners := [4]GridLocation{
		origin,
		origin.Move(North, legLength),
		origin.Move(North, legLength).Move(East, legLength),
		origin.Move(East, legLength),
	}
	headings := [4]Heading{North, East, South, West}

	var legs [4]Leg
	for i := range legs {
		legs[i] = Leg{
			Index:   i,
			Start:   corners[i],
			End:     corners[(i+1)%4],
			Heading: headings[i],
			Arrival: headings[(i+3)%4],
		}
	}
	return legs
}

// Planner produces the tile descriptors for one leg, including random
// out-and-back detours that leave the leg on the outside of the loop.
type Planner struct {
	leg          Leg
	catalog      *TemplateCatalog
	rng          *rand.Rand
	detourChance float64

	// cursor
	pos     GridLocation
	heading Heading
	queue   []Descriptor
	next    int
}

// NewPlanner creates a planner for leg. Call Build before pulling descriptors.
func NewPlanner(leg Leg, catalog *TemplateCatalog, rng *rand.Rand, detourChance float64) *Planner {
	return &Planner{
		leg:          leg,
		catalog:      catalog,
		rng:          rng,
		detourChance: detourChance,
	}
}

// Build discards any remaining descriptors and plans the leg afresh.
func (p *Planner) Build() error {
	p.queue = p.queue[:0]
	p.next = 0
	p.pos = p.leg.Start
	p.heading = p.leg.Arrival

	if err := p.emit(TurnFor(p.leg.Arrival.Reverse(), p.leg.Heading)); err != nil {
		return err
	}

	for p.pos != p.leg.End {
		fromStart := p.pos.ManhattanDistance(p.leg.Start)
		toEnd := p.pos.ManhattanDistance(p.leg.End)
		if fromStart >= 2 && toEnd >= 2 && p.rng.Float64() < p.detourChance {
			if err := p.detour(min(fromStart, toEnd)); err != nil {
				return err
			}
			continue
		}
		if err := p.emit(Straight); err != nil {
			return err
		}
	}
	return nil
}

// detour leaves the main line, runs n tiles out, reverses with two turns of
// the same sense and runs n tiles back, then turns onto the main line again.
// The outbound turn points away from the loop interior.
func (p *Planner) detour(n int) error {
	out, back := LeftTurn, RightTurn

	if err := p.emit(out); err != nil {
		return err
	}
	if err := p.emitN(Straight, n); err != nil {
		return err
	}
	if err := p.emitN(back, 2); err != nil {
		return err
	}
	if err := p.emitN(Straight, n); err != nil {
		return err
	}
	return p.emit(out)
}

func (p *Planner) emitN(turn TurnType, n int) error {
	for range n {
		if err := p.emit(turn); err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) emit(turn TurnType) error {
	template, err := p.catalog.Pick(turn, p.rng)
	if err != nil {
		return fmt.Errorf("planning leg %d at %s: %w", p.leg.Index, p.pos, err)
	}
	d := NewDescriptor(turn, p.pos, p.heading)
	d.Template = template
	p.queue = append(p.queue, d)

	p.heading = d.Exit
	p.pos = p.pos.Move(p.heading, 1)
	return nil
}

// Next pops the next descriptor. ok is false once the leg is exhausted.
func (p *Planner) Next() (d Descriptor, ok bool) {
	if p.next >= len(p.queue) {
		return Descriptor{}, false
	}
	d = p.queue[p.next]
	p.next++
	return d, true
}

// Remaining returns how many descriptors are left.
func (p *Planner) Remaining() int {
	return len(p.queue) - p.next
}

// Cursor returns where planning stopped: the next grid position and the
// travel heading on arrival there.
func (p *Planner) Cursor() (GridLocation, Heading) {
	return p.pos, p.heading
}

// Descriptors returns a copy of the full planned sequence.
func (p *Planner) Descriptors() []Descriptor {
	out := make([]Descriptor, len(p.queue))
	copy(out, p.queue)
	return out
}
