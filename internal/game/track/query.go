package track

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/pkg/math"
)

// tailOverrunTolerance lets an accepted intersection lie up to half a
// segment past the segment's end. It absorbs chord error on corner tiles.
// TODO: derive a bound from sample spacing and corner radius instead of a fixed fraction.
const tailOverrunTolerance = 0.5

// Placement locates one chain segment on the track.
type Placement struct {
	Head         math.Vec3
	HeadTile     *Tile
	HeadDistance float64

	Tail         math.Vec3
	TailTile     *Tile
	TailDistance float64
}

// ComputeChainSegmentPositions returns the head and tail world positions of
// a segment whose head sits distance units into tile and whose tail trails
// it by length. ok is false when no placement exists this tick; callers
// should keep the segment where it was. A NaN or infinite distance or a
// negative length never places.
func (g *Generator) ComputeChainSegmentPositions(tile *Tile, distance, length float64) (head, tail math.Vec3, ok bool) {
	p, ok := g.PlaceSegment(tile, distance, length)
	return p.Head, p.Tail, ok
}

// PlaceSegment is ComputeChainSegmentPositions returning the tiles and
// distances of both ends, which lets callers chain segments.
func (g *Generator) PlaceSegment(tile *Tile, distance, length float64) (Placement, bool) {
	if gomath.IsNaN(distance) || gomath.IsInf(distance, 0) || !(length >= 0) || gomath.IsInf(length, 1) {
		g.stats.FailedQueries++
		return Placement{}, false
	}
	tile, distance, ok := g.carry(tile, distance)
	if !ok {
		g.stats.FailedQueries++
		return Placement{}, false
	}

	head, seg, ok := headOnSamples(tile.Samples, distance)
	if !ok {
		g.stats.FailedQueries++
		return Placement{}, false
	}
	p := Placement{Head: head, HeadTile: tile, HeadDistance: distance}

	if pos, d, ok := tailOnSamples(tile.Samples, seg, head, length); ok {
		p.Tail, p.TailTile, p.TailDistance = pos, tile, d
		return p, true
	}
	if prev := g.GetPrecedingTile(tile); prev != nil {
		if pos, d, ok := tailOnSamples(prev.Samples, len(prev.Samples)-2, head, length); ok {
			p.Tail, p.TailTile, p.TailDistance = pos, prev, d
			return p, true
		}
	}

	g.stats.FailedQueries++
	g.log.Debug("no tail intersection",
		zap.Stringer("tile", tile),
		zap.Float64("distance", distance),
		zap.Float64("length", length),
	)
	return Placement{}, false
}

// carry moves a distance that runs past either end of tile onto the
// neighboring window tiles.
func (g *Generator) carry(tile *Tile, distance float64) (*Tile, float64, bool) {
	if g.indexOf(tile) < 0 {
		return nil, 0, false
	}
	for distance > tile.Length {
		next := g.GetFollowingTile(tile)
		if next == nil {
			return nil, 0, false
		}
		distance -= tile.Length
		tile = next
	}
	for distance < 0 {
		prev := g.GetPrecedingTile(tile)
		if prev == nil {
			return nil, 0, false
		}
		distance += prev.Length
		tile = prev
	}
	return tile, distance, true
}

// headOnSamples interpolates the point distance along samples. seg is the
// index of the bracketing segment's first sample.
func headOnSamples(samples []PathSample, distance float64) (pos math.Vec3, seg int, ok bool) {
	if len(samples) < 2 {
		return math.Vec3{}, 0, false
	}
	if distance < samples[0].Distance || distance > samples[len(samples)-1].Distance {
		return math.Vec3{}, 0, false
	}

	for i := 0; i < len(samples)-1; i++ {
		a, b := samples[i], samples[i+1]
		if distance > b.Distance {
			continue
		}
		span := b.Distance - a.Distance
		if span <= 0 {
			return a.Position, i, true
		}
		return a.Position.Lerp(b.Position, (distance-a.Distance)/span), i, true
	}
	return math.Vec3{}, 0, false
}

// tailOnSamples walks segments backward from startSeg looking for the
// point length away from head. Each segment is treated as an infinite line
// cut by a sphere of radius length around head; the smaller root is
// accepted when it lies on the segment or overruns its end by at most
// tailOverrunTolerance of the segment.
func tailOnSamples(samples []PathSample, startSeg int, head math.Vec3, length float64) (math.Vec3, float64, bool) {
	if startSeg > len(samples)-2 {
		startSeg = len(samples) - 2
	}
	for j := startSeg; j >= 0; j-- {
		a, b := samples[j], samples[j+1]
		dir := b.Position.Sub(a.Position)
		f := a.Position.Sub(head)

		qa := dir.Dot(dir)
		if qa == 0 {
			continue
		}
		qb := 2 * f.Dot(dir)
		qc := f.Dot(f) - length*length

		disc := qb*qb - 4*qa*qc
		if disc < 0 {
			continue
		}
		t := (-qb - gomath.Sqrt(disc)) / (2 * qa)
		if t < 0 || t > 1+tailOverrunTolerance {
			continue
		}

		pos := a.Position.Add(dir.Scale(t))
		d := a.Distance + (b.Distance-a.Distance)*t
		return pos, d, true
	}
	return math.Vec3{}, 0, false
}
