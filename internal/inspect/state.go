// Package inspect serves a read-only HTTP and websocket view of a running
// track generator: resident tiles, the train and generator counters.
package inspect

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/game/train"
)

// TileInfo is a copied summary of a resident tile.
type TileInfo struct {
	Serial      uint64         `json:"serial"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Turn        string         `json:"turn"`
	Entry       string         `json:"entry"`
	Exit        string         `json:"exit"`
	Template    string         `json:"template"`
	Length      float64        `json:"length"`
	MinHeight   float32        `json:"minHeight"`
	MaxHeight   float32        `json:"maxHeight"`
	Decorations map[string]int `json:"decorations"`
}

// CarInfo is a copied car placement.
type CarInfo struct {
	Index int        `json:"index"`
	Head  [3]float64 `json:"head"`
	Tail  [3]float64 `json:"tail"`
	TileX int        `json:"tileX"`
	TileY int        `json:"tileY"`
}

// TrainInfo is a copied train state.
type TrainInfo struct {
	Cars     []CarInfo `json:"cars"`
	Odometer float64   `json:"odometer"`
	Holds    int       `json:"holds"`
}

// Event is the envelope pushed to websocket clients.
type Event struct {
	Sequence uint64 `json:"seq"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

// Event types.
const (
	EventTileSpawned  = "TileSpawned"
	EventTileEvicted  = "TileEvicted"
	EventTileReshaped = "TileReshaped"
	EventLegAdvanced  = "LegAdvanced"
	EventTrain        = "Train"
)

// LegInfo is the payload of a leg change.
type LegInfo struct {
	Leg int `json:"leg"`
	Lap int `json:"lap"`
}

// State holds snapshots taken on the generator goroutine and serves them
// to HTTP handlers on other goroutines. Observer callbacks copy what they
// need and never keep references to generator data.
type State struct {
	mu    sync.RWMutex
	tiles map[track.GridLocation]TileInfo
	train TrainInfo
	stats track.Stats
	seq   uint64

	events  chan Event
	dropped int
	log     *zap.Logger
}

var _ track.Observer = (*State)(nil)

// NewState creates a state whose event queue holds up to backlog events.
func NewState(backlog int, log *zap.Logger) *State {
	return &State{
		tiles:  make(map[track.GridLocation]TileInfo),
		events: make(chan Event, backlog),
		log:    log,
	}
}

// TileSpawned implements track.Observer.
func (s *State) TileSpawned(t *track.Tile) {
	info := tileInfo(t)
	s.mu.Lock()
	s.tiles[t.Location] = info
	s.mu.Unlock()
	s.emit(EventTileSpawned, info)
}

// TileEvicted implements track.Observer.
func (s *State) TileEvicted(t *track.Tile) {
	s.mu.Lock()
	if cur, ok := s.tiles[t.Location]; ok && cur.Serial == t.Serial {
		delete(s.tiles, t.Location)
	}
	s.mu.Unlock()
	s.emit(EventTileEvicted, map[string]any{"serial": t.Serial, "x": t.Location.X, "y": t.Location.Y})
}

// TileReshaped implements track.Observer. A seam written by a newer
// neighbor moved the tile's heights, so its info is taken again.
func (s *State) TileReshaped(t *track.Tile) {
	info := tileInfo(t)
	s.mu.Lock()
	cur, ok := s.tiles[t.Location]
	if ok && cur.Serial == t.Serial {
		s.tiles[t.Location] = info
	}
	s.mu.Unlock()
	if ok && cur.Serial == t.Serial {
		s.emit(EventTileReshaped, info)
	}
}

// LegAdvanced implements track.Observer.
func (s *State) LegAdvanced(leg, lap int) {
	s.emit(EventLegAdvanced, LegInfo{Leg: leg, Lap: lap})
}

// UpdateTrain copies the train position. broadcast also queues an event.
func (s *State) UpdateTrain(tr *train.Train, broadcast bool) {
	cars := tr.Cars()
	info := TrainInfo{
		Cars:     make([]CarInfo, len(cars)),
		Odometer: tr.Odometer(),
		Holds:    tr.Holds(),
	}
	for i, c := range cars {
		ci := CarInfo{
			Index: c.Index,
			Head:  [3]float64{c.Head.X, c.Head.Y, c.Head.Z},
			Tail:  [3]float64{c.Tail.X, c.Tail.Y, c.Tail.Z},
		}
		if c.HeadTile != nil {
			ci.TileX, ci.TileY = c.HeadTile.Location.X, c.HeadTile.Location.Y
		}
		info.Cars[i] = ci
	}

	s.mu.Lock()
	s.train = info
	s.mu.Unlock()
	if broadcast {
		s.emit(EventTrain, info)
	}
}

// UpdateStats copies generator counters.
func (s *State) UpdateStats(st track.Stats) {
	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
}

// Tiles returns resident tiles ordered by spawn serial.
func (s *State) Tiles() []TileInfo {
	s.mu.RLock()
	out := make([]TileInfo, 0, len(s.tiles))
	for _, t := range s.tiles {
		out = append(out, t)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b TileInfo) int { return cmp.Compare(a.Serial, b.Serial) })
	return out
}

// Tile returns the resident tile at loc.
func (s *State) Tile(loc track.GridLocation) (TileInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tiles[loc]
	return t, ok
}

// Train returns the last train snapshot.
func (s *State) Train() TrainInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.train
}

// Stats returns the last generator counters.
func (s *State) Stats() track.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Dropped returns how many events were discarded because the queue was full.
func (s *State) Dropped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// emit queues an event without blocking the generator.
func (s *State) emit(typ string, payload any) {
	s.mu.Lock()
	s.seq++
	ev := Event{Sequence: s.seq, Type: typ, Payload: payload}
	select {
	case s.events <- ev:
	default:
		s.dropped++
	}
	s.mu.Unlock()
}

// Pump broadcasts queued events through hub until ctx is done.
func (s *State) Pump(ctx context.Context, hub *Hub) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			msg, err := json.Marshal(ev)
			if err != nil {
				s.log.Warn("encoding event", zap.String("type", ev.Type), zap.Error(err))
				continue
			}
			hub.Broadcast(msg)
		}
	}
}

func tileInfo(t *track.Tile) TileInfo {
	info := TileInfo{
		Serial:      t.Serial,
		X:           t.Location.X,
		Y:           t.Location.Y,
		Turn:        t.Turn.String(),
		Entry:       t.Entry.String(),
		Exit:        t.Exit.String(),
		Template:    t.Template,
		Length:      t.Length,
		Decorations: make(map[string]int),
	}
	if t.Mesh != nil {
		info.MinHeight = t.Mesh.Bounds.Min[1]
		info.MaxHeight = t.Mesh.Bounds.Max[1]
	}
	for _, c := range []track.SizeCategory{track.Small, track.Medium, track.Large} {
		if n := len(t.Decorations(c)); n > 0 {
			info.Decorations[c.String()] = n
		}
	}
	return info
}
