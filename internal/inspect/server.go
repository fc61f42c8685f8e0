package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/game/track"
)

// EventHello is sent to every websocket client right after it connects.
const EventHello = "Hello"

const shutdownTimeout = 5 * time.Second

// Server exposes State over HTTP.
type Server struct {
	state *State
	hub   *Hub
	log   *zap.Logger
}

// NewServer creates a server for state.
func NewServer(state *State, log *zap.Logger) *Server {
	return &Server{state: state, hub: NewHub(), log: log}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/tiles", s.tiles)
		r.Get("/tiles/{x}/{y}", s.tile)
		r.Get("/train", s.train)
		r.Get("/stats", s.stats)
	})
	r.Get("/ws", s.stream)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. The event pump runs for the lifetime of the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go s.state.Pump(pumpCtx, s.hub)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("inspect server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("inspect server stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.Count(),
	})
}

func (s *Server) tiles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.state.Tiles())
}

func (s *Server) tile(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid x coordinate")
		return
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid y coordinate")
		return
	}

	info, ok := s.state.Tile(track.GridLocation{X: x, Y: y})
	if !ok {
		respondError(w, http.StatusNotFound, "tile not resident")
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) train(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.state.Train())
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st := s.state.Stats()
	respondJSON(w, http.StatusOK, map[string]any{
		"spawned":       st.Spawned,
		"evicted":       st.Evicted,
		"resident":      st.Resident,
		"lap":           st.Lap,
		"leg":           st.Leg,
		"poolCapacity":  st.PoolCapacity,
		"poolAllocated": st.PoolAllocated,
		"poolInUse":     st.PoolInUse,
		"blendRejects":  st.BlendRejects,
		"failedQueries": st.FailedQueries,
		"droppedEvents": s.state.Dropped(),
	})
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Debug("websocket accept failed", zap.Error(err))
		return
	}

	s.hub.Add(conn)
	hello, _ := json.Marshal(Event{Type: EventHello, Payload: map[string]int{"tiles": len(s.state.Tiles())}})
	if err := conn.Write(context.Background(), websocket.MessageText, hello); err != nil {
		s.hub.Remove(conn)
		_ = conn.Close(websocket.StatusInternalError, "")
		return
	}

	// Clients only listen; reading keeps control frames flowing and
	// detects disconnects.
	go func(c *websocket.Conn) {
		defer s.hub.Remove(c)
		defer c.Close(websocket.StatusNormalClosure, "")
		for {
			if _, _, err := c.Read(context.Background()); err != nil {
				return
			}
		}
	}(conn)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
