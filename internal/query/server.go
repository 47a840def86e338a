// Package query exposes a running lithosphere over a websocket, broadcasting
// periodic topography/owner/age snapshots and accepting simple playback
// controls.
package query

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/onuse/lithogen/internal/lithosphere"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine is the subset of *lithosphere.Lithosphere the server drives.
type Engine interface {
	Update() (bool, error)
	Width() int
	Height() int
	Topography() []float64
	PlatesMap() []int
	AgeMap() []int
	Snapshot() lithosphere.Stats
}

// Snapshot is the JSON payload broadcast to every connected client.
type Snapshot struct {
	Type       string    `json:"type"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Topography []float64 `json:"topography"`
	Plates     []int     `json:"plates"`
	Age        []int     `json:"age"`

	IterationCount int     `json:"iterationCount"`
	CycleCount     int     `json:"cycleCount"`
	PlateCount     int     `json:"plateCount"`
	TotalKinetic   float64 `json:"totalKinetic"`

	Finished bool `json:"finished"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server streams snapshots of an Engine to any number of websocket clients,
// at a fixed tick interval, while stepping the engine forward once per tick.
type Server struct {
	engine Engine
	period time.Duration

	mu      sync.Mutex
	paused  bool
	clients map[*websocket.Conn]*sync.Mutex
}

// New builds a Server around engine, ticking once every period.
func New(engine Engine, period time.Duration) *Server {
	return &Server{
		engine:  engine,
		period:  period,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handler returns the http.Handler to mount at the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return s.handleWebSocket
}

// Run steps the engine on a fixed tick and broadcasts a snapshot after every
// step, until ctx-like termination is signaled by the caller closing done, or
// the engine reports it has finished.
func (s *Server) Run(done <-chan struct{}) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			paused := s.paused
			s.mu.Unlock()
			if paused {
				continue
			}

			finished, err := s.engine.Update()
			if err != nil {
				log.Printf("query: engine step failed: %v", err)
				return
			}

			s.broadcast(finished)
			if finished {
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("query: websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = connMutex
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	s.sendTo(conn, connMutex, false)

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if paused, ok := msg["paused"].(bool); ok {
			s.mu.Lock()
			s.paused = paused
			s.mu.Unlock()
		}
	}
}

func (s *Server) snapshot(finished bool) Snapshot {
	stats := s.engine.Snapshot()
	return Snapshot{
		Type:           "snapshot",
		Width:          s.engine.Width(),
		Height:         s.engine.Height(),
		Topography:     s.engine.Topography(),
		Plates:         s.engine.PlatesMap(),
		Age:            s.engine.AgeMap(),
		IterationCount: stats.IterationCount,
		CycleCount:     stats.CycleCount,
		PlateCount:     stats.PlateCount,
		TotalKinetic:   stats.TotalKinetic,
		Finished:       finished,
	}
}

func (s *Server) sendTo(conn *websocket.Conn, mutex *sync.Mutex, finished bool) {
	snap := s.snapshot(finished)
	mutex.Lock()
	defer mutex.Unlock()
	data, err := json.Marshal(snap)
	if err != nil {
		log.Println("query: marshal error:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Println("query: websocket write error:", err)
	}
}

func (s *Server) broadcast(finished bool) {
	snap := s.snapshot(finished)
	data, err := json.Marshal(snap)
	if err != nil {
		log.Println("query: marshal error:", err)
		return
	}

	s.mu.Lock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(s.clients))
	for c, m := range s.clients {
		clients[c] = m
	}
	s.mu.Unlock()

	var stale []*websocket.Conn
	for conn, mutex := range clients {
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()
		if err != nil {
			conn.Close()
			stale = append(stale, conn)
		}
	}

	if len(stale) > 0 {
		s.mu.Lock()
		for _, conn := range stale {
			delete(s.clients, conn)
		}
		s.mu.Unlock()
	}
}
