package query

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onuse/lithogen/internal/lithosphere"
)

type fakeEngine struct {
	mu       sync.Mutex
	steps    int
	finishAt int
}

func (f *fakeEngine) Update() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps++
	return f.finishAt > 0 && f.steps >= f.finishAt, nil
}

func (f *fakeEngine) stepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.steps
}

func (f *fakeEngine) Width() int            { return 2 }
func (f *fakeEngine) Height() int           { return 1 }
func (f *fakeEngine) Topography() []float64 { return []float64{0.1, 1.0} }
func (f *fakeEngine) PlatesMap() []int      { return []int{0, 1} }
func (f *fakeEngine) AgeMap() []int         { return []int{5, 6} }

func (f *fakeEngine) Snapshot() lithosphere.Stats {
	return lithosphere.Stats{
		IterationCount: f.stepCount(),
		CycleCount:     1,
		PlateCount:     2,
		TotalKinetic:   3.5,
	}
}

func dialTestServer(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClientReceivesSnapshotOnConnect(t *testing.T) {
	engine := &fakeEngine{}
	s := New(engine, 10*time.Millisecond)
	conn := dialTestServer(t, s)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap Snapshot
	require.NoError(t, conn.ReadJSON(&snap))

	assert.Equal(t, "snapshot", snap.Type)
	assert.Equal(t, 2, snap.Width)
	assert.Equal(t, 1, snap.Height)
	assert.Equal(t, []float64{0.1, 1.0}, snap.Topography)
	assert.Equal(t, []int{0, 1}, snap.Plates)
	assert.Equal(t, []int{5, 6}, snap.Age)
	assert.Equal(t, 2, snap.PlateCount)
	assert.Equal(t, 1, snap.CycleCount)
	assert.InDelta(t, 3.5, snap.TotalKinetic, 1e-12)
	assert.False(t, snap.Finished)
}

func TestRunStepsEngineAndBroadcasts(t *testing.T) {
	engine := &fakeEngine{}
	s := New(engine, 5*time.Millisecond)
	conn := dialTestServer(t, s)

	done := make(chan struct{})
	go s.Run(done)
	defer close(done)

	// Skip the greeting snapshot, then expect tick-driven broadcasts with
	// advancing iteration counts.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap Snapshot
	require.NoError(t, conn.ReadJSON(&snap))

	require.NoError(t, conn.ReadJSON(&snap))
	first := snap.IterationCount
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Greater(t, snap.IterationCount, first)
}

func TestRunStopsWhenEngineFinishes(t *testing.T) {
	engine := &fakeEngine{finishAt: 3}
	s := New(engine, 2*time.Millisecond)
	conn := dialTestServer(t, s)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		s.Run(done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the engine finished")
	}
	assert.Equal(t, 3, engine.stepCount())

	// The final broadcast carries the finished flag.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var snap, last Snapshot
	for {
		if err := conn.ReadJSON(&snap); err != nil {
			break
		}
		last = snap
	}
	assert.True(t, last.Finished)
}

func TestPauseControlStopsStepping(t *testing.T) {
	engine := &fakeEngine{}
	s := New(engine, 2*time.Millisecond)
	conn := dialTestServer(t, s)

	done := make(chan struct{})
	go s.Run(done)
	defer close(done)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"paused": true}))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		paused := s.paused
		s.mu.Unlock()
		if paused {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s.mu.Lock()
	require.True(t, s.paused)
	s.mu.Unlock()

	// At most one in-flight step can land after the pause took effect.
	stepsWhenPaused := engine.stepCount()
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, engine.stepCount(), stepsWhenPaused+1)
}
