package traversal

import (
	"sync"

	"github.com/zeusync/lanepath/internal/core/systems/physics"
)

// MarkerSink places marker objects in the host world.
type MarkerSink interface {
	Spawn(agentID string, position physics.Vec3, rotation physics.Quaternion) error
}

// Marker is one spawned marker.
type Marker struct {
	AgentID  string
	Position physics.Vec3
	Rotation physics.Quaternion
}

// MarkerLedger is an in-memory MarkerSink.
type MarkerLedger struct {
	mu      sync.Mutex
	markers []Marker
}

func NewMarkerLedger() *MarkerLedger {
	return &MarkerLedger{}
}

func (l *MarkerLedger) Spawn(agentID string, position physics.Vec3, rotation physics.Quaternion) error {
	l.mu.Lock()
	l.markers = append(l.markers, Marker{AgentID: agentID, Position: position, Rotation: rotation})
	l.mu.Unlock()
	return nil
}

// Markers returns a copy of everything spawned so far.
func (l *MarkerLedger) Markers() []Marker {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Marker, len(l.markers))
	copy(out, l.markers)
	return out
}

func (l *MarkerLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.markers)
}
