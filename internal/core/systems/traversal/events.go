package traversal

import "github.com/zeusync/lanepath/internal/core/systems/physics"

// Event types published on the bus.
const (
	EventMarkerDropped      = "marker.dropped"
	EventRowChanged         = "row.changed"
	EventTraversalCompleted = "traversal.completed"
)

// AgentTopic is the bus topic carrying only one agent's events. Every event is
// also published on the default topic.
func AgentTopic(agentID string) string { return "agent/" + agentID }

// MarkerDropped is the payload of EventMarkerDropped.
type MarkerDropped struct {
	AgentID  string
	Position physics.Vec3
	Row      int
	Distance float64
}

// RowChanged is the payload of EventRowChanged.
type RowChanged struct {
	AgentID string
	Row     int
	Column  int
}

// TraversalCompleted is the payload of EventTraversalCompleted.
type TraversalCompleted struct {
	AgentID  string
	Name     string
	Distance float64
	Elapsed  float64
	Markers  int
}
