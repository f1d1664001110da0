package layout

import (
	"time"

	"github.com/adalundhe/mindmesh/core/graph"
	"github.com/adalundhe/mindmesh/core/physics"
)

// Snapshot is a read-only view of the graph at one tick boundary,
// consumed by the rendering layer. All slices are copies; mutating a
// snapshot never touches the live store.
type Snapshot struct {
	Nodes       []graph.Node
	Connections []graph.Connection
	Clusters    []graph.Cluster
	State       physics.State
	Iteration   int
	TakenAt     time.Time
}

func newSnapshot(view graph.View, state physics.State, iteration int) Snapshot {
	return Snapshot{
		Nodes:       view.Nodes,
		Connections: view.Connections,
		Clusters:    view.Clusters,
		State:       state,
		Iteration:   iteration,
		TakenAt:     time.Now(),
	}
}

// Node returns the snapshot's copy of a node by ID.
func (s Snapshot) Node(id string) (graph.Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

// ConnectionsOf returns the snapshot's connections touching a node.
func (s Snapshot) ConnectionsOf(id string) []graph.Connection {
	var result []graph.Connection
	for _, c := range s.Connections {
		if c.Touches(id) {
			result = append(result, c)
		}
	}
	return result
}
