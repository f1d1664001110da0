// Package cluster partitions a settled (or settling) graph into clusters
// of densely interconnected nodes and writes the assignments back onto the
// store. Detection is a rebuild, never a patch: identical graph state
// always yields identical clusters.
package cluster

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/adalundhe/mindmesh/core/graph"
)

// Config holds the cluster qualification thresholds.
type Config struct {
	// MinSize is the smallest component that can form a cluster. Isolated
	// nodes and sparse pairs stay unclustered.
	MinSize int `yaml:"min_size"`

	// MinDensity is the minimum intra-component connection density,
	// measured as edges / C(n,2).
	MinDensity float64 `yaml:"min_density"`

	// Padding is added to the bounding radius around the farthest member.
	Padding float64 `yaml:"padding"`
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		MinSize:    3,
		MinDensity: 0.5,
		Padding:    20,
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.MinSize < 2 {
		return fmt.Errorf("cluster config: min_size must be at least 2, got %d", c.MinSize)
	}
	if c.MinDensity <= 0 || c.MinDensity > 1 {
		return fmt.Errorf("cluster config: min_density must be in (0,1], got %v", c.MinDensity)
	}
	if c.Padding < 0 {
		return fmt.Errorf("cluster config: padding must be non-negative, got %v", c.Padding)
	}
	return nil
}

// Detector runs connected-component clustering over a store.
type Detector struct {
	config Config
	logger *slog.Logger
}

// NewDetector creates a detector. A nil logger falls back to slog.Default.
func NewDetector(config Config, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{config: config, logger: logger}
}

// Detect partitions the store's nodes into clusters and assigns the
// results back onto it, replacing any previous assignment wholesale.
// Returns the clusters it assigned.
//
// Determinism: components are discovered in sorted-node-ID order, neighbor
// expansion iterates sorted adjacency, and cluster IDs are derived from
// the sorted member set, so re-running on an unchanged graph is
// idempotent.
func (d *Detector) Detect(store *graph.Store) []graph.Cluster {
	view := store.Snapshot()
	clusters := d.partition(view)
	store.AssignClusters(clusters)

	d.logger.Debug("cluster detection complete",
		"nodes", len(view.Nodes),
		"clusters", len(clusters))
	return clusters
}

func (d *Detector) partition(view graph.View) []graph.Cluster {
	nodes := make(map[string]graph.Node, len(view.Nodes))
	adjacency := make(map[string][]string, len(view.Nodes))
	for _, n := range view.Nodes {
		nodes[n.ID] = n
	}
	for _, conn := range view.Connections {
		adjacency[conn.Source] = append(adjacency[conn.Source], conn.Target)
		adjacency[conn.Target] = append(adjacency[conn.Target], conn.Source)
	}
	for _, neighbors := range adjacency {
		sort.Strings(neighbors)
	}

	var clusters []graph.Cluster
	seen := make(map[string]bool, len(view.Nodes))
	for _, n := range view.Nodes {
		if seen[n.ID] {
			continue
		}
		component := walkComponent(n.ID, adjacency, seen)
		if len(component) < d.config.MinSize {
			continue
		}
		if density(component, view.Connections) < d.config.MinDensity {
			continue
		}
		clusters = append(clusters, d.summarize(component, nodes))
	}
	return clusters
}

// walkComponent collects the connected component containing start via BFS
// over sorted adjacency lists. Marks every visited node in seen.
func walkComponent(start string, adjacency map[string][]string, seen map[string]bool) []string {
	var component []string
	queue := []string{start}
	seen[start] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		component = append(component, id)
		for _, neighbor := range adjacency[id] {
			if !seen[neighbor] {
				seen[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	sort.Strings(component)
	return component
}

// density is the intra-component edge count over the maximum possible
// C(n,2) for the component.
func density(component []string, connections []graph.Connection) float64 {
	members := make(map[string]bool, len(component))
	for _, id := range component {
		members[id] = true
	}
	var edges int
	for _, conn := range connections {
		if members[conn.Source] && members[conn.Target] {
			edges++
		}
	}
	n := len(component)
	possible := n * (n - 1) / 2
	if possible == 0 {
		return 0
	}
	return float64(edges) / float64(possible)
}

// summarize computes the geometric bounding summary for a qualifying
// component. Aggregate importance is the sum of member importances.
func (d *Detector) summarize(component []string, nodes map[string]graph.Node) graph.Cluster {
	xs := make([]float64, len(component))
	ys := make([]float64, len(component))
	var importance float64
	for i, id := range component {
		n := nodes[id]
		xs[i] = n.Pos.X
		ys[i] = n.Pos.Y
		importance += n.Importance
	}
	centroid := r2.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}

	var radius float64
	for _, id := range component {
		if dist := r2.Norm(r2.Sub(nodes[id].Pos, centroid)); dist > radius {
			radius = dist
		}
	}

	return graph.Cluster{
		ID:         clusterID(component),
		Members:    component,
		Centroid:   centroid,
		Radius:     radius + d.config.Padding,
		Importance: importance,
	}
}

// clusterID derives a stable identity from the sorted member set, so the
// same component keeps the same ID across rebuilds.
func clusterID(sortedMembers []string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(sortedMembers, "\x00"))).String()
}
