// Package graph owns the mind-map data model: nodes, typed weighted
// connections, and derived clusters. The Store is the single source of
// truth; every other component reads and mutates it only through the
// methods defined here.
package graph

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// =============================================================================
// Relation Types
// =============================================================================

// RelationType classifies how two content items relate.
type RelationType int

const (
	// RelationTemporal links items captured close together in time
	RelationTemporal RelationType = iota
	// RelationSpatial links items captured close together in space
	RelationSpatial
	// RelationThematic links items sharing a detected theme
	RelationThematic
	// RelationEntity links items mentioning the same entity
	RelationEntity
	// RelationVisual links items with similar visual features
	RelationVisual
	// RelationSemantic links items with similar meaning
	RelationSemantic
)

// String returns the string representation of a relation type.
func (t RelationType) String() string {
	if name, ok := relationTypeStrings()[t]; ok {
		return name
	}
	return "unknown"
}

type relationTypeStringMap map[RelationType]string

func relationTypeStrings() relationTypeStringMap {
	return relationTypeStringMap{
		RelationTemporal: "temporal",
		RelationSpatial:  "spatial",
		RelationThematic: "thematic",
		RelationEntity:   "entity",
		RelationVisual:   "visual",
		RelationSemantic: "semantic",
	}
}

// IsValid returns true if the relation type is one of the defined values.
func (t RelationType) IsValid() bool {
	_, ok := relationTypeStrings()[t]
	return ok
}

// ParseRelationType resolves a string produced by String back to its
// RelationType. Unrecognized strings map to RelationSemantic, the most
// generic relation, with ok=false.
func ParseRelationType(s string) (RelationType, bool) {
	for t, name := range relationTypeStrings() {
		if name == s {
			return t, true
		}
	}
	return RelationSemantic, false
}

// =============================================================================
// Node
// =============================================================================

// Node is the kinematic representation of one content item. The ID is an
// opaque, stable identifier minted by the content subsystem; the engine
// never interprets it.
//
// Ownership: kinematics (Pos, Vel) are written only by the physics
// integrator, ClusterID only by the cluster detector. Everything else is
// fixed at insertion.
type Node struct {
	ID         string
	Pos        r2.Vec
	Vel        r2.Vec
	Radius     float64
	Importance float64
	Confidence float64
	Label      string

	// ClusterID is empty while the node is unclustered.
	ClusterID string
}

// Mass derives the simulated mass from importance. Heavier nodes move
// less per unit force, so important nodes anchor the layout.
func (n Node) Mass() float64 {
	return n.Importance * 10
}

// AttractionStrength derives the per-node spring coefficient from
// importance.
func (n Node) AttractionStrength() float64 {
	return n.Importance * 0.5
}

// =============================================================================
// Connection
// =============================================================================

// Connection is a typed, weighted relationship between two nodes. The
// (Source, Target) pair is unordered: the store guarantees at most one
// connection per pair regardless of endpoint order.
type Connection struct {
	ID         string
	Source     string
	Target     string
	Type       RelationType
	Strength   float64
	Confidence float64
}

// Touches reports whether the connection has the given node as either
// endpoint.
func (c Connection) Touches(nodeID string) bool {
	return c.Source == nodeID || c.Target == nodeID
}

// Other returns the opposite endpoint of the given node ID, or "" when the
// connection does not touch it.
func (c Connection) Other(nodeID string) string {
	switch nodeID {
	case c.Source:
		return c.Target
	case c.Target:
		return c.Source
	}
	return ""
}

// Thickness is the rendering stroke weight derived from strength. Derived
// on demand, never stored.
func (c Connection) Thickness() float64 {
	return 1 + c.Strength*4
}

// Opacity is the rendering alpha derived from confidence.
func (c Connection) Opacity() float64 {
	return 0.3 + c.Confidence*0.7
}

// =============================================================================
// Cluster
// =============================================================================

// Cluster is a derived grouping of densely interconnected nodes. Clusters
// are always rebuilt whole by the detector, never patched.
//
// Importance is the sum (not the mean) of member importances, so larger
// clusters read as visually dominant.
type Cluster struct {
	ID         string
	Members    []string
	Centroid   r2.Vec
	Radius     float64
	Importance float64
	Label      string
}

// =============================================================================
// Kinematic snapshot types
// =============================================================================

// Body is the integrator-facing kinematic view of a node, copied out of
// the store at a tick boundary.
type Body struct {
	ID         string
	Pos        r2.Vec
	Vel        r2.Vec
	Mass       float64
	Attraction float64
}

// Spring is the integrator-facing view of a connection. Attraction is the
// mean of the two endpoint attraction strengths, precomputed so the force
// pass needs no node lookups.
type Spring struct {
	Source     string
	Target     string
	Strength   float64
	Attraction float64
}

// BodyUpdate carries one node's post-tick kinematics back into the store.
type BodyUpdate struct {
	ID  string
	Pos r2.Vec
	Vel r2.Vec
}
