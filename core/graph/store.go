package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Store is the arena for nodes, connections, and clusters. Nodes and
// connections live in flat id-keyed maps; all cross-references are id
// lookups, never pointers, so topology mutations can never leave a
// dangling reference.
//
// Thread Safety: all methods are safe for concurrent use. The intended
// discipline is single-writer (one layout session plus one ingestor feeding
// it); the RWMutex makes concurrent readers cheap either way.
type Store struct {
	mu sync.RWMutex

	nodes       map[string]*Node
	connections map[string]*Connection

	// pairs indexes connections by unordered endpoint pair for O(1) dedup.
	pairs map[pairKey]string

	// byNode indexes connection IDs per touching node for cascade deletes
	// and neighbor queries.
	byNode map[string]map[string]struct{}

	clusters map[string]*Cluster

	// generation counts topology mutations so the session can tell when
	// cluster assignments are stale.
	generation uint64
}

type pairKey struct {
	lo, hi string
}

func makePairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes:       make(map[string]*Node),
		connections: make(map[string]*Connection),
		pairs:       make(map[pairKey]string),
		byNode:      make(map[string]map[string]struct{}),
		clusters:    make(map[string]*Cluster),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode inserts a node. It fails with ErrDuplicateNode if the ID already
// exists, ErrInvalidMass if importance is not positive, and ErrInvalidRange
// if importance or confidence lies outside [0,1]. Malformed mass is
// rejected here, at the boundary, so integration never has to check it.
func (s *Store) AddNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("add node: %w", ErrUnknownNode)
	}
	if n.Importance <= 0 {
		return fmt.Errorf("add node %s: %w", n.ID, ErrInvalidMass)
	}
	if n.Importance > 1 || !inUnitRange(n.Confidence) {
		return fmt.Errorf("add node %s: %w", n.ID, ErrInvalidRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("add node %s: %w", n.ID, ErrDuplicateNode)
	}

	stored := n
	s.nodes[n.ID] = &stored
	s.byNode[n.ID] = make(map[string]struct{})
	s.generation++
	return nil
}

// RemoveNode removes a node and, in the same locked step, every connection
// touching it. No connection referencing the node is ever observable after
// this returns. No-op if the node is absent.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; !exists {
		return
	}

	for connID := range s.byNode[id] {
		conn := s.connections[connID]
		delete(s.pairs, makePairKey(conn.Source, conn.Target))
		delete(s.connections, connID)
		other := conn.Other(id)
		if touching, ok := s.byNode[other]; ok {
			delete(touching, connID)
		}
	}
	delete(s.byNode, id)
	delete(s.nodes, id)
	s.generation++
}

// Node returns a copy of the node with the given ID.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all nodes, sorted by ID for deterministic
// iteration.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesLocked()
}

func (s *Store) nodesLocked() []Node {
	result := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		result = append(result, *n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// =============================================================================
// Connections
// =============================================================================

// AddConnection inserts a connection between two existing nodes. It fails
// with ErrUnknownNode if either endpoint is absent and ErrInvalidRange if
// strength or confidence is outside [0,1]. Inserting over an existing
// unordered pair is a silent no-op: the stored connection is left
// untouched and no error is returned, so callers must not assume an
// update occurred.
func (s *Store) AddConnection(source, target string, relType RelationType, strength, confidence float64) error {
	if !relType.IsValid() {
		return fmt.Errorf("add connection %s-%s: %w", source, target, ErrInvalidRelationType)
	}
	if !inUnitRange(strength) || !inUnitRange(confidence) {
		return fmt.Errorf("add connection %s-%s: %w", source, target, ErrInvalidRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[source]; !ok {
		return fmt.Errorf("add connection: source %s: %w", source, ErrUnknownNode)
	}
	if _, ok := s.nodes[target]; !ok {
		return fmt.Errorf("add connection: target %s: %w", target, ErrUnknownNode)
	}

	key := makePairKey(source, target)
	if _, exists := s.pairs[key]; exists {
		return nil
	}

	conn := &Connection{
		ID:         uuid.New().String(),
		Source:     source,
		Target:     target,
		Type:       relType,
		Strength:   strength,
		Confidence: confidence,
	}
	s.connections[conn.ID] = conn
	s.pairs[key] = conn.ID
	s.byNode[source][conn.ID] = struct{}{}
	s.byNode[target][conn.ID] = struct{}{}
	s.generation++
	return nil
}

// UpdateConnection revises strength and confidence in place for a
// re-scored relationship. Same range validation as insert.
func (s *Store) UpdateConnection(id string, strength, confidence float64) error {
	if !inUnitRange(strength) || !inUnitRange(confidence) {
		return fmt.Errorf("update connection %s: %w", id, ErrInvalidRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[id]
	if !ok {
		return fmt.Errorf("update connection %s: %w", id, ErrConnectionNotFound)
	}
	conn.Strength = strength
	conn.Confidence = confidence
	return nil
}

// Connection returns a copy of the connection with the given ID.
func (s *Store) Connection(id string) (Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[id]
	if !ok {
		return Connection{}, false
	}
	return *conn, true
}

// HasConnection reports whether a connection exists for the unordered
// endpoint pair.
func (s *Store) HasConnection(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pairs[makePairKey(a, b)]
	return ok
}

// ConnectionsOf returns copies of all connections touching a node. Order
// is not significant.
func (s *Store) ConnectionsOf(id string) []Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	touching, ok := s.byNode[id]
	if !ok {
		return nil
	}
	result := make([]Connection, 0, len(touching))
	for connID := range touching {
		result = append(result, *s.connections[connID])
	}
	return result
}

// ConnectedNodes returns copies of the neighbor nodes of the given node.
func (s *Store) ConnectedNodes(id string) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	touching, ok := s.byNode[id]
	if !ok {
		return nil
	}
	result := make([]Node, 0, len(touching))
	for connID := range touching {
		other := s.connections[connID].Other(id)
		if n, exists := s.nodes[other]; exists {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Connections returns copies of all connections, sorted by ID.
func (s *Store) Connections() []Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectionsLocked()
}

func (s *Store) connectionsLocked() []Connection {
	result := make([]Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		result = append(result, *conn)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ConnectionCount returns the number of connections.
func (s *Store) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Generation returns the topology mutation counter. It advances on
// AddNode, RemoveNode, and AddConnection; kinematic updates do not bump it.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// =============================================================================
// Integrator surface
// =============================================================================

// Bodies returns the kinematic snapshot the integrator computes a tick
// from. Sorted by node ID so force evaluation order is deterministic.
func (s *Store) Bodies() []Body {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Body, 0, len(s.nodes))
	for _, n := range s.nodes {
		result = append(result, Body{
			ID:         n.ID,
			Pos:        n.Pos,
			Vel:        n.Vel,
			Mass:       n.Mass(),
			Attraction: n.AttractionStrength(),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Springs returns the connection snapshot for the attraction pass, with
// the endpoint attraction coefficient premixed.
func (s *Store) Springs() []Spring {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Spring, 0, len(s.connections))
	for _, conn := range s.connections {
		src, srcOK := s.nodes[conn.Source]
		dst, dstOK := s.nodes[conn.Target]
		if !srcOK || !dstOK {
			continue
		}
		result = append(result, Spring{
			Source:     conn.Source,
			Target:     conn.Target,
			Strength:   conn.Strength,
			Attraction: (src.AttractionStrength() + dst.AttractionStrength()) / 2,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Source != result[j].Source {
			return result[i].Source < result[j].Source
		}
		return result[i].Target < result[j].Target
	})
	return result
}

// ApplyKinematics writes a full tick's worth of position/velocity updates
// in one locked step, so snapshot readers never observe a partially
// applied tick. Updates for nodes removed since the tick snapshot was
// taken are dropped silently.
func (s *Store) ApplyKinematics(updates []BodyUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		if n, ok := s.nodes[u.ID]; ok {
			n.Pos = u.Pos
			n.Vel = u.Vel
		}
	}
}

// SetPosition places a node and zeroes its velocity. Used by the session
// to seed initial positions. No-op if the node is absent.
func (s *Store) SetPosition(id string, pos r2.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[id]; ok {
		n.Pos = pos
		n.Vel = r2.Vec{}
	}
}

// =============================================================================
// Cluster surface
// =============================================================================

// AssignClusters replaces the cluster set wholesale and rewrites every
// node's ClusterID in the same locked step: members get their cluster's
// ID, all other nodes are cleared to unclustered.
func (s *Store) AssignClusters(clusters []Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.nodes {
		n.ClusterID = ""
	}
	s.clusters = make(map[string]*Cluster, len(clusters))
	for i := range clusters {
		c := clusters[i]
		c.Members = append([]string(nil), c.Members...)
		s.clusters[c.ID] = &c
		for _, member := range c.Members {
			if n, ok := s.nodes[member]; ok {
				n.ClusterID = c.ID
			}
		}
	}
}

// Clusters returns copies of all clusters, sorted by ID.
func (s *Store) Clusters() []Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clustersLocked()
}

func (s *Store) clustersLocked() []Cluster {
	result := make([]Cluster, 0, len(s.clusters))
	for _, c := range s.clusters {
		clone := *c
		clone.Members = append([]string(nil), c.Members...)
		result = append(result, clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// =============================================================================
// View
// =============================================================================

// View is a consistent copy of the whole graph taken under one read lock.
type View struct {
	Nodes       []Node
	Connections []Connection
	Clusters    []Cluster
	Generation  uint64
}

// Snapshot copies nodes, connections, and clusters under a single read
// lock, so the three slices always describe the same instant.
func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		Nodes:       s.nodesLocked(),
		Connections: s.connectionsLocked(),
		Clusters:    s.clustersLocked(),
		Generation:  s.generation,
	}
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
