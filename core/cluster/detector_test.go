package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/adalundhe/mindmesh/core/cluster"
	"github.com/adalundhe/mindmesh/core/graph"
)

func addNode(t *testing.T, store *graph.Store, id string, pos r2.Vec) {
	t.Helper()
	require.NoError(t, store.AddNode(graph.Node{
		ID:         id,
		Importance: 0.5,
		Confidence: 1,
	}))
	store.SetPosition(id, pos)
}

func connect(t *testing.T, store *graph.Store, a, b string) {
	t.Helper()
	require.NoError(t, store.AddConnection(a, b, graph.RelationSemantic, 0.8, 1))
}

// Triangle plus isolated nodes: one qualifying component surrounded by
// noise.
func triangleWithIsolates(t *testing.T) *graph.Store {
	t.Helper()
	store := graph.NewStore()
	addNode(t, store, "t1", r2.Vec{X: 0, Y: 0})
	addNode(t, store, "t2", r2.Vec{X: 100, Y: 0})
	addNode(t, store, "t3", r2.Vec{X: 50, Y: 100})
	connect(t, store, "t1", "t2")
	connect(t, store, "t2", "t3")
	connect(t, store, "t1", "t3")

	for i, id := range []string{"i1", "i2", "i3", "i4", "i5"} {
		addNode(t, store, id, r2.Vec{X: 500 + float64(i)*100})
	}
	return store
}

func TestDetectTriangleClustersIsolatesDoNot(t *testing.T) {
	store := triangleWithIsolates(t)
	detector := cluster.NewDetector(cluster.DefaultConfig(), nil)

	clusters := detector.Detect(store)
	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, clusters[0].Members)

	for _, id := range []string{"t1", "t2", "t3"} {
		node, _ := store.Node(id)
		assert.Equal(t, clusters[0].ID, node.ClusterID)
	}
	for _, id := range []string{"i1", "i2", "i3", "i4", "i5"} {
		node, _ := store.Node(id)
		assert.Empty(t, node.ClusterID, "isolated node %s must stay unclustered", id)
	}
}

func TestDetectGeometry(t *testing.T) {
	store := triangleWithIsolates(t)
	cfg := cluster.DefaultConfig()
	detector := cluster.NewDetector(cfg, nil)

	clusters := detector.Detect(store)
	require.Len(t, clusters, 1)
	c := clusters[0]

	// Centroid is the mean member position.
	assert.InDelta(t, 50.0, c.Centroid.X, 1e-9)
	assert.InDelta(t, 100.0/3, c.Centroid.Y, 1e-9)

	// Radius covers the farthest member plus padding.
	var maxDist float64
	for _, id := range c.Members {
		node, _ := store.Node(id)
		if d := r2.Norm(r2.Sub(node.Pos, c.Centroid)); d > maxDist {
			maxDist = d
		}
	}
	assert.InDelta(t, maxDist+cfg.Padding, c.Radius, 1e-9)

	// Aggregate importance is the member sum.
	assert.InDelta(t, 1.5, c.Importance, 1e-9)
}

func TestDetectIsIdempotent(t *testing.T) {
	store := triangleWithIsolates(t)
	detector := cluster.NewDetector(cluster.DefaultConfig(), nil)

	first := detector.Detect(store)
	second := detector.Detect(store)
	assert.Equal(t, first, second)
	assert.Equal(t, first, store.Clusters())
}

func TestDetectDeterministicAcrossInsertionOrder(t *testing.T) {
	build := func(order []string) *graph.Store {
		store := graph.NewStore()
		for _, id := range order {
			addNode(t, store, id, r2.Vec{})
		}
		connect(t, store, "a", "b")
		connect(t, store, "b", "c")
		connect(t, store, "a", "c")
		return store
	}
	detector := cluster.NewDetector(cluster.DefaultConfig(), nil)

	first := detector.Detect(build([]string{"a", "b", "c"}))
	second := detector.Detect(build([]string{"c", "a", "b"}))
	require.Len(t, first, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Members, second[0].Members)
}

func TestSparsePairStaysUnclustered(t *testing.T) {
	store := graph.NewStore()
	addNode(t, store, "a", r2.Vec{})
	addNode(t, store, "b", r2.Vec{X: 50})
	connect(t, store, "a", "b")

	detector := cluster.NewDetector(cluster.DefaultConfig(), nil)
	assert.Empty(t, detector.Detect(store))

	for _, id := range []string{"a", "b"} {
		node, _ := store.Node(id)
		assert.Empty(t, node.ClusterID)
	}
}

func TestLowDensityComponentRejected(t *testing.T) {
	store := graph.NewStore()
	// A five-node path: connected, but density 4/10 < 0.5.
	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	for _, id := range ids {
		addNode(t, store, id, r2.Vec{})
	}
	for i := 0; i < len(ids)-1; i++ {
		connect(t, store, ids[i], ids[i+1])
	}

	detector := cluster.NewDetector(cluster.DefaultConfig(), nil)
	assert.Empty(t, detector.Detect(store))
}

func TestDetectReplacesStaleAssignments(t *testing.T) {
	store := triangleWithIsolates(t)
	detector := cluster.NewDetector(cluster.DefaultConfig(), nil)

	first := detector.Detect(store)
	require.Len(t, first, 1)

	// Breaking the triangle dissolves the cluster; members must be
	// cleared, not left pointing at a dead cluster ID.
	store.RemoveNode("t3")
	assert.Empty(t, detector.Detect(store))

	for _, id := range []string{"t1", "t2"} {
		node, _ := store.Node(id)
		assert.Empty(t, node.ClusterID)
	}
	assert.Empty(t, store.Clusters())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, cluster.DefaultConfig().Validate())

	tooSmall := cluster.DefaultConfig()
	tooSmall.MinSize = 1
	assert.Error(t, tooSmall.Validate())

	badDensity := cluster.DefaultConfig()
	badDensity.MinDensity = 0
	assert.Error(t, badDensity.Validate())

	negativePadding := cluster.DefaultConfig()
	negativePadding.Padding = -1
	assert.Error(t, negativePadding.Validate())
}
