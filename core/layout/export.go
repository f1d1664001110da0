package layout

// RenderGraph is the nodes/links shape force-simulation front ends expect.
// Built from a snapshot on demand; presentation attributes (thickness,
// opacity) are derived here, never stored on the model.
type RenderGraph struct {
	Nodes    []RenderNode    `json:"nodes"`
	Links    []RenderLink    `json:"links"`
	Clusters []RenderCluster `json:"clusters,omitempty"`
	State    string          `json:"state"`
	Ticks    int             `json:"ticks"`
}

// RenderNode is a positioned node for drawing.
type RenderNode struct {
	ID         string  `json:"id"`
	Label      string  `json:"label,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	Importance float64 `json:"importance"`
	Cluster    string  `json:"cluster,omitempty"`
}

// RenderLink is a drawable edge with derived presentation weights.
type RenderLink struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Type      string  `json:"type"`
	Strength  float64 `json:"strength"`
	Thickness float64 `json:"thickness"`
	Opacity   float64 `json:"opacity"`
}

// RenderCluster is a drawable cluster boundary.
type RenderCluster struct {
	ID         string   `json:"id"`
	Label      string   `json:"label,omitempty"`
	Members    []string `json:"members"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Radius     float64  `json:"radius"`
	Importance float64  `json:"importance"`
}

// Render converts the snapshot into the renderer-facing shape.
func (s Snapshot) Render() RenderGraph {
	out := RenderGraph{
		Nodes: make([]RenderNode, 0, len(s.Nodes)),
		Links: make([]RenderLink, 0, len(s.Connections)),
		State: s.State.String(),
		Ticks: s.Iteration,
	}
	for _, n := range s.Nodes {
		out.Nodes = append(out.Nodes, RenderNode{
			ID:         n.ID,
			Label:      n.Label,
			X:          n.Pos.X,
			Y:          n.Pos.Y,
			Radius:     n.Radius,
			Importance: n.Importance,
			Cluster:    n.ClusterID,
		})
	}
	for _, c := range s.Connections {
		out.Links = append(out.Links, RenderLink{
			Source:    c.Source,
			Target:    c.Target,
			Type:      c.Type.String(),
			Strength:  c.Strength,
			Thickness: c.Thickness(),
			Opacity:   c.Opacity(),
		})
	}
	for _, c := range s.Clusters {
		out.Clusters = append(out.Clusters, RenderCluster{
			ID:         c.ID,
			Label:      c.Label,
			Members:    c.Members,
			X:          c.Centroid.X,
			Y:          c.Centroid.Y,
			Radius:     c.Radius,
			Importance: c.Importance,
		})
	}
	return out
}
