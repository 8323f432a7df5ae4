// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

// Edge connects one node's output port to another node's input port.
// Rate must equal the rate of both endpoint ports for AddEdge to
// accept it.
type Edge struct {
	FromNode NodeId
	FromPort PortId
	ToNode   NodeId
	ToPort   PortId
	Rate     Rate
}

type nodeSlot struct {
	tomb bool
	typ  NodeType
}

// Graph is the mutable editing surface for a signal-graph: a sparse
// vector of nodes (tombstoned slots for removed nodes) and a flat,
// insertion-ordered vector of edges. It enforces the structural
// invariants that are cheap to check at edit time (I1-I3); global
// acyclicity (I4) is deferred to Compile, which is the only place
// a full topological sort is run — local edge insertion cannot cheaply
// prove global acyclicity without re-running it on every add.
//
// The zero value for Graph is an empty, ready-to-use graph. Iteration
// order of nodes and edges is always insertion order; that determinism
// is what makes Plan compilation deterministic.
type Graph struct {
	nodes []nodeSlot
	edges []Edge
}

// AddNode appends a new node of the given type and returns its NodeId.
// AddNode cannot fail.
func (g *Graph) AddNode(t NodeType) NodeId {
	id := NodeId(len(g.nodes))
	g.nodes = append(g.nodes, nodeSlot{typ: t})
	return id
}

// RemoveNode tombstones the node at id and drops every edge touching
// it. It returns a *NodeAbsentError if id is stale or was never
// assigned. The id itself remains valid as a lookup that reports
// "absent" — it is never reused.
func (g *Graph) RemoveNode(id NodeId) error {
	if !g.isLive(id) {
		return nodeAbsent(id)
	}
	g.nodes[id].tomb = true
	g.nodes[id].typ = nil
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.FromNode == id || e.ToNode == id {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	return nil
}

func (g *Graph) isLive(id NodeId) bool {
	return id >= 0 && int(id) < len(g.nodes) && !g.nodes[id].tomb
}

// Node looks up the NodeType stored at id. The second return value is
// false if id is stale or absent.
func (g *Graph) Node(id NodeId) (NodeType, bool) {
	if !g.isLive(id) {
		return nil, false
	}
	return g.nodes[id].typ, true
}

// Edges returns the graph's edges in insertion order. Callers must not
// mutate the returned slice.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// LiveNodes returns the ids of all non-tombstoned nodes in ascending
// (insertion) order.
func (g *Graph) LiveNodes() []NodeId {
	ids := make([]NodeId, 0, len(g.nodes))
	for i, n := range g.nodes {
		if !n.tomb {
			ids = append(ids, NodeId(i))
		}
	}
	return ids
}

// AddEdge validates and records a new edge: endpoint existence, port
// existence, port direction (from_port an output, to_port an input),
// rate equality, and the single-writer invariant (I3) on the
// destination input. On any failure the edge is not recorded and a
// specific typed error is returned.
func (g *Graph) AddEdge(e Edge) error {
	fromType, ok := g.Node(e.FromNode)
	if !ok {
		return nodeAbsent(e.FromNode)
	}
	toType, ok := g.Node(e.ToNode)
	if !ok {
		return nodeAbsent(e.ToNode)
	}

	outs := fromType.OutputPorts()
	if int(e.FromPort) < 0 || int(e.FromPort) >= len(outs) {
		return portAbsent(e.FromNode, e.FromPort, false)
	}
	ins := toType.InputPorts()
	if int(e.ToPort) < 0 || int(e.ToPort) >= len(ins) {
		return portAbsent(e.ToNode, e.ToPort, true)
	}

	fromPort := outs[e.FromPort]
	toPort := ins[e.ToPort]

	if e.Rate == Event || fromPort.Rate == Event || toPort.Rate == Event {
		return &EventRateError{Edge: e}
	}
	if fromPort.Rate != e.Rate || toPort.Rate != e.Rate {
		return rateMismatch(e, fromPort.Rate, toPort.Rate)
	}

	for _, existing := range g.edges {
		if existing.ToNode == e.ToNode && existing.ToPort == e.ToPort {
			return multipleWriters(e.ToNode, e.ToPort)
		}
	}

	g.edges = append(g.edges, e)
	return nil
}

// RemoveEdge removes the edge at index i (as indexed into Edges()).
func (g *Graph) RemoveEdge(i int) error {
	if i < 0 || i >= len(g.edges) {
		return &EdgeIndexError{Index: i, Len: len(g.edges)}
	}
	g.edges = append(g.edges[:i], g.edges[i+1:]...)
	return nil
}

// ClearEdges removes every edge, leaving nodes intact.
func (g *Graph) ClearEdges() {
	g.edges = g.edges[:0]
}
