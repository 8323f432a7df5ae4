// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import (
	"errors"
	"testing"
)

func TestAddNodeAssignsAscendingIds(t *testing.T) {
	var g Graph
	a := g.AddNode(SineOsc{Freq: 440})
	b := g.AddNode(Gain{Gain: 1})
	if a != 0 || b != 1 {
		t.Fatalf("got ids %d, %d, want 0, 1", a, b)
	}
}

func TestAddEdgeRejectsAbsentNode(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{})
	err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: 99, ToPort: 0, Rate: Audio})
	var want *NodeAbsentError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want *NodeAbsentError", err)
	}
}

func TestAddEdgeRejectsPortOutOfRange(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{})
	sink := g.AddNode(OutputSink{})
	err := g.AddEdge(Edge{FromNode: osc, FromPort: 3, ToNode: sink, ToPort: 0, Rate: Audio})
	var want *PortAbsentError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want *PortAbsentError", err)
	}
}

func TestAddEdgeRejectsRateMismatch(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{})
	sink := g.AddNode(OutputSink{})
	err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Control})
	var want *RateMismatchError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want *RateMismatchError", err)
	}
}

func TestAddEdgeRejectsEventRate(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{})
	sink := g.AddNode(OutputSink{})
	err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Event})
	var want *EventRateError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want *EventRateError", err)
	}
}

func TestAddEdgeRejectsSecondWriter(t *testing.T) {
	var g Graph
	a := g.AddNode(SineOsc{})
	b := g.AddNode(SineOsc{})
	sink := g.AddNode(OutputSink{})
	if err := g.AddEdge(Edge{FromNode: a, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("first AddEdge: %v", err)
	}
	err := g.AddEdge(Edge{FromNode: b, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Audio})
	var want *MultipleWritersError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want *MultipleWritersError", err)
	}
}

func TestRemoveNodeDropsTouchingEdges(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{})
	sink := g.AddNode(OutputSink{})
	if err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.RemoveNode(osc); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if len(g.Edges()) != 0 {
		t.Fatalf("got %d edges, want 0", len(g.Edges()))
	}
	if _, ok := g.Node(osc); ok {
		t.Fatal("removed node still reports live")
	}
	if err := g.RemoveNode(osc); err == nil {
		t.Fatal("second RemoveNode: got nil error, want *NodeAbsentError")
	}
}

func TestLiveNodesSkipsTombstones(t *testing.T) {
	var g Graph
	a := g.AddNode(SineOsc{})
	b := g.AddNode(SineOsc{})
	g.AddNode(SineOsc{})
	if err := g.RemoveNode(b); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	live := g.LiveNodes()
	if len(live) != 2 || live[0] != a {
		t.Fatalf("got %v, want [%d ...] len 2", live, a)
	}
}
