// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func simpleChain(t *testing.T) *Graph {
	t.Helper()
	var g Graph
	osc := g.AddNode(SineOsc{Freq: 440})
	gain := g.AddNode(Gain{Gain: 0.5})
	sink := g.AddNode(OutputSink{})
	if err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: gain, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge osc->gain: %v", err)
	}
	if err := g.AddEdge(Edge{FromNode: gain, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge gain->sink: %v", err)
	}
	return &g
}

func TestCompileIsDeterministic(t *testing.T) {
	g := simpleChain(t)
	p1, err := Compile(context.Background(), g, 64)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	p2, err := Compile(context.Background(), g, 64)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if diff := cmp.Diff(p1, p2, cmp.AllowUnexported(Plan{}, scheduledNode{})); diff != "" {
		t.Fatalf("two compiles of the same graph differ (-first +second):\n%s", diff)
	}
	if p1.String() != p2.String() {
		t.Fatal("Plan.String() differs between two compiles of the same graph")
	}
}

func TestCompileDirectToOutOptimization(t *testing.T) {
	g := simpleChain(t)
	p, err := Compile(context.Background(), g, 64)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	sinkNode := p.schedule[p.sinkPos]
	if sinkNode.inputs[0] != directOut {
		t.Fatalf("sink input = %v, want directOut", sinkNode.inputs[0])
	}
	if p.BufferCount() != 1 {
		t.Fatalf("BufferCount() = %d, want 1 (osc->gain buffer only)", p.BufferCount())
	}
}

func TestCompileFanOutDoesNotGetDirectToOut(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{Freq: 440})
	gainA := g.AddNode(Gain{Gain: 0.5})
	gainB := g.AddNode(Gain{Gain: 0.25})
	mix := g.AddNode(Mix{})
	sink := g.AddNode(OutputSink{})
	mustEdge := func(e Edge) {
		t.Helper()
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge %+v: %v", e, err)
		}
	}
	mustEdge(Edge{FromNode: osc, FromPort: 0, ToNode: gainA, ToPort: 0, Rate: Audio})
	mustEdge(Edge{FromNode: osc, FromPort: 0, ToNode: gainB, ToPort: 0, Rate: Audio})
	mustEdge(Edge{FromNode: gainA, FromPort: 0, ToNode: mix, ToPort: 0, Rate: Audio})
	mustEdge(Edge{FromNode: gainB, FromPort: 0, ToNode: mix, ToPort: 1, Rate: Audio})
	mustEdge(Edge{FromNode: mix, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Audio})

	p, err := Compile(context.Background(), &g, 64)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	sinkNode := p.schedule[p.sinkPos]
	if sinkNode.inputs[0] != directOut {
		t.Fatalf("sink input = %v, want directOut (mix has one consumer, the sink)", sinkNode.inputs[0])
	}
	oscPos := -1
	for i, sn := range p.schedule {
		if sn.id == osc {
			oscPos = i
		}
	}
	if oscPos < 0 {
		t.Fatal("osc missing from schedule")
	}
	// osc fans out to two consumers, so it must not be direct-to-out.
	if p.schedule[oscPos].outputs[0] == directOut {
		t.Fatal("fanned-out producer got directOut, want a real buffer id")
	}
}

func TestCompileRejectsCycle(t *testing.T) {
	var g Graph
	a := g.AddNode(Gain{Gain: 1})
	b := g.AddNode(Gain{Gain: 1})
	sink := g.AddNode(OutputSink{})
	if err := g.AddEdge(Edge{FromNode: a, FromPort: 0, ToNode: b, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge a->b: %v", err)
	}
	if err := g.AddEdge(Edge{FromNode: b, FromPort: 0, ToNode: a, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge b->a: %v", err)
	}
	if err := g.AddEdge(Edge{FromNode: a, FromPort: 0, ToNode: sink, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge a->sink: %v", err)
	}
	_, err := Compile(context.Background(), &g, 64)
	var planErr *PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("got %v, want *PlanError", err)
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("got %v, want a wrapped *CycleError", err)
	}
}

func TestCompileRejectsMissingRequiredInput(t *testing.T) {
	var g Graph
	g.AddNode(Gain{Gain: 1})
	sink := g.AddNode(OutputSink{})
	_ = sink
	_, err := Compile(context.Background(), &g, 64)
	var missing *MissingRequiredInputError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want a wrapped *MissingRequiredInputError", err)
	}
}

func TestCompileRejectsNoSink(t *testing.T) {
	var g Graph
	g.AddNode(SineOsc{Freq: 440})
	_, err := Compile(context.Background(), &g, 64)
	var want *NoSinkError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want a wrapped *NoSinkError", err)
	}
}

func TestCompileRejectsMultipleSinks(t *testing.T) {
	var g Graph
	osc := g.AddNode(SineOsc{Freq: 440})
	s1 := g.AddNode(OutputSink{})
	s2 := g.AddNode(OutputSink{})
	if err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: s1, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{FromNode: osc, FromPort: 0, ToNode: s2, ToPort: 0, Rate: Audio}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	_, err := Compile(context.Background(), &g, 64)
	var want *MultipleSinksError
	if !errors.As(err, &want) {
		t.Fatalf("got %v, want a wrapped *MultipleSinksError", err)
	}
}

func TestCompileRejectsInvalidBlockSize(t *testing.T) {
	g := simpleChain(t)
	for _, bs := range []int{0, -1, MaxBlockSize + 1} {
		_, err := Compile(context.Background(), g, bs)
		var want *InvalidBlockSizeError
		if !errors.As(err, &want) {
			t.Fatalf("blockSize=%d: got %v, want *InvalidBlockSizeError", bs, err)
		}
	}
}

func TestPlanStringFormat(t *testing.T) {
	g := simpleChain(t)
	p, err := Compile(context.Background(), g, 64)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "plan nodes=3 buffers=1 sink=2\n" +
		"  node 0 SineOsc in=[] out=[0]\n" +
		"  node 1 Gain in=[0] out=[out]\n" +
		"  node 2 OutputSink in=[out] out=[]\n"
	if got := p.String(); got != want {
		t.Fatalf("Plan.String() =\n%s\nwant\n%s", got, want)
	}
}
