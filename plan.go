// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import (
	"container/heap"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxBlockSize is the implementation-defined cap on block_size accepted
// by Compile. It bounds the arena a Runtime will allocate and is far
// above any plausible host audio callback size.
const MaxBlockSize = 1 << 20

// scheduledNode is one entry in a Plan's topological schedule: a live
// node together with its resolved input routing (one BufferId per
// input port, or the noBuffer/directOut sentinels) and output routing
// (one BufferId per output port, or directOut).
type scheduledNode struct {
	id      NodeId
	typ     NodeType
	inputs  []BufferId
	outputs []BufferId
}

// Plan is the immutable, compiled execution artifact produced by
// Compile. It captures only indices and routing tables: it does not
// retain a reference to the Graph that produced it (the Runtime
// borrows the Graph separately, for node parameters).
type Plan struct {
	blockSize   int
	schedule    []scheduledNode
	bufferCount int
	sinkPos     int // index into schedule of the OutputSink node
}

// BlockSize returns the block size this Plan was compiled for.
func (p *Plan) BlockSize() int { return p.blockSize }

// BufferCount returns the number of distinct reusable audio-rate
// buffers the Runtime must allocate in its arena.
func (p *Plan) BufferCount() int { return p.bufferCount }

// Recorder receives Compile latency/outcome observations. metrics.Recorder
// implements it; Compile works fine with a nil Recorder.
type Recorder interface {
	ObserveCompile(d time.Duration, ok bool)
}

type compileOptions struct {
	logger   zerolog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// CompileOption configures a Compile call with ambient concerns
// (logging, tracing, metrics) that never run on the RT path.
type CompileOption func(*compileOptions)

// WithLogger attaches a zerolog.Logger that Compile uses to report
// progress and failure context at Debug/Info/Warn level.
func WithLogger(l zerolog.Logger) CompileOption {
	return func(o *compileOptions) { o.logger = l }
}

// WithTracer wraps Compile in an OpenTelemetry span using tr.
func WithTracer(tr trace.Tracer) CompileOption {
	return func(o *compileOptions) { o.tracer = tr }
}

// WithRecorder routes compile latency and outcome to rec.
func WithRecorder(rec Recorder) CompileOption {
	return func(o *compileOptions) { o.recorder = rec }
}

// Compile validates g (I1-I5), computes a canonical topological
// schedule, assigns the buffer pool, and resolves the sink, returning
// an immutable Plan. Compile may allocate freely; it is never called
// from the RT thread.
//
// Compile never partially mutates observable state: on any failure it
// returns a nil Plan and a *PlanError collecting every problem found.
func Compile(ctx context.Context, g *Graph, blockSize int, opts ...CompileOption) (*Plan, error) {
	var o compileOptions
	o.logger = zerolog.Nop()
	for _, opt := range opts {
		opt(&o)
	}

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "sig.Compile")
		defer span.End()
		span.SetAttributes(
			attribute.Int("sig.node_count", len(g.LiveNodes())),
			attribute.Int("sig.edge_count", len(g.Edges())),
			attribute.Int("sig.block_size", blockSize),
		)
	}
	_ = ctx

	start := time.Now()
	plan, err := compile(g, blockSize, o.logger)
	if span != nil {
		span.SetAttributes(attribute.Bool("sig.ok", err == nil))
	}
	if o.recorder != nil {
		o.recorder.ObserveCompile(time.Since(start), err == nil)
	}
	return plan, err
}

func compile(g *Graph, blockSize int, log zerolog.Logger) (*Plan, error) {
	live := g.LiveNodes()
	edges := g.Edges()

	log.Debug().Int("nodes", len(live)).Int("edges", len(edges)).Msg("compiling plan")

	if blockSize <= 0 || blockSize > MaxBlockSize {
		err := &InvalidBlockSizeError{BlockSize: blockSize}
		log.Warn().Err(err).Msg("plan compile rejected")
		return nil, planErr(err)
	}

	if errs := validateEdges(g); len(errs) > 0 {
		log.Warn().Int("errors", len(errs)).Msg("plan compile: edge validation failed")
		return nil, planErr(errs...)
	}

	order, err := topoSort(live, edges)
	if err != nil {
		log.Warn().Err(err).Msg("plan compile: cycle detected")
		return nil, planErr(err)
	}

	if errs := checkRequiredInputs(g, order, edges); len(errs) > 0 {
		log.Warn().Int("errors", len(errs)).Msg("plan compile: missing required input")
		return nil, planErr(errs...)
	}

	sinkPos, err := resolveSink(g, order)
	if err != nil {
		log.Warn().Err(err).Msg("plan compile: sink resolution failed")
		return nil, planErr(err)
	}

	schedule, bufferCount := allocateBuffers(g, order, edges, sinkPos)

	log.Info().
		Int("nodes", len(schedule)).
		Int("buffers", bufferCount).
		Int("sink_pos", sinkPos).
		Msg("plan compiled")

	return &Plan{
		blockSize:   blockSize,
		schedule:    schedule,
		bufferCount: bufferCount,
		sinkPos:     sinkPos,
	}, nil
}

func validateEdges(g *Graph) []error {
	var errs []error
	seen := make(map[[2]NodeId]bool, len(g.Edges()))
	for _, e := range g.Edges() {
		fromType, ok := g.Node(e.FromNode)
		if !ok {
			errs = append(errs, nodeAbsent(e.FromNode))
			continue
		}
		toType, ok := g.Node(e.ToNode)
		if !ok {
			errs = append(errs, nodeAbsent(e.ToNode))
			continue
		}
		outs := fromType.OutputPorts()
		if int(e.FromPort) < 0 || int(e.FromPort) >= len(outs) {
			errs = append(errs, portAbsent(e.FromNode, e.FromPort, false))
			continue
		}
		ins := toType.InputPorts()
		if int(e.ToPort) < 0 || int(e.ToPort) >= len(ins) {
			errs = append(errs, portAbsent(e.ToNode, e.ToPort, true))
			continue
		}
		fp, tp := outs[e.FromPort], ins[e.ToPort]
		if fp.Rate == Event || tp.Rate == Event || e.Rate == Event {
			errs = append(errs, &EventRateError{Edge: e})
			continue
		}
		if fp.Rate != e.Rate || tp.Rate != e.Rate {
			errs = append(errs, rateMismatch(e, fp.Rate, tp.Rate))
			continue
		}
		key := [2]NodeId{e.ToNode, NodeId(e.ToPort)}
		if seen[key] {
			errs = append(errs, multipleWriters(e.ToNode, e.ToPort))
			continue
		}
		seen[key] = true
	}
	return errs
}

// idHeap is a min-heap of NodeId, used to break Kahn's-algorithm ties
// by ascending id so the schedule is a canonical function of the graph.
type idHeap []NodeId

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(NodeId)) }
func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func topoSort(live []NodeId, edges []Edge) ([]NodeId, error) {
	indeg := make(map[NodeId]int, len(live))
	outEdges := make(map[NodeId][]NodeId, len(live))
	for _, id := range live {
		indeg[id] = 0
	}
	for _, e := range edges {
		indeg[e.ToNode]++
		outEdges[e.FromNode] = append(outEdges[e.FromNode], e.ToNode)
	}

	ready := &idHeap{}
	for _, id := range live {
		if indeg[id] == 0 {
			heap.Push(ready, id)
		}
	}

	order := make([]NodeId, 0, len(live))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(NodeId)
		order = append(order, id)
		for _, next := range outEdges[id] {
			indeg[next]--
			if indeg[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(order) != len(live) {
		scheduled := make(map[NodeId]bool, len(order))
		for _, id := range order {
			scheduled[id] = true
		}
		for _, id := range live {
			if !scheduled[id] {
				return nil, &CycleError{Node: id}
			}
		}
	}
	return order, nil
}

func checkRequiredInputs(g *Graph, order []NodeId, edges []Edge) []error {
	connected := make(map[[2]NodeId]bool, len(edges))
	for _, e := range edges {
		connected[[2]NodeId{e.ToNode, NodeId(e.ToPort)}] = true
	}
	var errs []error
	for _, id := range order {
		typ, _ := g.Node(id)
		req := typ.RequiredInputs()
		for i, mandatory := range req {
			if !mandatory {
				continue
			}
			if !connected[[2]NodeId{id, NodeId(i)}] {
				errs = append(errs, &MissingRequiredInputError{Node: id, Port: PortId(i)})
			}
		}
	}
	return errs
}

func resolveSink(g *Graph, order []NodeId) (int, error) {
	var sinks []NodeId
	var sinkPos int
	for pos, id := range order {
		typ, _ := g.Node(id)
		if _, ok := typ.(OutputSink); ok {
			sinks = append(sinks, id)
			sinkPos = pos
		}
	}
	switch len(sinks) {
	case 0:
		return 0, &NoSinkError{}
	case 1:
		return sinkPos, nil
	default:
		return 0, &MultipleSinksError{Sinks: sinks}
	}
}

// allocateBuffers performs linear-scan, free-list buffer assignment:
// each output port is assigned a BufferId from a smallest-first free
// list (or the pool grows), and is released back to the free list once
// every consumer in the topological order has read it. The sink's
// producer is special-cased to write directly to the host output slice
// when it has no other consumers.
func allocateBuffers(g *Graph, order []NodeId, edges []Edge, sinkPos int) ([]scheduledNode, int) {
	pos := make(map[NodeId]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	type outKey struct {
		node NodeId
		port PortId
	}
	consumersOf := make(map[outKey][]int)
	producerOf := make(map[[2]NodeId]outKey) // (toNode,toPort)->producer
	for _, e := range edges {
		k := outKey{e.FromNode, e.FromPort}
		consumersOf[k] = append(consumersOf[k], pos[e.ToNode])
		producerOf[[2]NodeId{e.ToNode, NodeId(e.ToPort)}] = k
	}

	sinkId := order[sinkPos]
	var directKey outKey
	hasDirect := false
	if prod, ok := producerOf[[2]NodeId{sinkId, 0}]; ok {
		if len(consumersOf[prod]) == 1 {
			directKey = prod
			hasDirect = true
		}
	}

	free := make([]BufferId, 0, 8)
	var nextId BufferId
	alloc := func() BufferId {
		if len(free) > 0 {
			id := free[0]
			free = free[1:]
			return id
		}
		id := nextId
		nextId++
		return id
	}
	release := func(id BufferId) {
		i := 0
		for i < len(free) && free[i] < id {
			i++
		}
		free = append(free, 0)
		copy(free[i+1:], free[i:])
		free[i] = id
	}

	pendingRelease := make([][]BufferId, len(order))
	bufOf := make(map[outKey]BufferId, len(consumersOf))

	schedule := make([]scheduledNode, len(order))
	for i, id := range order {
		typ, _ := g.Node(id)
		outs := typ.OutputPorts()
		outBufs := make([]BufferId, len(outs))
		for p := range outs {
			k := outKey{id, PortId(p)}
			if hasDirect && k == directKey {
				outBufs[p] = directOut
				continue
			}
			bid := alloc()
			outBufs[p] = bid
			bufOf[k] = bid

			releasePos := i
			for _, c := range consumersOf[k] {
				if c > releasePos {
					releasePos = c
				}
			}
			pendingRelease[releasePos] = append(pendingRelease[releasePos], bid)
		}

		ins := typ.InputPorts()
		inBufs := make([]BufferId, len(ins))
		for p := range ins {
			prod, ok := producerOf[[2]NodeId{id, PortId(p)}]
			if !ok {
				inBufs[p] = noBuffer
				continue
			}
			if hasDirect && prod == directKey {
				inBufs[p] = directOut
				continue
			}
			inBufs[p] = bufOf[prod]
		}

		schedule[i] = scheduledNode{id: id, typ: typ, inputs: inBufs, outputs: outBufs}

		for _, bid := range pendingRelease[i] {
			release(bid)
		}
	}

	return schedule, int(nextId)
}

// String renders a stable, deterministic textual form of the Plan: a
// header (node count, buffer count, sink node id) followed by one line
// per scheduled node naming its type, input routing, and output
// routing. This is the golden-snapshot oracle for determinism tests;
// its exact format is a test contract.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan nodes=%d buffers=%d sink=%d\n", len(p.schedule), p.bufferCount, p.schedule[p.sinkPos].id)
	for _, sn := range p.schedule {
		fmt.Fprintf(&b, "  node %d %s in=%s out=%s\n",
			sn.id, nodeTypeTag(sn.typ), formatBufIds(sn.inputs), formatBufIds(sn.outputs))
	}
	return b.String()
}

func nodeTypeTag(t NodeType) string {
	switch t.(type) {
	case SineOsc:
		return "SineOsc"
	case Gain:
		return "Gain"
	case Mix:
		return "Mix"
	case OutputSink:
		return "OutputSink"
	case External:
		return "External"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func formatBufIds(ids []BufferId) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		switch id {
		case noBuffer:
			b.WriteString("none")
		case directOut:
			b.WriteString("out")
		default:
			fmt.Fprintf(&b, "%d", id)
		}
	}
	b.WriteByte(']')
	return b.String()
}
