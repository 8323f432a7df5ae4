// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import (
	"fmt"
	"reflect"
)

const (
	// DefaultDiagnosticsCapacity is the default size of a Runtime's
	// diagnostics ring buffer.
	DefaultDiagnosticsCapacity = 256
	// DefaultParamQueueCapacity is the default size of a Runtime's
	// parameter-update ring buffer.
	DefaultParamQueueCapacity = 64
)

// Runtime is the stateful RT executor built once from a compiled Plan.
// It owns a preallocated buffer arena and per-node state and exposes
// exactly one RT-safe method, ProcessBlock. Every other method here is
// non-RT (construction, diagnostics drain, parameter push from the
// control thread).
type Runtime struct {
	plan       *Plan
	sampleRate float64
	blockSize  int

	arena    []float32
	bufViews [][]float32

	state []nodeState
	posOf map[NodeId]int

	diag   *Diagnostics
	params *ParamQueue

	inScratch  []Buffer
	outScratch []Buffer
	paramBatch []ParamUpdate
}

// GraphMismatchError reports that the Graph passed to New no longer
// agrees with the Plan it was asked to run: the node named is either
// no longer live or has changed type since compilation.
type GraphMismatchError struct {
	Node NodeId
}

func (e *GraphMismatchError) Error() string {
	return fmt.Sprintf("sig: graph does not match the plan it was compiled from, at node %d", e.Node)
}

// New builds a Runtime for plan against graph, with default
// diagnostics and parameter queue capacities. This is the only place a
// Runtime allocates: the arena, per-node state, and scratch buffers
// are sized once here and never resized by ProcessBlock.
func New(plan *Plan, graph *Graph, sampleRate float64, blockSize int) (*Runtime, error) {
	return NewWithCapacity(plan, graph, sampleRate, blockSize, DefaultDiagnosticsCapacity, DefaultParamQueueCapacity)
}

// NewWithCapacity is like New but lets the caller size the
// diagnostics and parameter-update ring buffers.
func NewWithCapacity(plan *Plan, graph *Graph, sampleRate float64, blockSize int, diagCapacity, paramCapacity int) (*Runtime, error) {
	if sampleRate <= 0 {
		return nil, &InvalidSampleRateError{SampleRate: sampleRate}
	}
	if blockSize != plan.blockSize {
		return nil, &InvalidBlockSizeError{BlockSize: blockSize}
	}
	for _, sn := range plan.schedule {
		cur, ok := graph.Node(sn.id)
		if !ok || reflect.TypeOf(cur) != reflect.TypeOf(sn.typ) {
			return nil, &GraphMismatchError{Node: sn.id}
		}
	}

	rt := &Runtime{
		plan:       plan,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		arena:      make([]float32, plan.bufferCount*blockSize),
		bufViews:   make([][]float32, plan.bufferCount),
		state:      make([]nodeState, len(plan.schedule)),
		posOf:      make(map[NodeId]int, len(plan.schedule)),
		diag:       NewDiagnostics(diagCapacity),
		params:     NewParamQueue(paramCapacity),
		paramBatch: make([]ParamUpdate, paramCapacity),
	}
	for i := range rt.bufViews {
		rt.bufViews[i] = rt.arena[i*blockSize : (i+1)*blockSize]
	}

	maxIn, maxOut := 0, 0
	for i, sn := range plan.schedule {
		rt.posOf[sn.id] = i
		switch t := sn.typ.(type) {
		case SineOsc:
			rt.state[i] = nodeState{phase: t.Phase, freq: t.Freq}
		case Gain:
			rt.state[i] = nodeState{gain: t.Gain}
		case External:
			rt.state[i] = nodeState{ext: t.Handle.InitState(sampleRate, blockSize)}
			if n := len(sn.inputs); n > maxIn {
				maxIn = n
			}
			if n := len(sn.outputs); n > maxOut {
				maxOut = n
			}
		}
	}
	rt.inScratch = make([]Buffer, maxIn)
	rt.outScratch = make([]Buffer, maxOut)

	return rt, nil
}

// Diagnostics returns the Runtime's diagnostics channel, for draining
// from the control thread.
func (rt *Runtime) Diagnostics() *Diagnostics { return rt.diag }

// SampleRate returns the sample rate the Runtime was built for.
func (rt *Runtime) SampleRate() float64 { return rt.sampleRate }

// BlockSize returns the block size every ProcessBlock call must match.
func (rt *Runtime) BlockSize() int { return rt.blockSize }

// PushParam enqueues a parameter update for delivery at the start of
// the next ProcessBlock call. Callable from the control thread only;
// non-blocking.
func (rt *Runtime) PushParam(u ParamUpdate) bool { return rt.params.Push(u) }

func (rt *Runtime) resolve(id BufferId, out []float32) []float32 {
	switch id {
	case noBuffer:
		return nil
	case directOut:
		return out
	default:
		return rt.bufViews[id]
	}
}

func (rt *Runtime) applyParamUpdate(u ParamUpdate) {
	pos, ok := rt.posOf[u.Node]
	if !ok {
		return
	}
	st := &rt.state[pos]
	switch rt.plan.schedule[pos].typ.(type) {
	case SineOsc:
		if u.Param == 0 {
			st.freq = u.Value
		}
	case Gain:
		if u.Param == 0 {
			st.gain = u.Value
		}
	}
	rt.diag.push(ParamUpdateDelivered)
}

// ProcessBlock is the RT hot path: it evaluates every node in the
// Plan's topological order into out. It must not allocate, lock, or
// panic, and does not.
//
// Precondition: len(out) == the Runtime's block size. On violation,
// ProcessBlock returns *BadBlockSizeError without modifying out; this
// is the only error process_block can surface. Every other fault is
// absorbed by a node kernel writing silence and emitting a diagnostic
// (see kernel.go).
func (rt *Runtime) ProcessBlock(out []float32) error {
	if len(out) != rt.blockSize {
		return &BadBlockSizeError{Got: len(out), Want: rt.blockSize}
	}

	n := rt.params.drain(rt.paramBatch)
	for i := 0; i < n; i++ {
		rt.applyParamUpdate(rt.paramBatch[i])
	}

	for i, sn := range rt.plan.schedule {
		st := &rt.state[i]
		switch t := sn.typ.(type) {
		case SineOsc:
			outBuf := rt.resolve(sn.outputs[0], out)
			kernelSineOsc(st, outBuf, rt.sampleRate, rt.blockSize)
		case Gain:
			inBuf := rt.resolve(sn.inputs[0], out)
			outBuf := rt.resolve(sn.outputs[0], out)
			kernelGain(st, inBuf, outBuf, rt.diag)
		case Mix:
			aBuf := rt.resolve(sn.inputs[0], out)
			bBuf := rt.resolve(sn.inputs[1], out)
			outBuf := rt.resolve(sn.outputs[0], out)
			kernelMix(aBuf, bBuf, outBuf, rt.diag)
		case OutputSink:
			if sn.inputs[0] == directOut {
				continue
			}
			inBuf := rt.resolve(sn.inputs[0], out)
			kernelOutputSink(inBuf, out)
		case External:
			ins := rt.inScratch[:len(sn.inputs)]
			for p, id := range sn.inputs {
				ins[p] = rt.resolve(id, out)
			}
			outs := rt.outScratch[:len(sn.outputs)]
			for p, id := range sn.outputs {
				outs[p] = rt.resolve(id, out)
			}
			t.Handle.ProcessBlock(st.ext, ins, outs, rt.sampleRate, rt.blockSize)
		}
	}

	rt.diag.push(CallbackClean)
	return nil
}
