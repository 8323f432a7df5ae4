// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import "github.com/google/uuid"

// NodeType is the contract every node variant in a Graph must satisfy:
// its ordered port lists and which of its input ports are required for
// a Plan to exist. Built-in kernels (SineOsc, Gain, Mix, OutputSink) and
// the External escape hatch all implement NodeType.
//
// The set of NodeType implementations used by process_block is closed
// and dispatched with a type switch (see Runtime.ProcessBlock in
// runtime.go); this keeps the hot
// path free of indirect calls except for External, which is the one
// deliberate extension point.
type NodeType interface {
	// InputPorts returns the node's ordered input port declarations.
	InputPorts() []Port
	// OutputPorts returns the node's ordered output port declarations.
	OutputPorts() []Port
	// RequiredInputs reports, in the same order as InputPorts, whether
	// a Plan requires that input port to be connected.
	RequiredInputs() []bool
}

// SineOsc is a 0-input, 1-audio-output sine oscillator. Freq is in Hz;
// Phase is the initial phase angle in radians.
type SineOsc struct {
	Freq  float64
	Phase float64
}

func (SineOsc) InputPorts() []Port   { return nil }
func (SineOsc) OutputPorts() []Port  { return []Port{{Id: 0, Rate: Audio}} }
func (SineOsc) RequiredInputs() []bool { return nil }

// Gain is a 1-audio-input, 1-audio-output linear amplitude scaler.
type Gain struct {
	Gain float64
}

func (Gain) InputPorts() []Port    { return []Port{{Id: 0, Rate: Audio}} }
func (Gain) OutputPorts() []Port   { return []Port{{Id: 0, Rate: Audio}} }
func (Gain) RequiredInputs() []bool { return []bool{true} }

// Mix sums its two audio inputs into one audio output, unscaled.
type Mix struct{}

func (Mix) InputPorts() []Port {
	return []Port{{Id: 0, Rate: Audio}, {Id: 1, Rate: Audio}}
}
func (Mix) OutputPorts() []Port   { return []Port{{Id: 0, Rate: Audio}} }
func (Mix) RequiredInputs() []bool { return []bool{true, true} }

// OutputSink is the terminal node whose single audio input is written
// to the host output slice. A valid Plan has exactly one live
// OutputSink node.
type OutputSink struct{}

func (OutputSink) InputPorts() []Port    { return []Port{{Id: 0, Rate: Audio}} }
func (OutputSink) OutputPorts() []Port   { return nil }
func (OutputSink) RequiredInputs() []bool { return []bool{true} }

// NodeState is the opaque per-instance state an External node keeps
// between blocks; it is created once by NodeHandle.InitState and handed
// back unchanged on every subsequent ProcessBlock call for that node.
type NodeState any

// NodeHandle is the contract a user-supplied external node implementation
// must satisfy. Port metadata (InputPorts, OutputPorts,
// RequiredInputs) must be static: non-allocating lookups returning the
// same backing data on every call, since the Plan compiler and Runtime
// may call them repeatedly.
//
// InitState is called exactly once, at Runtime construction (non-RT).
// ProcessBlock is called once per block from the RT hot path and must
// honor the same no-alloc/no-lock/no-panic contract as the built-in
// kernels; the kernel does not enforce this dynamically (see sigtest
// for a test-only conformance harness).
type NodeHandle interface {
	// HandleID stably identifies this implementation independent of
	// whatever NodeId it ends up mounted at in a particular Graph.
	HandleID() uuid.UUID

	InputPorts() []Port
	OutputPorts() []Port
	// RequiredInputs is the count of leading input ports (by
	// declaration order) that must be connected for a Plan to exist.
	RequiredInputs() int

	InitState(sampleRate float64, blockSize int) NodeState
	ProcessBlock(state NodeState, inputs, outputs []Buffer, sampleRate float64, blockSize int)
}

// External defers a node's behavior to a user-supplied NodeHandle.
type External struct {
	Handle NodeHandle
}

func (e External) InputPorts() []Port  { return e.Handle.InputPorts() }
func (e External) OutputPorts() []Port { return e.Handle.OutputPorts() }

func (e External) RequiredInputs() []bool {
	ports := e.Handle.InputPorts()
	n := e.Handle.RequiredInputs()
	req := make([]bool, len(ports))
	for i := range req {
		req[i] = i < n
	}
	return req
}

// Buffer is one block's worth of samples for a single port: a
// contiguous run of block_size float32 values. The Runtime hands every
// port a block_size-long Buffer whatever its rate; a control-rate port
// is not narrowed to a single value.
type Buffer = []float32
