// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import "fmt"

// NodeAbsentError reports that a NodeId does not name a live node,
// either because it was never assigned or because the node at that id
// has been removed (tombstoned).
type NodeAbsentError struct {
	Id NodeId
}

func (e *NodeAbsentError) Error() string {
	return fmt.Sprintf("sig: node %d absent", e.Id)
}

func nodeAbsent(id NodeId) *NodeAbsentError { return &NodeAbsentError{Id: id} }

// PortAbsentError reports that a PortId is out of range for the
// direction (input or output) it was used in.
type PortAbsentError struct {
	Node    NodeId
	Port    PortId
	IsInput bool
}

func (e *PortAbsentError) Error() string {
	dir := "input"
	if !e.IsInput {
		dir = "output"
	}
	return fmt.Sprintf("sig: node %d has no %s port %d", e.Node, dir, e.Port)
}

func portAbsent(node NodeId, port PortId, isInput bool) *PortAbsentError {
	return &PortAbsentError{Node: node, Port: port, IsInput: isInput}
}

// RateMismatchError reports that an edge's declared rate disagrees with
// one or both of its endpoint ports' rates.
type RateMismatchError struct {
	Edge        Edge
	FromRate    Rate
	ToRate      Rate
}

func (e *RateMismatchError) Error() string {
	return fmt.Sprintf("sig: edge rate %s does not match endpoints (from=%s, to=%s)",
		e.Edge.Rate, e.FromRate, e.ToRate)
}

func rateMismatch(edge Edge, fromRate, toRate Rate) *RateMismatchError {
	return &RateMismatchError{Edge: edge, FromRate: fromRate, ToRate: toRate}
}

// MultipleWritersError reports that an input port already has an
// incoming edge; the single-writer invariant (I3) forbids a second one.
type MultipleWritersError struct {
	Node NodeId
	Port PortId
}

func (e *MultipleWritersError) Error() string {
	return fmt.Sprintf("sig: node %d input port %d already has a writer", e.Node, e.Port)
}

func multipleWriters(node NodeId, port PortId) *MultipleWritersError {
	return &MultipleWritersError{Node: node, Port: port}
}

// EdgeIndexError reports an out-of-range edge index passed to
// Graph.RemoveEdge.
type EdgeIndexError struct {
	Index int
	Len    int
}

func (e *EdgeIndexError) Error() string {
	return fmt.Sprintf("sig: edge index %d out of range (have %d edges)", e.Index, e.Len)
}

// EventRateError reports that an edge tried to connect at Rate Event,
// which this version of the kernel never schedules (Open Question (i)).
type EventRateError struct {
	Edge Edge
}

func (e *EventRateError) Error() string {
	return "sig: Event-rate edges are not schedulable in this version"
}

// CycleError reports that Plan compilation could not find a
// topological order for the graph's live nodes: Kahn's algorithm
// stalled with the named node still unresolved, meaning it and some
// ancestor of it form a cycle.
type CycleError struct {
	Node NodeId
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("sig: cycle detected involving node %d", e.Node)
}

// MissingRequiredInputError reports that a required input port of a
// live, reachable node has no incoming edge.
type MissingRequiredInputError struct {
	Node NodeId
	Port PortId
}

func (e *MissingRequiredInputError) Error() string {
	return fmt.Sprintf("sig: node %d is missing required input on port %d", e.Node, e.Port)
}

// NoSinkError reports that the graph has no live OutputSink node.
type NoSinkError struct{}

func (e *NoSinkError) Error() string { return "sig: graph has no OutputSink node" }

// MultipleSinksError reports that the graph has more than one live
// OutputSink node.
type MultipleSinksError struct {
	Sinks []NodeId
}

func (e *MultipleSinksError) Error() string {
	return fmt.Sprintf("sig: graph has %d OutputSink nodes, want exactly 1", len(e.Sinks))
}

// InvalidBlockSizeError reports that Compile was called with a block
// size that is not a positive integer, or exceeds the
// implementation-defined cap, or that New was given a block size
// different from the one the Plan was compiled for.
type InvalidBlockSizeError struct {
	BlockSize int
}

func (e *InvalidBlockSizeError) Error() string {
	return fmt.Sprintf("sig: invalid block size %d", e.BlockSize)
}

// InvalidSampleRateError reports that Runtime construction was given a
// non-positive sample rate.
type InvalidSampleRateError struct {
	SampleRate float64
}

func (e *InvalidSampleRateError) Error() string {
	return fmt.Sprintf("sig: invalid sample rate %v", e.SampleRate)
}

// BadBlockSizeError is the one error process_block may return: the
// caller's output slice did not have the length declared at Runtime
// construction.
type BadBlockSizeError struct {
	Got, Want int
}

func (e *BadBlockSizeError) Error() string {
	return fmt.Sprintf("sig: process_block: got output length %d, want %d", e.Got, e.Want)
}

// PlanError collects every problem Compile discovered while
// validating a Graph. It implements Unwrap() []error so individual
// failures can still be matched with errors.As.
type PlanError struct {
	Errs []error
}

func (e *PlanError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	return fmt.Sprintf("sig: plan compile failed with %d errors (first: %v)", len(e.Errs), e.Errs[0])
}

func (e *PlanError) Unwrap() []error { return e.Errs }

func planErr(errs ...error) *PlanError { return &PlanError{Errs: errs} }
