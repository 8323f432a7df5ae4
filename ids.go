// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

// NodeId is an opaque, stable index identifying a node within a Graph.
//
// NodeIds are assigned monotonically on insertion and are never reused
// within the lifetime of a Graph, even after the node they name is
// removed: removal tombstones the slot rather than reclaiming the id.
// This is what lets a Plan hold onto NodeIds across compilation without
// retaining a reference to the Graph itself.
type NodeId int

// PortId is the ordinal position of a port within a node's declared,
// ordered input or output port list. A PortId is only meaningful when
// paired with a NodeId and a direction (input or output); the two
// directions have independent PortId numbering.
type PortId int

// BufferId names one of the Plan's reusable audio-rate scratch buffers.
// BufferId values are assigned by the Plan compiler and are meaningless
// outside the Plan/Runtime pair that produced them.
type BufferId int32

// Sentinel BufferId values used in Plan routing tables.
const (
	// noBuffer marks an input port with nothing feeding it. Only
	// possible for an External node's non-required input ports; every
	// required input is guaranteed connected by I5 before a Plan exists.
	noBuffer BufferId = -1

	// directOut marks an output port (and any input port reading it)
	// that the Plan has routed straight to the host-supplied output
	// slice for this block, bypassing the scratch arena entirely.
	directOut BufferId = -2
)
