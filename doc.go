// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package sig provides a real-time-safe, deterministic audio
// signal-graph kernel.
//
// The kernel is implemented in three tiers, built in strict dependency
// order.
//
// Graph Tier
//
// The graph tier (graph.go, nodetype.go) is a mutable editing surface:
// a Graph accumulates nodes and edges and enforces the invariants that
// are cheap to check at edit time — live endpoints, existing ports,
// correct directions, matching rates, and single-writer inputs. It
// defers proving global acyclicity to compilation, since local edge
// insertion cannot cheaply rule out a cycle closing somewhere else in
// the graph.
//
// Plan Tier
//
// The plan tier (plan.go) compiles a Graph into an immutable Plan: a
// canonical topological schedule, a reusable scratch-buffer pool sized
// by liveness analysis, and a resolved sink routing. Compile runs off
// the real-time thread and may allocate freely; its output is a pure,
// deterministic function of the graph's structure.
//
// Runtime Tier
//
// The runtime tier (runtime.go, kernel.go) executes a Plan block by
// block. A Runtime preallocates its buffer arena and per-node state
// once, at construction, and its one real-time-safe method,
// ProcessBlock, performs no allocation, no locking, and no unbounded
// blocking. A node may signal an internal fault only by writing
// silence to its outputs and emitting a diagnostic event on the
// lock-free Diagnostics channel (diag.go) — ProcessBlock itself never
// branches on a per-node error.
//
// Node Kernels
//
// Four built-in node kernels are provided — SineOsc, Gain, Mix, and
// OutputSink — plus External, a single indirect-call escape hatch for
// user-supplied node implementations (nodetype.go). Dispatch among the
// built-ins is a static type switch; External is the only place the
// hot path pays for an indirect call, and it pays once per External
// node per block, not per sample.
package sig /* import "zikichombo.org/sigkernel" */
