// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package sigtest provides a small conformance harness for real-time
// safety, usable both by this module's own tests and by anyone
// implementing sigkernel.NodeHandle who wants the same guarantee on
// their own ProcessBlock.
package sigtest

import "testing"

// CountAllocs fails t if f allocates on the heap. It runs f enough
// times (via testing.AllocsPerRun) to make a single stray allocation
// visible above GC noise, and is meant to wrap a single
// Runtime.ProcessBlock call or a NodeHandle.ProcessBlock call, not a
// whole test body.
func CountAllocs(t *testing.T, f func()) {
	t.Helper()
	n := testing.AllocsPerRun(100, f)
	if n != 0 {
		t.Errorf("got %v allocations per run, want 0", n)
	}
}
