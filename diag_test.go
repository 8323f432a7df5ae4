// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import "testing"

func TestRingFIFOOrder(t *testing.T) {
	r := newRing[int](4)
	for i := 0; i < 4; i++ {
		if !r.push(i) {
			t.Fatalf("push(%d) reported full too early", i)
		}
	}
	var dst [4]int
	n := r.drain(dst[:])
	if n != 4 {
		t.Fatalf("drain returned %d, want 4", n)
	}
	for i, v := range dst {
		if v != i {
			t.Fatalf("dst[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestRingDropsOnOverflow(t *testing.T) {
	r := newRing[int](2) // rounds up to 2
	r.push(1)
	r.push(2)
	if r.push(3) {
		t.Fatal("push succeeded past capacity")
	}
	if r.Overflow() != 1 {
		t.Fatalf("Overflow() = %d, want 1", r.Overflow())
	}
}

func TestRingCapacityRoundsToPowerOfTwo(t *testing.T) {
	r := newRing[int](5)
	if len(r.buf) != 8 {
		t.Fatalf("backing array len = %d, want 8", len(r.buf))
	}
}

func TestDiagnosticsDrainIsFIFO(t *testing.T) {
	d := NewDiagnostics(8)
	d.push(CallbackClean)
	d.push(InvariantMissingInput)
	d.push(NodeFailureSilenced)

	codes := make([]EventCode, 2)
	n := d.Drain(codes)
	if n != 2 || codes[0] != CallbackClean || codes[1] != InvariantMissingInput {
		t.Fatalf("got %v %v, want [CallbackClean InvariantMissingInput]", n, codes)
	}
	n = d.Drain(codes)
	if n != 1 || codes[0] != NodeFailureSilenced {
		t.Fatalf("got %v %v, want [NodeFailureSilenced]", n, codes[:n])
	}
}

func TestParamQueuePushAndDrain(t *testing.T) {
	q := NewParamQueue(4)
	if !q.Push(ParamUpdate{Node: 1, Param: 0, Value: 440}) {
		t.Fatal("Push reported full")
	}
	dst := make([]ParamUpdate, 1)
	n := q.drain(dst)
	if n != 1 || dst[0].Node != 1 || dst[0].Value != 440 {
		t.Fatalf("got %v %+v, want one ParamUpdate{Node:1,Value:440}", n, dst[0])
	}
}

func TestEventCodeStringIsStable(t *testing.T) {
	if CallbackClean.String() != "callback_clean" {
		t.Fatalf("CallbackClean.String() = %q, want %q", CallbackClean.String(), "callback_clean")
	}
	if reservedEventCodeStart.String() != "reserved" {
		t.Fatalf("reservedEventCodeStart.String() = %q, want %q", reservedEventCodeStart.String(), "reserved")
	}
}
