// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import "sync/atomic"

// EventCode is a diagnostic event emitted by the RT thread and drained
// by the control thread. The enumeration is closed except for the
// reserved range left for extension.
type EventCode uint8

const (
	ParamUpdateDelivered EventCode = iota
	SampleBufferFilled
	ControlMsgProcessed
	CallbackClean
	InvariantMissingInput
	NodeFailureSilenced

	// reservedEventCodeStart begins the range left open for extension;
	// codes at or above it are never emitted by this package.
	reservedEventCodeStart
)

var eventCodeNames = [...]string{
	ParamUpdateDelivered:  "param_update_delivered",
	SampleBufferFilled:    "sample_buffer_filled",
	ControlMsgProcessed:   "control_msg_processed",
	CallbackClean:         "callback_clean",
	InvariantMissingInput: "invariant_missing_input",
	NodeFailureSilenced:   "node_failure_silenced",
}

// String returns a stable, metrics-friendly name for the code. Codes
// at or beyond reservedEventCodeStart report "reserved".
func (c EventCode) String() string {
	if int(c) < len(eventCodeNames) {
		return eventCodeNames[c]
	}
	return "reserved"
}

// ring is a single-producer, single-consumer, fixed-capacity circular
// buffer of T, implemented as a Lamport ring with acquire/release
// semantics on the head/tail indices (same algorithm the pack's
// hayabusa-cloud/lfq SPSC variant documents). Capacity is rounded up
// to a power of two so index wraparound is a mask instead of a modulo.
//
// Enqueue and Dequeue are both non-blocking: Enqueue drops the item and
// bumps an overflow counter when full; Dequeue returns what's
// available, possibly nothing, without waiting for a producer.
type ring[T any] struct {
	buf  []T
	mask uint32

	head atomic.Uint32 // next slot the consumer will read
	tail atomic.Uint32 // next slot the producer will write

	overflow atomic.Uint64
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 2 {
		capacity = 2
	}
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &ring[T]{
		buf:  make([]T, n),
		mask: uint32(n - 1),
	}
}

// push enqueues v. It never blocks: if the ring is full, v is dropped
// and the overflow counter is incremented.
func (r *ring[T]) push(v T) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head >= uint32(len(r.buf)) {
		r.overflow.Add(1)
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// drain copies as many queued items as fit into dst, in FIFO order,
// and returns how many were copied. It never blocks.
func (r *ring[T]) drain(dst []T) int {
	head := r.head.Load()
	tail := r.tail.Load()
	n := 0
	for head != tail && n < len(dst) {
		dst[n] = r.buf[head&r.mask]
		head++
		n++
	}
	r.head.Store(head)
	return n
}

// Overflow returns the number of items dropped because the ring was
// full at push time. It wraps on overflow of its own counter rather
// than being a queued entry.
func (r *ring[T]) Overflow() uint64 { return r.overflow.Load() }

// Diagnostics is the RT thread's lock-free event channel to the
// control thread. The RT thread is the sole producer (via push,
// invoked from kernels through the Runtime); the control thread is the
// sole consumer (via Drain).
type Diagnostics struct {
	r *ring[EventCode]
}

// NewDiagnostics allocates a diagnostics channel with room for at
// least capacity events. Backing storage is a fixed array; there is no
// heap use once constructed.
func NewDiagnostics(capacity int) *Diagnostics {
	return &Diagnostics{r: newRing[EventCode](capacity)}
}

func (d *Diagnostics) push(code EventCode) { d.r.push(code) }

// Drain copies queued event codes into dst and returns how many were
// copied. Callable only from the control thread.
func (d *Diagnostics) Drain(dst []EventCode) int { return d.r.drain(dst) }

// Overflow returns the number of diagnostic events dropped because the
// channel was full at emission time.
func (d *Diagnostics) Overflow() uint64 { return d.r.Overflow() }

// ParamUpdate is a pending change to one node's control-rate parameter,
// applied at the start of the block it arrives before. It is the seam
// reserved for future parameter mutability, routed through its own SPSC
// channel; with no producer enqueuing updates, the Runtime's behavior
// is unchanged from the unparameterized case.
type ParamUpdate struct {
	Node  NodeId
	Param int
	Value float64
}

// ParamQueue carries ParamUpdate values from the control thread to the
// RT thread. Same non-blocking, fixed-capacity ring as Diagnostics,
// with producer and consumer roles reversed.
type ParamQueue struct {
	r *ring[ParamUpdate]
}

// NewParamQueue allocates a parameter-update channel with room for at
// least capacity pending updates.
func NewParamQueue(capacity int) *ParamQueue {
	return &ParamQueue{r: newRing[ParamUpdate](capacity)}
}

// Push enqueues an update from the control thread. Non-blocking: if
// full, the update is dropped and the overflow counter increments.
func (q *ParamQueue) Push(u ParamUpdate) bool { return q.r.push(u) }

// drain is called once at the start of each process_block, RT thread
// only.
func (q *ParamQueue) drain(dst []ParamUpdate) int { return q.r.drain(dst) }

// Overflow returns the number of parameter updates dropped because the
// channel was full at Push time.
func (q *ParamQueue) Overflow() uint64 { return q.r.Overflow() }
