// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sig

import "math"

const twoPi = 2 * math.Pi

// nodeState is the Runtime's per-node mutable state, parallel to
// Plan.schedule. Only the fields relevant to a node's kind are live:
// phase/freq for SineOsc, gain for Gain; ext for External. Mix and
// OutputSink carry no state.
type nodeState struct {
	phase float64
	freq  float64
	gain  float64
	ext   NodeState
}

// kernelSineOsc writes blockSize samples of a sine wave into out and
// advances the phase accumulator in st. Per sample: write sin(phase),
// then advance phase by 2*pi*freq/sampleRate and wrap it back into
// [0, 2*pi) by explicit modulo, so phase never drifts unboundedly over
// a long-running stream.
func kernelSineOsc(st *nodeState, out []float32, sampleRate float64, blockSize int) {
	phase := st.phase
	inc := twoPi * st.freq / sampleRate
	for i := 0; i < blockSize; i++ {
		out[i] = float32(math.Sin(phase))
		phase += inc
		phase = math.Mod(phase, twoPi)
		if phase < 0 {
			phase += twoPi
		}
	}
	st.phase = phase
}

// kernelGain scales in by st.gain into out. A nil in is unreachable
// past a valid Plan (Gain's input is required, I5) but is handled
// defensively: out is silenced and an InvariantMissingInput diagnostic
// is emitted rather than indexing a nil slice.
func kernelGain(st *nodeState, in, out []float32, diag *Diagnostics) {
	if in == nil {
		zero(out)
		diag.push(InvariantMissingInput)
		return
	}
	g := float32(st.gain)
	for i, v := range in {
		out[i] = v * g
	}
}

// kernelMix sums a and b into out with no saturation or normalization;
// callers compose gain staging explicitly upstream.
func kernelMix(a, b, out []float32, diag *Diagnostics) {
	if a == nil || b == nil {
		zero(out)
		diag.push(InvariantMissingInput)
		return
	}
	for i := range out {
		out[i] = a[i] + b[i]
	}
}

// kernelOutputSink copies in into the host output slice. When the
// Plan has routed the sink's producer directly to out (the common
// case, no fan-out), the Runtime skips calling this entirely.
func kernelOutputSink(in, out []float32) {
	if in == nil {
		zero(out)
		return
	}
	copy(out, in)
}

func zero(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
