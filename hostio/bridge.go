// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package hostio

import (
	"zikichombo.org/sound"
	"zikichombo.org/sound/freq"

	sigkernel "zikichombo.org/sigkernel"
)

// Bridge pulls blocks out of a compiled Runtime and pushes them to a
// mono sound.Sink, converting sample-by-sample between the kernel's
// float32 blocks and zikichombo's float64 wire format. Conversion
// buffers are allocated once, at construction, and reused for the
// life of the Bridge; Run itself performs no allocation once started,
// though — unlike Runtime.ProcessBlock — it is not held to the
// real-time constraints of the kernel package, since Send may block
// on the sink.
type Bridge struct {
	rt  *sigkernel.Runtime
	snk sound.Sink

	out  []float32
	conv []float64
}

// NewBridge builds a Bridge driving snk from rt. snk must be mono and
// share rt's sample rate; anything else is an error.
func NewBridge(rt *sigkernel.Runtime, snk sound.Sink) (*Bridge, error) {
	if snk.Channels() != 1 {
		return nil, chanMismatch(snk.Channels())
	}
	want := freq.T(rt.SampleRate()) * freq.Hertz
	if snk.SampleRate() != want {
		return nil, rateMismatch(snk.SampleRate(), want)
	}
	return &Bridge{
		rt:   rt,
		snk:  snk,
		out:  make([]float32, rt.BlockSize()),
		conv: make([]float64, rt.BlockSize()),
	}, nil
}

// Run drives the Runtime block by block, converting and forwarding
// each block to the sink, until stop is closed or the sink reports an
// error. It closes the sink before returning in either case. Run
// blocks; callers run it on a dedicated goroutine.
func (b *Bridge) Run(stop <-chan struct{}) error {
	if b.snk == nil {
		return notConnected()
	}
	for {
		select {
		case <-stop:
			return b.snk.Close()
		default:
		}
		if err := b.rt.ProcessBlock(b.out); err != nil {
			b.snk.Close()
			return err
		}
		for i, v := range b.out {
			b.conv[i] = float64(v)
		}
		if err := b.snk.Send(b.conv); err != nil {
			b.snk.Close()
			return err
		}
	}
}
