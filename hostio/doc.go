// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package hostio bridges a compiled sigkernel.Runtime to real mono
// audio I/O via zikichombo.org/sound.
//
// Nothing in this package runs on the real-time thread the kernel
// package describes: Bridge.Run is a blocking pump meant to live on
// its own goroutine, driving Runtime.ProcessBlock at whatever pace its
// sound.Sink accepts blocks. Host I/O, arbitrary multichannel routing,
// and MIDI are explicitly out of scope for the kernel itself; this
// package exists to show the shape of that boundary, not to be a
// general-purpose audio host.
package hostio
