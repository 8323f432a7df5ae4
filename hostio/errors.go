// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package hostio

import (
	"fmt"

	"zikichombo.org/sound/freq"
)

// ChannelMismatchError reports that a sound.Form presented to NewBridge
// is not mono, the only channel count this bridge understands.
type ChannelMismatchError struct {
	Got int
}

func (e *ChannelMismatchError) Error() string {
	return fmt.Sprintf("hostio: form has %d channels, want 1 (mono)", e.Got)
}

func chanMismatch(got int) *ChannelMismatchError {
	return &ChannelMismatchError{Got: got}
}

// SampleRateMismatchError reports that a sound.Sink's sample rate does
// not agree with the Runtime driving it.
type SampleRateMismatchError struct {
	Got  freq.T
	Want freq.T
}

func (e *SampleRateMismatchError) Error() string {
	return fmt.Sprintf("hostio: sink sample rate %v does not match runtime sample rate %v", e.Got, e.Want)
}

func rateMismatch(got, want freq.T) *SampleRateMismatchError {
	return &SampleRateMismatchError{Got: got, Want: want}
}

// NotConnectedError reports a Bridge operation attempted with no sink
// configured.
type NotConnectedError struct{}

func (e *NotConnectedError) Error() string { return "hostio: bridge has no sink connected" }

func notConnected() *NotConnectedError { return &NotConnectedError{} }
