// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package hostio

import (
	"testing"

	"zikichombo.org/sound/freq"
)

func TestChannelMismatchError(t *testing.T) {
	err := chanMismatch(2)
	if err.Got != 2 {
		t.Fatalf("Got = %d, want 2", err.Got)
	}
	if err.Error() == "" {
		t.Fatal("Error() returned empty string")
	}
}

func TestSampleRateMismatchError(t *testing.T) {
	got := 44100 * freq.Hertz
	want := 48000 * freq.Hertz
	err := rateMismatch(got, want)
	if err.Got != got || err.Want != want {
		t.Fatalf("got %v/%v, want %v/%v", err.Got, err.Want, got, want)
	}
	if err.Error() == "" {
		t.Fatal("Error() returned empty string")
	}
}

func TestNotConnectedError(t *testing.T) {
	if notConnected().Error() == "" {
		t.Fatal("Error() returned empty string")
	}
}
