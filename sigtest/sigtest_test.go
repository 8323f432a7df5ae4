// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sigtest

import "testing"

func TestCountAllocsPassesOnNonAllocatingFunc(t *testing.T) {
	buf := make([]float32, 64)
	CountAllocs(t, func() {
		for i := range buf {
			buf[i] = float32(i)
		}
	})
}
