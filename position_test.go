// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPositionRoundTrip: for all (lap < 2^31,
// index), encode then decode must yield the original pair.
func TestPositionRoundTrip(t *testing.T) {
	laps := []uint32{0, 1, 2, 7, 1<<31 - 2, 1<<31 - 1}
	indices := []uint32{0, 1, 42, 1 << 20, 1<<32 - 1}
	closedValues := []bool{false, true}

	for _, lap := range laps {
		for _, idx := range indices {
			for _, closed := range closedValues {
				p := encodePosition(lap, idx, closed)
				gotLap, gotIdx, gotClosed := p.decode()
				require.Equal(t, lap, gotLap, "lap round-trip for lap=%d idx=%d closed=%v", lap, idx, closed)
				require.Equal(t, idx, gotIdx, "index round-trip for lap=%d idx=%d closed=%v", lap, idx, closed)
				require.Equal(t, closed, gotClosed, "closed round-trip for lap=%d idx=%d closed=%v", lap, idx, closed)
			}
		}
	}
}

// TestAdvanceLapPreservesClosedBit checks that advancing a lap never
// disturbs the closed flag.
func TestAdvanceLapPreservesClosedBit(t *testing.T) {
	for _, closed := range []bool{false, true} {
		p := encodePosition(1<<31-2, 7, closed)
		next := p.advanceLap()
		_, idx, gotClosed := next.decode()
		require.Equal(t, closed, gotClosed, "advanceLap must preserve the closed bit")
		require.Equal(t, uint32(0), idx, "advanceLap resets index to 0")
	}
}

func TestAdvanceLapWrapsModulo2To31(t *testing.T) {
	p := encodePosition(1<<31-2, 0, false)
	next := p.advanceLap()
	require.Equal(t, uint32(0), next.lap(), "lap must wrap modulo 2^31 when advancing by 2 past the top")
}

func TestWrapAddLap(t *testing.T) {
	require.Equal(t, uint32(1), wrapAddLap(0, 1))
	require.Equal(t, uint32(0), wrapAddLap(1<<31-1, 1))
	require.Equal(t, uint32(0), wrapAddLap(1<<31-2, 2))
}

func TestAdvanceIndexPanicsAtLapBoundary(t *testing.T) {
	require.Panics(t, func() {
		p := encodePosition(0, 2, false)
		p.advanceIndex(3) // capacity 3, index already at the last valid slot
	})
}

func TestSentinelPositions(t *testing.T) {
	tLap, tIdx, tClosed := tailStart().decode()
	require.Equal(t, uint32(0), tLap)
	require.Equal(t, uint32(0), tIdx)
	require.False(t, tClosed)

	hLap, hIdx, hClosed := headStart().decode()
	require.Equal(t, uint32(1), hLap)
	require.Equal(t, uint32(0), hIdx)
	require.False(t, hClosed)
}
