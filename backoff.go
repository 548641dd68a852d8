// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import (
	"runtime"
	"sync/atomic"
)

// MaxSpin and MaxYield are the iteration thresholds that shape Backoff's
// two-phase spin-then-yield pacing. The values are the ones used by the
// well-known crossbeam-utils Backoff in Rust and are deliberately
// inherited rather than re-tuned.
const (
	MaxSpin  = 6
	MaxYield = 10
)

// spinTouch is read in a tight loop by the spin phase. Reading an atomic
// variable (rather than an empty loop body) keeps the compiler from
// eliding the busy-wait entirely; this is the ordinary Go substitute for
// an unexported CPU pause intrinsic.
var spinTouch atomic.Uint32

// Backoff is an adaptive retry pacer: a handful of busy-wait spins, then
// OS-yields, then a signal that the caller should stop retrying and park.
//
// The zero value is ready to use. A Backoff is not safe for concurrent
// use; each retry loop owns its own instance.
type Backoff struct {
	iter uint32
}

// Reset returns the Backoff to its initial state.
func (b *Backoff) Reset() {
	b.iter = 0
}

// SpinOnly busy-waits for 1<<min(iteration, MaxSpin) pause cycles and
// advances the iteration counter, capping it at MaxSpin+1. It never
// yields the OS thread and never reports exhaustion; callers that must
// eventually give up should use SpinOrYield and IsExhausted instead.
func (b *Backoff) SpinOnly() {
	n := b.iter
	if n > MaxSpin {
		n = MaxSpin
	}
	spin(1 << n)
	if b.iter <= MaxSpin {
		b.iter++
	}
}

// SpinOrYield busy-waits below MaxSpin and yields the OS thread at or
// above it, always advancing the iteration counter. Combined with
// IsExhausted, this is the pacing used before a caller registers with a
// parking set and sleeps.
func (b *Backoff) SpinOrYield() {
	if b.iter < MaxSpin {
		spin(1 << b.iter)
	} else {
		runtime.Gosched()
	}
	b.iter++
}

// IsExhausted reports whether the backoff has spun and yielded enough
// that the caller should stop retrying and park instead.
func (b *Backoff) IsExhausted() bool {
	return b.iter > MaxYield
}

func spin(cycles uint32) {
	for i := uint32(0); i < cycles; i++ {
		spinTouch.Add(1)
	}
}
