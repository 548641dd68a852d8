// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParkingSetFIFOWakeup checks that ten waiters registered in order
// are unblocked in that same order.
func TestParkingSetFIFOWakeup(t *testing.T) {
	p := newParkingSet()
	const n = 10

	tokens := make([]*token, n)
	for i := 0; i < n; i++ {
		tok, ok := p.tryRegister()
		require.True(t, ok)
		tokens[i] = tok
	}

	order := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i].w.wait()
			order <- i
		}(i)
	}

	got := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p.unblockNext()
		select {
		case v := <-order:
			got = append(got, v)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for waiter %d to wake", i)
		}
	}
	wg.Wait()

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, got, "waiters must be woken in FIFO registration order")
}

func TestParkingSetCancelIsIdempotent(t *testing.T) {
	p := newParkingSet()
	tok, ok := p.tryRegister()
	require.True(t, ok)

	p.cancel(tok)
	require.NotPanics(t, func() { p.cancel(tok) })
	require.True(t, p.empty.Load())
}

func TestParkingSetCancelAfterUnblockNextIsSafe(t *testing.T) {
	p := newParkingSet()
	tok, ok := p.tryRegister()
	require.True(t, ok)

	p.unblockNext()
	select {
	case <-tok.w.ch:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by unblockNext")
	}

	require.NotPanics(t, func() { p.cancel(tok) })
}

func TestParkingSetCloseWakesAllAndRejectsFurtherRegistration(t *testing.T) {
	p := newParkingSet()
	const n = 5
	tokens := make([]*token, n)
	for i := range tokens {
		tok, ok := p.tryRegister()
		require.True(t, ok)
		tokens[i] = tok
	}

	p.close()

	for _, tok := range tokens {
		select {
		case <-tok.w.ch:
		case <-time.After(time.Second):
			t.Fatal("close must wake every pending waiter")
		}
	}

	_, ok := p.tryRegister()
	require.False(t, ok, "tryRegister must fail once the set is closed")
}

func TestParkingSetWakeBeforeWaitIsLegal(t *testing.T) {
	w := newWaiter()
	w.wake()

	done := make(chan struct{})
	go func() {
		w.wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait must return immediately when wake preceded it")
	}
}
