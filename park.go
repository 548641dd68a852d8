// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// waiter is a single-shot, manual-reset wakeup token. Its channel is
// closed at most once, by wake (called from unblockNext or the set's
// close); cancel only unlinks the waiter. wait may be called at most once
// and only by the registering goroutine.
type waiter struct {
	ch   chan struct{}
	once sync.Once
}

func newWaiter() *waiter {
	return &waiter{ch: make(chan struct{})}
}

// wake latches the wakeup. A wake that precedes a wait is legal: wait
// simply returns immediately once called.
func (w *waiter) wake() {
	w.once.Do(func() { close(w.ch) })
}

func (w *waiter) wait() {
	<-w.ch
}

// parkingSet is a closable FIFO of parked waiters guarded by one mutex,
// with a lock-free "probably empty" hint so the hot path (unblockNext on
// an uncontended channel) avoids acquiring the mutex at all.
//
// The hint is advisory only: it exists purely to skip the mutex when
// nothing is parked, and every correctness-relevant path double-checks
// under the lock.
type parkingSet struct {
	mu      sync.Mutex
	waiters list.List // of *list.Element holding *waiter
	closed  bool
	empty   atomic.Bool
}

func newParkingSet() *parkingSet {
	p := &parkingSet{}
	p.empty.Store(true)
	return p
}

// token identifies a registration so the caller can cancel it later.
type token struct {
	w  *waiter
	el *list.Element
}

// tryRegister allocates a waiter and appends it to the FIFO. It returns
// (nil, false) iff the set is already closed.
func (p *parkingSet) tryRegister() (*token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false
	}
	w := newWaiter()
	el := p.waiters.PushBack(w)
	p.empty.Store(false)
	return &token{w: w, el: el}, true
}

// cancel removes a previously-registered token from the FIFO. It is
// idempotent: container/list.Remove is a no-op on an element that has
// already been unlinked (by an earlier unblockNext or close), so cancel
// is safe to call even after the waiter has already been woken.
func (p *parkingSet) cancel(t *token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiters.Remove(t.el)
	p.empty.Store(p.waiters.Len() == 0)
}

// unblockNext wakes the oldest registered waiter, if any. Wake order is
// strictly FIFO. This is the "double-checked" fast path: the empty hint
// is read without the lock, and only an apparently-non-empty set pays for
// the mutex.
func (p *parkingSet) unblockNext() {
	if p.empty.Load() {
		return
	}
	p.mu.Lock()
	front := p.waiters.Front()
	if front == nil {
		p.mu.Unlock()
		return
	}
	w, _ := front.Value.(*waiter)
	p.waiters.Remove(front)
	p.empty.Store(p.waiters.Len() == 0)
	p.mu.Unlock()

	if w != nil {
		w.wake()
	}
}

// close wakes every pending waiter, empties the FIFO, and marks the set
// closed so future tryRegister calls fail.
func (p *parkingSet) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for el := p.waiters.Front(); el != nil; el = p.waiters.Front() {
		if w, ok := p.waiters.Remove(el).(*waiter); ok {
			w.wake()
		}
	}
	p.empty.Store(true)
}
