// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import "code.hybscloud.com/atomix"

// Channel is a bounded, closable, multi-producer multi-consumer FIFO
// queue of T. Non-blocking and blocking send/receive variants are both
// safe for an arbitrary number of concurrent producer and consumer
// goroutines.
//
// Based on a Position-coded variant of Dmitry Vyukov's bounded MPMC ring
// buffer: head and tail are single 64-bit words packing a lap counter and
// a slot index, so a producer or consumer can claim a slot with one CAS.
// A lap-parity discipline on each slot's sequence number (even laps
// writable, odd laps readable) keeps producers and consumers from ever
// colliding on the same slot without any further locking.
//
// The zero value is not usable; construct with [NewChannel].
type Channel[T any] struct {
	_    pad
	tail atomix.Uint64 // packed position; tail's closed bit is the channel's closed flag
	_    pad
	head atomix.Uint64 // packed position
	_    pad

	slots    []slot[T]
	capacity uint32

	readersWaiting *parkingSet // consumers park here; woken by producers after publish
	writersWaiting *parkingSet // producers park here; woken by consumers after a slot frees
}

type acquireResult int

const (
	acquireOK acquireResult = iota
	acquireFull
	acquireEmpty
	acquireClosed
)

// NewChannel creates a Channel with the given fixed capacity.
//
// Panics with [ErrInvalidCapacity] if capacity is not a positive integer.
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		panic(ErrInvalidCapacity)
	}
	return newChannel[T](uint32(capacity), tailStartLap, headStartLap)
}

// NewChannelWithLaps is a test-hook constructor that lets callers start
// the tail and head cursors at arbitrary laps, so wrap-around behavior
// near the 2^31 lap boundary can be exercised directly instead of driving
// capacity*2^31 operations to reach it.
//
// Panics with [ErrInvalidCapacity] if capacity is not a positive integer.
func NewChannelWithLaps[T any](capacity int, tailLap, headLap uint32) *Channel[T] {
	if capacity <= 0 {
		panic(ErrInvalidCapacity)
	}
	return newChannel[T](uint32(capacity), tailLap&lapMask, headLap&lapMask)
}

func newChannel[T any](capacity, tailLap, headLap uint32) *Channel[T] {
	c := &Channel[T]{
		slots:          newSlots[T](capacity, tailLap),
		capacity:       capacity,
		readersWaiting: newParkingSet(),
		writersWaiting: newParkingSet(),
	}
	c.tail.StoreRelaxed(uint64(encodePosition(tailLap, 0, false)))
	c.head.StoreRelaxed(uint64(encodePosition(headLap, 0, false)))
	return c
}

// Cap returns the channel's fixed capacity.
func (c *Channel[T]) Cap() int {
	return int(c.capacity)
}

// producerAcquireSlot is the producer side of the acquire-slot state
// machine: it races other producers for the next writable
// slot via CAS on tail, returning the claimed slot index and the lap to
// publish it under once the write completes. It never blocks: contention
// with another in-flight producer is paced with Backoff and retried
// indefinitely; only "full" and "closed" end the loop.
func (c *Channel[T]) producerAcquireSlot() (idx, publishLap uint32, res acquireResult) {
	var bo Backoff
	t := position(c.tail.LoadAcquire())
	for {
		if t.closed() {
			return 0, 0, acquireClosed
		}
		idx = t.index()
		sl := &c.slots[idx]
		w := sl.lap.LoadAcquire()
		tlap := t.lap()

		switch {
		case tlap == w:
			var next position
			if idx+1 < c.capacity {
				next = t.advanceIndex(c.capacity)
			} else {
				next = t.advanceLap()
			}
			if c.tail.CompareAndSwapAcqRel(uint64(t), uint64(next)) {
				return idx, wrapAddLap(tlap, 1), acquireOK
			}
			bo.SpinOnly()
			t = position(c.tail.LoadAcquire())
		case tlap == wrapAddLap(w, 1):
			return 0, 0, acquireFull
		default:
			bo.SpinOrYield()
			t = position(c.tail.LoadAcquire())
		}
	}
}

// consumerAcquireSlot is the consumer side of the acquire-slot state
// machine, symmetric to producerAcquireSlot on head. It
// never observes "closed" itself — that distinction belongs to the
// caller, since already-published values must still be drained after
// close.
func (c *Channel[T]) consumerAcquireSlot() (idx, nextTargetLap uint32, res acquireResult) {
	var bo Backoff
	h := position(c.head.LoadAcquire())
	for {
		idx = h.index()
		sl := &c.slots[idx]
		r := sl.lap.LoadAcquire()
		hlap := h.lap()

		switch {
		case hlap == r:
			var next position
			if idx+1 < c.capacity {
				next = h.advanceIndex(c.capacity)
			} else {
				next = h.advanceLap()
			}
			if c.head.CompareAndSwapAcqRel(uint64(h), uint64(next)) {
				return idx, wrapAddLap(hlap, 1), acquireOK
			}
			bo.SpinOnly()
			h = position(c.head.LoadAcquire())
		case hlap == wrapAddLap(r, 1):
			return 0, 0, acquireEmpty
		default:
			bo.SpinOrYield()
			h = position(c.head.LoadAcquire())
		}
	}
}

// TrySend attempts to deliver v without blocking. It returns true once
// the value is enqueued, or false if the channel is full or closed.
//
// A briefly-full channel is given a bounded amount of Backoff before
// giving up, so momentary contention resolves without ever touching the
// parking set.
func (c *Channel[T]) TrySend(v T) bool {
	var bo Backoff
	for {
		idx, publishLap, res := c.producerAcquireSlot()
		switch res {
		case acquireOK:
			c.slots[idx].val = v
			c.slots[idx].lap.StoreRelease(publishLap)
			c.readersWaiting.unblockNext()
			return true
		case acquireClosed:
			return false
		default: // acquireFull
			if bo.IsExhausted() {
				return false
			}
			bo.SpinOrYield()
		}
	}
}

// TryRecv attempts to take a value without blocking. It returns
// (value, true) on delivery, or (zero-value, false) if the channel is
// empty. Values published before close are still delivered after it.
func (c *Channel[T]) TryRecv() (T, bool) {
	var bo Backoff
	var zero T
	for {
		idx, nextTargetLap, res := c.consumerAcquireSlot()
		switch res {
		case acquireOK:
			val := c.slots[idx].val
			c.slots[idx].val = zero
			c.slots[idx].lap.StoreRelease(nextTargetLap)
			c.writersWaiting.unblockNext()
			return val, true
		default: // acquireEmpty
			if bo.IsExhausted() {
				return zero, false
			}
			bo.SpinOrYield()
		}
	}
}

// Send delivers v, blocking the calling goroutine if the channel is
// full. It returns StatusSuccess on delivery or StatusClosed if the
// channel was closed before delivery could happen.
func (c *Channel[T]) Send(v T) Result[T] {
	for {
		if c.TrySend(v) {
			return Result[T]{Status: StatusSuccess}
		}

		tok, ok := c.writersWaiting.tryRegister()
		if !ok {
			return Result[T]{Status: StatusClosed}
		}

		// Lost-wakeup guard: re-check the predicate between registering
		// and sleeping, under the happens-before the parking-set mutex
		// and the consumer's slot publication establish.
		if c.IsClosed() {
			c.writersWaiting.cancel(tok)
			return Result[T]{Status: StatusClosed}
		}
		if !c.IsFull() {
			c.writersWaiting.cancel(tok)
			continue
		}

		tok.w.wait()
	}
}

// Recv takes the next value, blocking the calling goroutine if the
// channel is empty. It returns StatusSuccess with the value on delivery,
// or StatusClosed if the channel is closed and empty at the moment the
// caller observes it. Values already published before close are still
// delivered in FIFO order.
func (c *Channel[T]) Recv() Result[T] {
	for {
		if v, ok := c.TryRecv(); ok {
			return Result[T]{Status: StatusSuccess, Value: v}
		}

		tok, ok := c.readersWaiting.tryRegister()
		if !ok {
			return Result[T]{Status: StatusClosed}
		}

		if !c.IsEmpty() {
			c.readersWaiting.cancel(tok)
			continue
		}
		if c.IsClosed() {
			c.readersWaiting.cancel(tok)
			return Result[T]{Status: StatusClosed}
		}

		tok.w.wait()
	}
}

// TryClose closes the channel, returning true the first time it is
// called. Subsequent calls return false. Closing wakes every parked
// sender and receiver: senders always fail afterward, receivers keep
// draining any values already published until the channel is empty.
func (c *Channel[T]) TryClose() bool {
	for {
		t := position(c.tail.LoadAcquire())
		if t.closed() {
			return false
		}
		next := t.close()
		if c.tail.CompareAndSwapAcqRel(uint64(t), uint64(next)) {
			c.writersWaiting.close()
			c.readersWaiting.close()
			return true
		}
	}
}

// IsClosed reports whether the channel has been closed. Once true, it
// stays true.
func (c *Channel[T]) IsClosed() bool {
	return position(c.tail.LoadAcquire()).closed()
}

// IsEmpty reports whether the channel held no items at the moment of
// observation. Advisory under concurrent traffic: a true result may be
// stale by the time the caller acts on it.
func (c *Channel[T]) IsEmpty() bool {
	h := position(c.head.LoadAcquire())
	t := position(c.tail.LoadAcquire())
	return h.index() == t.index() && h.lap() == wrapAddLap(t.lap(), 1)
}

// IsFull reports whether the channel held capacity items at the moment
// of observation. Advisory under concurrent traffic.
func (c *Channel[T]) IsFull() bool {
	h := position(c.head.LoadAcquire())
	t := position(c.tail.LoadAcquire())
	return h.index() == t.index() && wrapAddLap(h.lap(), 1) == t.lap()
}

// Len returns a wait-free snapshot of the channel's length, in
// [0, Cap()]. It uses a double-read of tail around a single read of head
// to guarantee the two cursors it compares were observed as a consistent
// pair.
func (c *Channel[T]) Len() int {
	for {
		t1 := position(c.tail.LoadAcquire())
		h := position(c.head.LoadAcquire())
		t2 := position(c.tail.LoadAcquire())
		if t1 != t2 {
			continue
		}
		return c.lenFrom(h, t1)
	}
}

func (c *Channel[T]) lenFrom(h, t position) int {
	hi, ti := h.index(), t.index()
	switch {
	case hi < ti:
		return int(ti - hi)
	case hi > ti:
		return int(c.capacity) - int(hi) + int(ti)
	default:
		if h.lap() == wrapAddLap(t.lap(), 1) {
			return 0
		}
		return int(c.capacity)
	}
}
