// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package chnl provides a bounded, closable, multi-producer
// multi-consumer in-process FIFO channel.
//
// # Quick Start
//
//	ch := chnl.NewChannel[Event](1024)
//
//	ch.TrySend(ev)              // non-blocking
//	status := ch.Send(ev)       // blocking, returns on success or close
//
//	ev, ok := ch.TryRecv()      // non-blocking
//	result := ch.Recv()         // blocking
//	ev = result.Must()          // panics with ErrClosed instead of branching
//
// # Basic Usage
//
//	ch := chnl.NewChannel[int](16)
//
//	if !ch.TrySend(42) {
//	    // channel full or closed
//	}
//
//	if v, ok := ch.TryRecv(); ok {
//	    fmt.Println(v)
//	}
//
// # Worker Pool
//
// Any number of producer and consumer goroutines may share one Channel:
//
//	jobs := chnl.NewChannel[Job](256)
//
//	for range numWorkers {
//	    go func() {
//	        for {
//	            res := jobs.Recv()
//	            if res.Status == chnl.StatusClosed {
//	                return
//	            }
//	            res.Value.Run()
//	        }
//	    }()
//	}
//
//	for _, j := range allJobs {
//	    jobs.Send(j)
//	}
//	jobs.TryClose() // wakes every blocked worker once the backlog drains
//
// # Blocking Semantics
//
// Send blocks while the channel is full and returns once the value is
// delivered or the channel is closed. Recv blocks while the channel is
// empty and returns once a value is available or the channel is closed
// and empty. Closing a channel wakes every parked sender and receiver
// immediately: senders always fail afterward, but receivers keep draining
// whatever was already published, in FIFO order, until the channel is
// genuinely empty.
//
// # Capacity
//
// Capacity is a plain positive integer — unlike some ring-buffer designs,
// it need not be a power of two. [NewChannel] panics with
// [ErrInvalidCapacity] if capacity is not positive.
//
// # Error Handling
//
// Blocking operations return a [Result] tagged with a [Status]
// (StatusSuccess or StatusClosed) rather than an error. Callers who
// prefer to handle closure as an exception can call [Result.Must],
// which panics with [ErrClosed] on anything but StatusSuccess.
// Non-blocking operations report full/empty/closed uniformly as a plain
// bool — those are expected outcomes, not failures, and the channel's
// error taxonomy reserves actual errors for programmer mistakes
// (a non-positive capacity).
//
// # Race Detection
//
// Every cross-goroutine handoff in this package — claiming a slot on
// head/tail, publishing or clearing a slot's target-lap — goes through a
// real atomic acquire or release operation, so the race detector
// observes the same happens-before edges the algorithm relies on. The
// detector's instrumentation overhead is still substantial under heavy
// concurrent load; stress tests scale down their iteration counts when
// built with -race rather than risk a timeout.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic fields with
// explicit acquire/release/relaxed memory ordering, in the same role it
// plays across the hybscloud.com lock-free queue family. Backoff and the
// parking set are implemented in this package directly: both need an
// introspectable, exactly-specified contract (spin/yield transition
// points, FIFO wake order) that an opaque imported primitive would not
// expose.
package chnl
