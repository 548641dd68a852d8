// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import "code.hybscloud.com/atomix"

// pad is cache-line filler used to keep hot atomic fields on separate
// cache lines and avoid false sharing between producers and consumers.
type pad [64]byte

// padShort pads a slot out to a cache line after its atomic lap field.
type padShort [64 - 4]byte

// slot is one element of the ring buffer: a target-lap atomic integer plus
// the payload cell it guards.
//
// The lap-parity invariant: write-eligible target-laps are even,
// read-eligible ones are odd. A slot alternates write -> read -> write as
// its target-lap advances by one per operation. The target-lap field is
// published with release ordering and observed with acquire ordering,
// which is what makes the (non-atomic) payload cell safe to touch with
// plain reads and writes between those publications.
type slot[T any] struct {
	lap atomix.Uint32
	val T
	_   padShort
}

// newSlots allocates the fixed-size slot array for a ring of the given
// capacity, initializing every slot to the given starting tail lap so
// slot 0 is immediately writable at that lap.
func newSlots[T any](capacity, startLap uint32) []slot[T] {
	s := make([]slot[T], capacity)
	for i := range s {
		s[i].lap.StoreRelaxed(startLap)
	}
	return s
}
