// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chnl

import "errors"

// ErrInvalidCapacity is the argument-invalid failure raised by the
// constructors when capacity is not a positive integer. It is always a
// panic value, never a returned error: the channel's error taxonomy keeps
// argument validation and runtime status entirely separate.
var ErrInvalidCapacity = errors.New("chnl: capacity must be positive")

// ErrClosed is the failure [Result.Must] panics with when a blocking
// Send or Recv observed the channel closed.
var ErrClosed = errors.New("chnl: channel closed")

// IsClosed reports whether err is (or wraps) ErrClosed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
