// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import "errors"

// ErrInvalidUTF8 is raised by the Input Adapter when a byte chunk contains
// an undecodable sequence anywhere other than a multi-byte lead truncated
// at the chunk's end (spec.md §7 "UTF-8 decode failure with non-empty
// trimmed window").
var ErrInvalidUTF8 = errors.New("vtparse: invalid utf-8 in input chunk")

// ErrShutdown is the one Dispatch Target failure that is never demoted
// to a plain `false` return; it re-raises to the ProcessString caller
// instead (spec.md §7 "Runtime fault in engine ... except a distinguished
// Shutdown signal").
var ErrShutdown = errors.New("vtparse: dispatch target requested shutdown")
