// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

// PassThrough is the embedding sink's verbatim-forwarding callback
// (spec.md §4.4). It receives raw bytes exactly as they arrived and
// reports whether it accepted them; a nil PassThrough means no sink is
// attached and unhandled sequences are simply dropped.
type PassThrough func(b []byte) bool

// sequenceCache holds the partial-sequence bytes appended at end-of-input
// while mid-sequence (spec.md §4.4). A failing dispatch does not add to
// it; it passes its own run to flushTo as currentRun. It is exclusively
// owned by the Parser for the duration of a ProcessString call.
type sequenceCache struct {
	buf []byte
}

func (c *sequenceCache) append(b ...byte) {
	c.buf = append(c.buf, b...)
}

func (c *sequenceCache) clear() {
	c.buf = c.buf[:0]
}

// flushTo emits the cached bytes followed by currentRun to sink, then
// clears the cache regardless of what sink reports, matching "FlushToTerminal
// emits (cached, then current-run) ... and clears the cache."
func (c *sequenceCache) flushTo(sink PassThrough, currentRun []byte) bool {
	ok := true
	if sink != nil {
		if len(c.buf) > 0 {
			ok = sink(c.buf) && ok
		}
		if len(currentRun) > 0 {
			ok = sink(currentRun) && ok
		}
	} else {
		ok = false
	}
	c.clear()
	return ok
}
