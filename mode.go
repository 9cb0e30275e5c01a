// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

// ParserMode is a bitset controlling how the state machine interprets
// 8-bit C1 controls and whether it runs the full ANSI grammar or the
// stripped-down VT52 grammar.
type ParserMode uint8

const (
	// AcceptC1 makes the state machine remap 8-bit C1 controls
	// (0x80-0x9F) to their ESC+(byte-0x40) 7-bit equivalent while a
	// conforming terminal would be in 8-bit mode. It mirrors
	// AlwaysAcceptC1 except that real implementations gate it on a
	// negotiated setting (DECSET 101x and friends); the parser itself
	// only cares whether either bit is set.
	AcceptC1 ParserMode = 1 << iota

	// AlwaysAcceptC1 unconditionally remaps C1 controls regardless of
	// any negotiated state. Set this for embedders that never run a
	// protocol where turning C1 off makes sense.
	AlwaysAcceptC1

	// Ansi selects the full DEC/ANSI grammar (CSI/OSC/DCS/etc). When
	// clear, the parser runs the VT52 grammar instead. Default true.
	Ansi
)

// acceptsC1 reports whether the current mode set remaps 8-bit C1 bytes.
func (m ParserMode) acceptsC1() bool {
	return m&(AcceptC1|AlwaysAcceptC1) != 0
}

func (m ParserMode) ansi() bool {
	return m&Ansi != 0
}

// SetParserMode turns mode on or off in m, returning the updated value.
// (*Parser).SetMode calls it to update a parser's mode.
func (m ParserMode) SetParserMode(mode ParserMode, enabled bool) ParserMode {
	if enabled {
		return m | mode
	}
	return m &^ mode
}

// DefaultParserMode is Ansi on, both C1 variants off, matching spec.md §6.3.
const DefaultParserMode = Ansi
