// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse_test

import (
	"testing"

	"github.com/ericwq/vtparse"
	"github.com/ericwq/vtparse/vtparsetest"
)

// TestEscFromGroundAlwaysEntersEscape guards the state-machine fix where
// ESC must leave Ground for the Escape state rather than being executed
// as an ordinary C0 control: every byte below 0x20 except ESC itself
// dispatches as Execute, but ESC must always start a new sequence.
func TestEscFromGroundAlwaysEntersEscape(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b[2J")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "EraseInDisplay")
}

// TestEscInterruptsCsiParamCollection asserts ESC takes priority over
// every CSI collecting state, abandoning the in-progress sequence and
// starting a fresh one instead of being swallowed as a C0 execute.
func TestEscInterruptsCsiParamCollection(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	// CSI 3 (digit collection) then ESC abandons it; second ESC [ 1 A
	// must still dispatch cleanly.
	if err := p.ProcessString([]byte("\x1b[3\x1b[1A")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "CursorUp")
	if n := rec.Calls[0].Args[0].(int); n != 1 {
		t.Fatalf("CursorUp arg = %d, want 1", n)
	}
}

// TestEscInterruptsEscapeIntermediate covers the EscapeIntermediate state
// (e.g. ESC # collecting before a line-rendition final byte).
func TestEscInterruptsEscapeIntermediate(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b#\x1b[5B")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "CursorDown")
}

// TestEscInterruptsDcsHeaderCollection covers ESC arriving during DCS
// header collection (here after DcsEntry and DcsParam), which previously
// had no ESC case at all and silently dropped it.
func TestEscInterruptsDcsHeaderCollection(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1bP1;2\x1b[9C")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "CursorForward")
	if n := rec.Calls[0].Args[0].(int); n != 9 {
		t.Fatalf("CursorForward arg = %d, want 9", n)
	}
}

// TestCanSubAbortsToGround asserts CAN/SUB unconditionally abort any
// in-progress sequence back to Ground and call Execute for the
// interrupting byte itself.
func TestCanSubAbortsToGround(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b[3;1\x18A")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	// CAN (0x18) executes as a control, then 'A' prints as plain text in
	// Ground rather than being swallowed as the abandoned CSI's final byte.
	assertCallNames(t, rec.Calls, "PrintString")
	if s := rec.Calls[0].Args[0].(string); s != "A" {
		t.Fatalf("PrintString arg = %q, want %q", s, "A")
	}
}

func TestDcsPassThroughDeliversPayloadToStringHandler(t *testing.T) {
	var got []rune
	target := &dcsCapturingTarget{Recorder: vtparsetest.NewRecorder(), onByte: func(r rune) bool {
		if r == 0x1B {
			return true
		}
		got = append(got, r)
		return true
	}}
	p := vtparse.NewParser(target, nil)

	if err := p.ProcessString([]byte("\x1bP0;1!z48656c6c6f\x1b\\")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if string(got) != "48656c6c6f" {
		t.Fatalf("captured payload = %q, want %q", string(got), "48656c6c6f")
	}
}

func TestDcsIgnoreWhenHandlerDeclines(t *testing.T) {
	declined := false
	target := &dcsCapturingTarget{Recorder: vtparsetest.NewRecorder(), onByte: func(r rune) bool {
		declined = true
		return false
	}}
	p := vtparse.NewParser(target, nil)

	if err := p.ProcessString([]byte("\x1bP0;1!zXY\x1b\\")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if !declined {
		t.Fatalf("expected handler to be invoked at least once")
	}
}

func TestDcsRequestSettingBuffersUntilST(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1bP$qmyname\x1b\\")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "RequestSetting")
	if s := rec.Calls[0].Args[0].(string); s != "myname" {
		t.Fatalf("RequestSetting arg = %q, want %q", s, "myname")
	}
}

// dcsCapturingTarget wraps a Recorder, overriding DefineMacro (DCS "!z")
// to return a StringHandler driven by onByte, since vtparsetest.Recorder
// always returns nil for string-transfer operations.
type dcsCapturingTarget struct {
	*vtparsetest.Recorder
	onByte vtparse.StringHandler
}

func (d *dcsCapturingTarget) DefineMacro(params []int) vtparse.StringHandler {
	d.Recorder.DefineMacro(params)
	return d.onByte
}
