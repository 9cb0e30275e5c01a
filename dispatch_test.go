// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse_test

import (
	"testing"

	"github.com/ericwq/vtparse"
	"github.com/ericwq/vtparse/vtparsetest"
)

func TestEscDispatchLockingShifts(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1bn\x1bo\x1bN")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "LockingShift", "LockingShift", "SingleShift")
	if g := rec.Calls[0].Args[0].(int); g != 2 {
		t.Fatalf("LockingShift(ESC n) gset = %d, want 2", g)
	}
	if g := rec.Calls[1].Args[0].(int); g != 3 {
		t.Fatalf("LockingShift(ESC o) gset = %d, want 3", g)
	}
}

func TestEscDispatchCharsetDesignation(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b(B\x1b)0")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "Designate94Charset", "Designate94Charset")
	if g, c := rec.Calls[0].Args[0].(int), rec.Calls[0].Args[1].(byte); g != 0 || c != 'B' {
		t.Fatalf("first designation = (%d, %q), want (0, 'B')", g, c)
	}
	if g, c := rec.Calls[1].Args[0].(int), rec.Calls[1].Args[1].(byte); g != 1 || c != '0' {
		t.Fatalf("second designation = (%d, %q), want (1, '0')", g, c)
	}
}

func TestEscDispatchLineRendition(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b#6\x1b#8")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "SetLineRendition", "ScreenAlignmentPattern")
	if n := rec.Calls[0].Args[0].(int); n != 6 {
		t.Fatalf("SetLineRendition arg = %d, want 6", n)
	}
}

func TestExecuteCarriageReturnAndLineFeed(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\r\n\v\f")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "CarriageReturn", "LineFeed", "LineFeed", "LineFeed")
}

func TestGroundIgnoresRawC1WhenModeRejectsIt(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	// U+0080 is a C1 control; DefaultParserMode doesn't accept raw C1
	// bytes, so it must be dropped rather than printed (spec.md §3).
	if err := p.ProcessString([]byte("X")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "PrintString")
	if s := rec.Calls[0].Args[0].(string); s != "X" {
		t.Fatalf("PrintString arg = %q, want %q", s, "X")
	}
}

func TestCsiDispatchCursorMotion(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b[5A\x1b[H")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "CursorUp", "CursorPosition")
	if n := rec.Calls[0].Args[0].(int); n != 5 {
		t.Fatalf("CursorUp arg = %d, want 5", n)
	}
	row, col := rec.Calls[1].Args[0].(int), rec.Calls[1].Args[1].(int)
	if row != 1 || col != 1 {
		t.Fatalf("CursorPosition = (%d,%d), want (1,1) (bare CSI H defaults)", row, col)
	}
}

func TestCsiDispatchDECPrivateVsANSIMode(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b[4h\x1b[?25l")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "SetMode", "ResetMode")
	m0 := rec.Calls[0].Args[0].(vtparse.ModeParam)
	if m0.Number != 4 || m0.Private {
		t.Fatalf("first mode = %+v, want {4 false}", m0)
	}
	m1 := rec.Calls[1].Args[0].(vtparse.ModeParam)
	if m1.Number != 25 || !m1.Private {
		t.Fatalf("second mode = %+v, want {25 true}", m1)
	}
}

func TestCsiSubParamsRejectedOutsideSGRAndRectArea(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	// CSI ... H (cursor position) never accepts sub-parameters.
	if err := p.ProcessString([]byte("\x1b[1:2H")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v, want none (sub-params on H must fail silently)", rec.Calls)
	}
}

func TestCsiSubParamsAcceptedOnDECCARAAttributeList(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	// CSI $r: DECCARA, top/left/bottom/right plain, attribute list may
	// carry colon sub-parameters (only index >= 4 is checked).
	if err := p.ProcessString([]byte("\x1b[1;1;5;5;38:2:255:0:0$r")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "ChangeAttributesRectangularArea")
}

func TestCsiSubParamsRejectedOnDECCARARectCoords(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	// A colon before index 4 (inside the rectangle coordinates) must fail.
	if err := p.ProcessString([]byte("\x1b[1:1;1;5;5$r")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v, want none", rec.Calls)
	}
}

func TestOscUnrecognizedCodeProducesNoDispatchCalls(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b]9999;payload\x07")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v, want none", rec.Calls)
	}
}

// TestUnterminatedSequenceIsCachedAndFlushable covers the partial-sequence
// pass-through path: a CSI sequence split across two ProcessString calls,
// where the second call's final byte is never reached, stays cached until
// FlushToTerminal asks for it verbatim (spec.md §4.4).
func TestUnterminatedSequenceIsCachedAndFlushable(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	var sunk []byte
	p := vtparse.NewParser(rec, func(b []byte) bool { sunk = append(sunk, b...); return true })

	if err := p.ProcessString([]byte("\x1b[1;2")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v, want none (sequence still incomplete)", rec.Calls)
	}
	if !p.FlushToTerminal() {
		t.Fatalf("FlushToTerminal returned false")
	}
	if string(sunk) != "\x1b[1;2" {
		t.Fatalf("sunk = %q, want %q", sunk, "\x1b[1;2")
	}
}

// TestUnsupportedCompleteSequenceReachesSinkImmediately covers the other
// half of spec.md §4.4's flush: a sequence that is complete but
// unrecognized, which never touches the partial-sequence cache because it
// fails at dispatch time, not at end-of-input. Its own bytes (the
// "current run") must still reach the pass-through sink, within the same
// ProcessString call that rejected it.
func TestUnsupportedCompleteSequenceReachesSinkImmediately(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	var sunk []byte
	p := vtparse.NewParser(rec, func(b []byte) bool { sunk = append(sunk, b...); return true })

	if err := p.ProcessString([]byte("\x1b[999z")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v, want none (sequence unrecognized)", rec.Calls)
	}
	if string(sunk) != "\x1b[999z" {
		t.Fatalf("sunk = %q, want %q", sunk, "\x1b[999z")
	}
}

func TestOscColorTableEntry(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b]4;0;#ff0000\x07")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "SetColorTableEntry")
	idx, spec := rec.Calls[0].Args[0].(int), rec.Calls[0].Args[1].(string)
	if idx != 0 || spec != "#ff0000" {
		t.Fatalf("SetColorTableEntry = (%d, %q), want (0, \"#ff0000\")", idx, spec)
	}
}

func TestEscDispatchTabSetAndC1Selection(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1bH\x1b G\x1b F")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "HorizontalTabSet", "AcceptC1Controls", "AcceptC1Controls")
	if accept := rec.Calls[1].Args[0].(bool); !accept {
		t.Fatalf("ESC SP G should request 8-bit controls (accept=true), got %v", accept)
	}
	if accept := rec.Calls[2].Args[0].(bool); accept {
		t.Fatalf("ESC SP F should request 7-bit controls (accept=false), got %v", accept)
	}
}

func TestEscDispatchRequestUserPreferenceCharsetVsCodingSystem(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b%.\x1b%G")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "RequestUserPreferenceCharset", "DesignateCodingSystem")
}

func TestCsiDispatchTerminalParametersAndTabSet(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b[1x\x1b[5W")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "RequestTerminalParameters", "TabSet")
	if n := rec.Calls[0].Args[0].(int); n != 1 {
		t.Fatalf("RequestTerminalParameters arg = %d, want 1", n)
	}
	if n := rec.Calls[1].Args[0].(int); n != 5 {
		t.Fatalf("TabSet arg = %d, want 5", n)
	}
}

func TestCsiDispatchPagingFamily(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b[2 U\x1b[ V\x1b[3 P\x1b[ R\x1b[ Q")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "NextPage", "PrecedingPage", "PagePositionAbsolute",
		"PagePositionRelative", "PagePositionBack")
	if n := rec.Calls[0].Args[0].(int); n != 2 {
		t.Fatalf("NextPage arg = %d, want 2", n)
	}
	if n := rec.Calls[2].Args[0].(int); n != 3 {
		t.Fatalf("PagePositionAbsolute arg = %d, want 3", n)
	}
}

func TestOscAssignColor(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b]5;0;#00ff00\x07")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "AssignColor")
	table, idx, spec := rec.Calls[0].Args[0].(int), rec.Calls[0].Args[1].(int), rec.Calls[0].Args[2].(string)
	if table != 5 || idx != 0 || spec != "#00ff00" {
		t.Fatalf("AssignColor = (%d, %d, %q), want (5, 0, \"#00ff00\")", table, idx, spec)
	}
}

func TestOscHyperlinkOpenAndClose(t *testing.T) {
	rec := vtparsetest.NewRecorder()
	p := vtparse.NewParser(rec, nil)

	if err := p.ProcessString([]byte("\x1b]8;id=1;https://example.com\x07link\x1b]8;;\x07")); err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	assertCallNames(t, rec.Calls, "AddHyperlink", "PrintString", "EndHyperlink")
}
