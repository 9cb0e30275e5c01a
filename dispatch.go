// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import (
	"errors"

	"github.com/ericwq/vtparse/internal/vtlog"
)

// outputEngine is the production Dispatch Engine: it turns finalized
// (ID, params) tuples into DispatchTarget calls. dispatchEsc,
// dispatchCsiOp, dispatchOscOp and dispatchDcsOp unpack the ID and switch
// on (intermediates, final) or the OSC code, each case reading already
// parsed parameters and calling one target method.
type outputEngine struct {
	target DispatchTarget
	sink   PassThrough
	cache  sequenceCache

	lastChar rune
	oscBuf   []rune
	printBuf []rune

	hyperlinkOpen bool

	// shutdown records ErrShutdown when guard's recover sees it, until
	// Parser collects it via TakeShutdown (spec.md §7).
	shutdown error
}

func newOutputEngine(target DispatchTarget, sink PassThrough) *outputEngine {
	return &outputEngine{target: target, sink: sink}
}

// guard runs fn, catching any panic a DispatchTarget method raises
// (spec.md §7 "runtime fault in engine ... caught and demoted to false,
// except a distinguished Shutdown signal which re-raises to the
// caller"). A panic carrying ErrShutdown (wrapped or not) is captured
// for TakeShutdown; anything else is logged and dropped, leaving the
// action's ok result at its zero value (false).
func (e *outputEngine) guard(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && errors.Is(err, ErrShutdown) {
			e.shutdown = err
			return
		}
		vtlog.Logger.Warn("dispatch target panicked, demoting to failed dispatch", "recovered", r)
	}()
	fn()
}

func (e *outputEngine) TakeShutdown() error {
	err := e.shutdown
	e.shutdown = nil
	return err
}

// flushPrint emits any Print calls accumulated since the last non-Print
// action as a single PrintString, matching spec.md §8 scenario 1/2/8
// (a contiguous printable run is delivered as one PrintString rather
// than one Print per character). Every other engine entry point calls
// this before doing its own work.
func (e *outputEngine) flushPrint() {
	if len(e.printBuf) == 0 {
		return
	}
	s := string(e.printBuf)
	e.printBuf = e.printBuf[:0]
	e.guard(func() { e.target.PrintString(s) })
}

// Clear runs whenever a fresh sequence starts (Escape entering CsiEntry/
// OscParam/DcsEntry). Any bytes still sitting in cache belong to the
// sequence that just ended, successfully or not; nothing forwards them
// past this point, so they're dropped here rather than resurfacing
// stale on a later FlushToTerminal.
func (e *outputEngine) Clear() {
	e.flushPrint()
	e.oscBuf = e.oscBuf[:0]
	e.cache.clear()
}

func (e *outputEngine) Print(r rune) {
	e.printBuf = append(e.printBuf, r)
	if r >= 0x20 {
		e.lastChar = r
	}
}

// Execute maps a C0 control per spec.md §4.5's table. Every action
// clears LastChar except Print/PrintString.
func (e *outputEngine) Execute(c byte) {
	e.flushPrint()
	defer func() { e.lastChar = 0 }()
	e.guard(func() {
		switch c {
		case 0x05: // ENQ
		case 0x07: // BEL
			e.target.WarningBell()
			if e.sink != nil {
				e.sink([]byte{c})
			}
		case 0x08: // BS
			e.target.CursorBackward(1)
		case 0x09: // TAB
			e.target.ForwardTab(1)
		case 0x0D: // CR
			e.target.CarriageReturn()
		case 0x0A, 0x0B, 0x0C: // LF, VT, FF — mode-dependent (LNM) per spec.md §4.5
			e.target.LineFeed()
		case 0x0E: // SO
			e.target.LockingShift(1)
		case 0x0F: // SI
			e.target.LockingShift(0)
		case 0x1A: // SUB
			e.target.Print(0x2426)
		case 0x7F: // DEL
			e.target.Print(0x7F)
		}
	})
}

func (e *outputEngine) fail(id ID, currentRun []byte) bool {
	if e.sink != nil {
		e.cache.flushTo(e.sink, currentRun)
	}
	return false
}

func (e *outputEngine) EscDispatch(id ID, currentRun []byte) {
	e.flushPrint()
	inter, final := unpackID(id)
	ok := false
	e.guard(func() { ok = dispatchEsc(e.target, inter, final) })
	if !ok {
		e.fail(id, currentRun)
	}
	e.lastChar = 0
}

// dispatchEsc maps the handful of ESC-final (no CSI bracket) operations:
// locking shifts, single shift 2, DECKPAM/DECKPNM, ACS, and the DEC
// line-rendition family (ESC # 3..8).
func dispatchEsc(t DispatchTarget, inter []byte, final byte) bool {
	switch string(inter) {
	case "":
		switch final {
		case 'n':
			return t.LockingShift(2)
		case 'o':
			return t.LockingShift(3)
		case '~':
			return t.LockingShiftRight(1)
		case '}':
			return t.LockingShiftRight(2)
		case '|':
			return t.LockingShiftRight(3)
		case 'N':
			return t.SingleShift(2)
		case '=':
			return t.SetKeypadMode(true)
		case '>':
			return t.SetKeypadMode(false)
		case '<':
			return t.SetAnsiMode(true)
		case '7':
			return t.CursorSaveState()
		case '8':
			return t.CursorRestoreState()
		case 'c':
			return t.HardReset()
		case 'H':
			return t.HorizontalTabSet()
		}
	case " ":
		switch final {
		case 'F':
			return t.AcceptC1Controls(false)
		case 'G':
			return t.AcceptC1Controls(true)
		}
	case "#":
		switch final {
		case '3', '4', '5', '6':
			return t.SetLineRendition(int(final - '0'))
		case '8':
			return t.ScreenAlignmentPattern()
		}
	case "(":
		return t.Designate94Charset(0, final)
	case ")":
		return t.Designate94Charset(1, final)
	case "*":
		return t.Designate94Charset(2, final)
	case "+":
		return t.Designate94Charset(3, final)
	case "-":
		return t.Designate96Charset(1, final)
	case ".":
		return t.Designate96Charset(2, final)
	case "/":
		return t.Designate96Charset(3, final)
	case "%":
		if final == '.' {
			return t.RequestUserPreferenceCharset()
		}
		return t.DesignateCodingSystem(final)
	case "!":
		return t.AnnounceCodeStructure(final)
	}
	return false
}

func (e *outputEngine) CsiDispatch(id ID, params *P, currentRun []byte) {
	e.flushPrint()
	inter, final := unpackID(id)
	if !csiAcceptsSubParams(inter, final, params) {
		e.fail(id, currentRun)
		return
	}
	ok := false
	e.guard(func() {
		ok = dispatchCsiOp(e.target, inter, final, params)
		if final == 'b' {
			// REP: always succeeds, even with no prior printable character.
			if e.lastChar != 0 {
				n := params.Get(0, 1)
				e.target.PrintString(repeatRune(e.lastChar, n))
			}
			ok = true
		}
	})
	if !ok {
		e.fail(id, currentRun)
	}
	e.lastChar = 0
}

func repeatRune(r rune, n int) string {
	if n <= 0 {
		n = 1
	}
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = r
	}
	return string(runes)
}

// csiAcceptsSubParams enforces spec.md §4.5's rule: only SGR accepts
// sub-parameters unconditionally, DECCARA/DECRARA only on parameter
// index >= 4, everything else must have none.
func csiAcceptsSubParams(inter []byte, final byte, params *P) bool {
	if !params.HasSubParams() {
		return true
	}
	switch {
	case len(inter) == 0 && final == 'm':
		return true
	case string(inter) == "$" && (final == 'r' || final == 't'):
		return !hasSubParamsBelow(params, 4)
	}
	return false
}

func hasSubParamsBelow(params *P, from int) bool {
	for i := 0; i < from && i < params.Count(); i++ {
		if params.SubCount(i) > 0 {
			return true
		}
	}
	return false
}

func mode(inter []byte, n int) ModeParam {
	return ModeParam{Number: n, Private: string(inter) == "?"}
}

// dispatchCsiOp is the CSI table: keyed by (intermediates, final). The
// private marker '?' collected during CsiEntry lands in inter, so DEC
// private modes and their ANSI-standard counterparts share one switch.
func dispatchCsiOp(t DispatchTarget, inter []byte, final byte, p *P) bool {
	privateOrPlain := string(inter)
	if privateOrPlain == "?" {
		switch final {
		case 'h':
			return setResetModes(t, inter, p, true)
		case 'l':
			return setResetModes(t, inter, p, false)
		}
	}
	switch privateOrPlain {
	case "":
		switch final {
		case 'A':
			return t.CursorUp(p.Get(0, 1))
		case 'B':
			return t.CursorDown(p.Get(0, 1))
		case 'C':
			return t.CursorForward(p.Get(0, 1))
		case 'D':
			return t.CursorBackward(p.Get(0, 1))
		case 'E':
			return t.CursorNextLine(p.Get(0, 1))
		case 'F':
			return t.CursorPrevLine(p.Get(0, 1))
		case 'G':
			return t.CursorHorizontalPositionAbsolute(p.Get(0, 1))
		case 'H', 'f':
			return t.CursorPosition(p.Get(0, 1), p.Get(1, 1))
		case 'I':
			return t.ForwardTab(p.Get(0, 1))
		case 'J':
			return t.EraseInDisplay(p.Get(0, 0))
		case 'K':
			return t.EraseInLine(p.Get(0, 0))
		case 'L':
			return t.InsertLine(p.Get(0, 1))
		case 'M':
			return t.DeleteLine(p.Get(0, 1))
		case 'P':
			return t.DeleteCharacter(p.Get(0, 1))
		case 'S':
			return t.ScrollUp(p.Get(0, 1))
		case 'T':
			return t.ScrollDown(p.Get(0, 1))
		case 'X':
			return t.EraseCharacters(p.Get(0, 1))
		case 'Z':
			return t.BackwardsTab(p.Get(0, 1))
		case '@':
			return t.InsertCharacter(p.Get(0, 1))
		case 'a':
			return t.HorizontalPositionRelative(p.Get(0, 1))
		case 'c':
			return t.DeviceAttributes()
		case 'd':
			return t.VerticalLinePositionAbsolute(p.Get(0, 1))
		case 'e':
			return t.VerticalPositionRelative(p.Get(0, 1))
		case 'g':
			return t.TabClear(p.Get(0, 0))
		case 'h':
			return setResetModes(t, inter, p, true)
		case 'l':
			return setResetModes(t, inter, p, false)
		case 'm':
			return t.SetGraphicsRendition(sgrParams(p))
		case 'n':
			return t.DeviceStatusReport(p.Get(0, 0))
		case 'r':
			return t.SetTopBottomScrollingMargins(p.Get(0, 1), p.Get(1, 0))
		case 's':
			if p.Count() >= 2 {
				return t.SetLeftRightScrollingMargins(p.Get(0, 1), p.Get(1, 0))
			}
			return t.CursorSaveState()
		case 't':
			r := t.WindowManipulation(intParams(p))
			return r.Handled
		case 'u':
			return t.CursorRestoreState()
		case 'x':
			return t.RequestTerminalParameters(p.Get(0, 0))
		case 'W':
			return t.TabSet(p.Get(0, 0))
		}
	case "?":
		switch final {
		case 'J':
			return t.SelectiveEraseInDisplay(p.Get(0, 0))
		case 'K':
			return t.SelectiveEraseInLine(p.Get(0, 0))
		case 'n':
			return t.DeviceStatusReport(p.Get(0, 0))
		}
	case ">":
		switch final {
		case 'c':
			return t.SecondaryDeviceAttributes()
		}
	case "=":
		switch final {
		case 'c':
			return t.TertiaryDeviceAttributes()
		}
	case "'":
		switch final {
		case '}':
			return t.InsertColumn(p.Get(0, 1))
		case '~':
			return t.DeleteColumn(p.Get(0, 1))
		case 'w':
			return t.RequestDisplayedExtent()
		}
	case " ":
		switch final {
		case 'q':
			blinking := p.Get(0, 0)%2 == 1
			return t.SetCursorStyle(p.Get(0, 0), blinking)
		case 'U':
			return t.NextPage(p.Get(0, 1))
		case 'V':
			return t.PrecedingPage(p.Get(0, 1))
		case 'P':
			return t.PagePositionAbsolute(p.Get(0, 1))
		case 'R':
			return t.PagePositionRelative(p.Get(0, 1))
		case 'Q':
			return t.PagePositionBack(p.Get(0, 1))
		}
	case "\"":
		switch final {
		case 'q':
			return t.SetCharacterProtectionAttribute(p.Get(0, 0))
		}
	case "!":
		switch final {
		case 'p':
			return t.SoftReset()
		}
	case "$":
		switch final {
		case 'p':
			return t.RequestMode(mode(inter, p.Get(0, 0))) != ModeNotRecognized
		case 'w':
			h := t.RequestPresentationStateReport(p.Get(0, 0))
			return h != nil
		case 'r':
			return t.ChangeAttributesRectangularArea(p.Get(0, 1), p.Get(1, 1), p.Get(2, 1), p.Get(3, 1), sgrParamsFrom(p, 4))
		case 't':
			return t.ReverseAttributesRectangularArea(p.Get(0, 1), p.Get(1, 1), p.Get(2, 1), p.Get(3, 1), sgrParamsFrom(p, 4))
		case 'v':
			return t.CopyRectangularArea(p.Get(0, 1), p.Get(1, 1), p.Get(2, 1), p.Get(3, 1), p.Get(5, 1), p.Get(6, 1))
		case 'x':
			return t.FillRectangularArea(rune(p.Get(0, ' ')), p.Get(1, 1), p.Get(2, 1), p.Get(3, 1), p.Get(4, 1))
		case 'z':
			return t.EraseRectangularArea(p.Get(0, 1), p.Get(1, 1), p.Get(2, 1), p.Get(3, 1))
		case '{':
			return t.SelectiveEraseRectangularArea(p.Get(0, 1), p.Get(1, 1), p.Get(2, 1), p.Get(3, 1))
		}
	case "*":
		switch final {
		case 'x':
			return t.SelectAttributeChangeExtent(p.Get(0, 0))
		case 'y':
			return t.RequestChecksumRectangularArea(p.Get(0, 0), p.Get(2, 1), p.Get(3, 1), p.Get(4, 1), p.Get(5, 1))
		case 'z':
			return t.InvokeMacro(p.Get(0, 0))
		}
	case "#":
		switch final {
		case '{':
			return t.PushGraphicsRendition(intParams(p))
		case '}':
			return t.PopGraphicsRendition()
		}
	}
	return false
}

func setResetModes(t DispatchTarget, inter []byte, p *P, set bool) bool {
	ok := false
	for i := 0; i < p.Count(); i++ {
		n, present := p.At(i)
		if !present {
			continue
		}
		m := mode(inter, n)
		if set {
			ok = t.SetMode(m) || ok
		} else {
			ok = t.ResetMode(m) || ok
		}
	}
	return ok
}

func sgrParams(p *P) []SGRParam {
	return sgrParamsFrom(p, 0)
}

func sgrParamsFrom(p *P, from int) []SGRParam {
	n := p.Count()
	if n == 0 && from == 0 {
		return []SGRParam{{Value: 0}}
	}
	out := make([]SGRParam, 0, n-from)
	for i := from; i < n; i++ {
		v := p.Get(i, 0)
		subs := make([]int, 0, p.SubCount(i))
		for j := 0; j < p.SubCount(i); j++ {
			sv, _ := p.SubAt(i, j)
			subs = append(subs, sv)
		}
		out = append(out, SGRParam{Value: v, Subs: subs})
	}
	return out
}

func intParams(p *P) []int {
	out := make([]int, p.Count())
	for i := range out {
		out[i] = p.Get(i, 0)
	}
	return out
}

func (e *outputEngine) OscStart() {
	e.flushPrint()
	e.oscBuf = e.oscBuf[:0]
}

func (e *outputEngine) OscPut(r rune) {
	e.oscBuf = append(e.oscBuf, r)
}

func (e *outputEngine) OscDispatch(code int, terminator byte, currentRun []byte) {
	ok := false
	e.guard(func() { ok = dispatchOscOp(e.target, code, string(e.oscBuf), &e.hyperlinkOpen) })
	if !ok {
		if e.sink != nil {
			e.cache.flushTo(e.sink, currentRun)
		}
	}
	e.oscBuf = e.oscBuf[:0]
	e.lastChar = 0
}

func dispatchOscOp(t DispatchTarget, code int, payload string, hyperlinkOpen *bool) bool {
	switch code {
	case 0, 1, 2, 21:
		return t.SetWindowTitle(payload)
	case 4:
		pairs, ok := parseColorPairs(payload)
		if !ok {
			return false
		}
		for _, pr := range pairs {
			t.SetColorTableEntry(pr.Index, pr.Spec)
		}
		return true
	case 5:
		// OSC 5 assigns xterm's "special colors" (cursor, highlight, ...)
		// the same index;spec pair syntax OSC 4 uses for the palette.
		pairs, ok := parseColorPairs(payload)
		if !ok {
			return false
		}
		for _, pr := range pairs {
			t.AssignColor(5, pr.Index, pr.Spec)
		}
		return true
	case 8:
		id, uri := splitHyperlinkPayload(payload)
		if uri == "" {
			*hyperlinkOpen = false
			return t.EndHyperlink()
		}
		*hyperlinkOpen = true
		return t.AddHyperlink(id, uri)
	case 9:
		return t.DoConEmuAction(payload)
	case 133:
		return t.DoFinalTermAction(payload)
	case 633:
		return t.DoVsCodeAction(payload)
	case 1337:
		return t.DoITerm2Action(payload)
	case 10, 11, 12:
		specs := splitColorSequence(payload)
		ok := false
		for i, spec := range specs {
			if spec == InvalidColor || spec == "" {
				continue
			}
			switch code + i {
			case 10:
				ok = t.SetDefaultForeground(spec) || ok
			case 11:
				ok = t.SetDefaultBackground(spec) || ok
			case 12:
				ok = t.SetCursorColor(spec) || ok
			}
		}
		return ok
	case 52:
		targets, data, query, ok := decodeClipboardPayload(payload)
		if !ok {
			return false
		}
		if query {
			return true
		}
		return t.SetClipboard(targets, data)
	case 110, 111:
		return false
	case 112:
		return t.SetCursorColor(InvalidColor)
	}
	return false
}

func (e *outputEngine) DcsDispatch(id ID, params *P) StringHandler {
	e.flushPrint()
	inter, final := unpackID(id)
	e.lastChar = 0
	var handler StringHandler
	e.guard(func() { handler = dispatchDcsOp(e.target, inter, final, params) })
	return handler
}

// bufferUntilST returns a StringHandler that buffers runes and, on the
// state machine's end-of-data signal (ESC, per spec.md §4.3), invokes fn
// with the buffered payload. Used by the two DCS operations whose target
// method wants a plain string rather than a per-character StringHandler.
func bufferUntilST(fn func(payload string) bool) StringHandler {
	var buf []rune
	return func(r rune) bool {
		if r == 0x1B {
			fn(string(buf))
			return false
		}
		buf = append(buf, r)
		return true
	}
}

// dispatchDcsOp resolves a finished DCS header to the StringHandler that
// will receive its payload. final is the byte that ended header
// collection (0x40-0x7E); inter holds whatever intermediates
// (0x20-0x2F) preceded it, which is empty for the bare Pfn;Pcn{...
// DECDLD and ~ sound-download forms since '{' and '~' are themselves
// final bytes, not intermediates.
func dispatchDcsOp(t DispatchTarget, inter []byte, final byte, p *P) StringHandler {
	switch string(inter) {
	case "":
		switch final {
		case '{':
			return t.DownloadDRCS(intParams(p))
		case '~':
			return t.PlaySounds(intParams(p))
		}
	case "!":
		switch final {
		case 'z':
			return t.DefineMacro(intParams(p))
		case 'u':
			return bufferUntilST(t.AssignUserPreferenceCharset)
		}
	case "$":
		switch final {
		case 'p':
			return t.RestoreTerminalState(intParams(p))
		case 'q':
			return bufferUntilST(func(name string) bool { return t.RequestSetting(name) })
		}
	case "&":
		switch final {
		case 'p':
			return t.RestorePresentationState(intParams(p))
		}
	}
	return nil
}

func (e *outputEngine) Vt52Dispatch(final byte, args []byte) {
	e.flushPrint()
	e.guard(func() {
		switch final {
		case 'A':
			e.target.CursorUp(1)
		case 'B':
			e.target.CursorDown(1)
		case 'C':
			e.target.CursorForward(1)
		case 'D':
			e.target.CursorBackward(1)
		case 'H':
			e.target.CursorPosition(1, 1)
		case 'I':
			e.target.CursorPrevLine(1)
		case 'J':
			e.target.EraseInDisplay(0)
		case 'K':
			e.target.EraseInLine(0)
		case 'Y':
			if len(args) == 2 {
				e.target.CursorPosition(int(args[0])-31, int(args[1])-31)
			}
		case 'Z':
			e.target.Vt52DeviceAttributes()
		case '=':
			e.target.SetKeypadMode(true)
		case '>':
			e.target.SetKeypadMode(false)
		case '<':
			e.target.SetAnsiMode(true)
		}
	})
	e.lastChar = 0
}

func (e *outputEngine) Ss3Dispatch(id ID, params *P) {
	e.flushPrint()
	_, _ = unpackID(id)
	e.guard(func() { e.target.SingleShift(3) })
	e.lastChar = 0
}
