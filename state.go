// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import "errors"

// parserState enumerates the DEC ANSI parser states from spec.md §4.3,
// generalizing the (State interface, ground{}/escape{}/csiEntry{}/...)
// shape of _examples/ericwq-aprilsh/parser/state.go to the full grammar:
// sub-parameters get their own state (CsiSubParam), OSC gets its own
// termination state, VT52 and SS3 get their reduced grammars, and DCS
// gets the passthrough/ignore split the teacher never needed.
type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiSubParam
	stateCsiIntermediate
	stateCsiIgnore
	stateOscParam
	stateOscString
	stateOscTermination
	stateSs3Entry
	stateSs3Param
	stateVt52Param
	stateDcsEntry
	stateDcsParam
	stateDcsIntermediate
	stateDcsIgnore
	stateDcsPassThrough
	stateSosPmApcString
)

func isC0(r rune) bool { return r <= 0x1F }
func isIntermediateByte(r rune) bool { return r >= 0x20 && r <= 0x2F }
func isDigit(r rune) bool            { return r >= '0' && r <= '9' }
func isPrivMarker(r rune) bool       { return r >= 0x3C && r <= 0x3F }
func isFinalByte(r rune) bool        { return r >= 0x40 && r <= 0x7E }
func isC1(r rune) bool               { return r >= 0x80 && r <= 0x9F }

// step feeds one already-decoded wide character through the state machine,
// mutating p's buffers and invoking p.eng at the designated transitions
// (spec.md §4.3). It is the sole entry point every other path (including
// the C1 alias expansion and the end-of-input force-dispatch in
// (*Parser).ProcessString) funnels through.
func (p *Parser) step(r rune) {
	// C1 alias expansion: iff the mode allows it, an 8-bit C1 control is
	// indistinguishable from its 7-bit ESC-prefixed spelling other than
	// consuming one input character instead of two (spec.md §3, §4.3).
	if isC1(r) && p.mode.acceptsC1() {
		p.step(0x1B)
		p.step(r - 0x40)
		return
	}

	// Interrupt: CAN/SUB abort unconditionally back to Ground (spec.md
	// §4.3 "Interrupt"), except that a live DCS handler must first see
	// an end-of-data ESC.
	if r == 0x18 || r == 0x1A {
		if p.state == stateDcsPassThrough {
			p.feedDcsHandler(0x1B)
			p.releaseDcsHandler()
		}
		p.eng.Execute(byte(r))
		p.setState(stateGround)
		return
	}

	switch p.state {
	case stateGround:
		p.stepGround(r)
	case stateEscape:
		p.stepEscape(r)
	case stateEscapeIntermediate:
		p.stepEscapeIntermediate(r)
	case stateCsiEntry:
		p.stepCsiEntry(r)
	case stateCsiParam:
		p.stepCsiParam(r)
	case stateCsiSubParam:
		p.stepCsiSubParam(r)
	case stateCsiIntermediate:
		p.stepCsiIntermediate(r)
	case stateCsiIgnore:
		p.stepCsiIgnore(r)
	case stateOscParam:
		p.stepOscParam(r)
	case stateOscString:
		p.stepOscString(r)
	case stateOscTermination:
		p.stepOscTermination(r)
	case stateSs3Entry:
		p.stepSs3Entry(r)
	case stateSs3Param:
		p.stepSs3Param(r)
	case stateVt52Param:
		p.stepVt52Param(r)
	case stateDcsEntry:
		p.stepDcsEntry(r)
	case stateDcsParam:
		p.stepDcsParam(r)
	case stateDcsIntermediate:
		p.stepDcsIntermediate(r)
	case stateDcsIgnore:
		p.stepDcsIgnore(r)
	case stateDcsPassThrough:
		p.stepDcsPassThrough(r)
	case stateSosPmApcString:
		p.stepSosPmApcString(r)
	}
}

// setState transitions to next. It has no side effects of its own: the
// Clear action on Escape/CsiEntry/DcsEntry/OscParam entry is run by
// enterClear, and the DCS hook by hookDcs.
func (p *Parser) setState(next parserState) {
	p.state = next
}

func (p *Parser) enterClear(next parserState) {
	p.clear()
	p.setState(next)
}

// reprocessAsEscape is the "ESC seen while collecting a string" move used
// by DcsPassThrough, DcsIgnore and SosPmApcString: it runs Clear, enters
// Escape and feeds r through stepEscape. Those callers pass the ESC
// itself, so the byte after it (the '\\' of an ST, or the start of the
// next sequence) is handled by the Escape state like any ESC final.
func (p *Parser) reprocessAsEscape(r rune) {
	p.enterClear(stateEscape)
	p.stepEscape(r)
}

func (p *Parser) stepGround(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case r == 0x7F:
		// ignore
	case isC1(r):
		// step already expands C1 into ESC+low when acceptsC1() is true
		// (spec.md §3, §4.3); a C1 byte reaching here means the mode
		// rejects it, so it is dropped rather than printed.
	default:
		p.eng.Print(r)
	}
}

func (p *Parser) stepEscape(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isIntermediateByte(r):
		p.id.collect(byte(r))
		p.setState(stateEscapeIntermediate)
	case r == '[':
		p.enterClear(stateCsiEntry)
	case r == ']':
		p.enterClear(stateOscParam)
	case r == 'P':
		p.enterClear(stateDcsEntry)
	case r == 'X' || r == '^' || r == '_':
		p.setState(stateSosPmApcString)
	case r == 'O':
		p.setState(stateSs3Entry)
	case !p.mode.ansi():
		p.vt52Dispatch(r)
	case r == 0x7F:
		// ignore
	case r >= 0x30 && r <= 0x7E:
		// ESC finals span 0x30-0x7E (e.g. DECSC '7', DECKPAM '=').
		p.eng.EscDispatch(p.id.pack(byte(r)), p.callRun)
		p.setState(stateGround)
	default:
		// unclassified byte in escape: ignore, stay
	}
}

// vt52Dispatch handles ESC-prefixed VT52 commands (mode.Ansi()==false).
// 'Y' is the only one needing further bytes (row, column); everything
// else dispatches immediately (spec.md §4.3 "VT52 mode").
func (p *Parser) vt52Dispatch(final rune) {
	if final == 'Y' {
		p.vt52Args = p.vt52Args[:0]
		p.setState(stateVt52Param)
		return
	}
	p.eng.Vt52Dispatch(byte(final), nil)
	p.setState(stateGround)
}

func (p *Parser) stepVt52Param(r rune) {
	if r == 0x1B {
		p.enterClear(stateEscape)
		return
	}
	p.vt52Args = append(p.vt52Args, byte(r))
	if len(p.vt52Args) >= 2 {
		p.eng.Vt52Dispatch('Y', p.vt52Args)
		p.setState(stateGround)
	}
}

func (p *Parser) stepEscapeIntermediate(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isIntermediateByte(r):
		p.id.collect(byte(r))
	case r == 0x7F:
		// ignore
	case r >= 0x30 && r <= 0x7E:
		p.eng.EscDispatch(p.id.pack(byte(r)), p.callRun)
		p.setState(stateGround)
	}
}

func (p *Parser) stepCsiEntry(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isDigit(r):
		p.params.startParam()
		p.params.digit(uint32(r - '0'))
		p.setState(stateCsiParam)
	case r == ';':
		p.params.startParam()
		p.params.startParam()
		p.setState(stateCsiParam)
	case r == ':':
		p.params.startParam()
		p.params.startSubParam()
		p.setState(stateCsiSubParam)
	case isPrivMarker(r):
		p.id.collect(byte(r))
		p.setState(stateCsiParam)
	case isIntermediateByte(r):
		p.id.collect(byte(r))
		p.setState(stateCsiIntermediate)
	case r == 0x7F:
		// ignore
	case isFinalByte(r):
		p.dispatchCsi(byte(r))
	default:
		p.setState(stateCsiIgnore)
	}
}

func (p *Parser) stepCsiParam(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isDigit(r):
		p.digitGreedyCsiParam(r)
	case r == ';':
		p.params.startParam()
	case r == ':':
		p.params.startSubParam()
		p.setState(stateCsiSubParam)
	case isPrivMarker(r):
		p.setState(stateCsiIgnore)
	case isIntermediateByte(r):
		p.id.collect(byte(r))
		p.setState(stateCsiIntermediate)
	case r == 0x7F:
		// ignore
	case isFinalByte(r):
		p.dispatchCsi(byte(r))
	default:
		p.setState(stateCsiIgnore)
	}
}

// digitGreedyCsiParam folds one ASCII digit into the current parameter
// slot. It does not scan ahead: each digit of a run arrives through its
// own step call.
func (p *Parser) digitGreedyCsiParam(r rune) {
	p.params.digit(uint32(r - '0'))
}

func (p *Parser) stepCsiSubParam(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isDigit(r):
		p.params.subDigit(uint32(r - '0'))
	case r == ':':
		p.params.startSubParam()
	case r == ';':
		p.params.startParam()
		p.setState(stateCsiParam)
	case isPrivMarker(r):
		p.setState(stateCsiIgnore)
	case isIntermediateByte(r):
		p.id.collect(byte(r))
		p.setState(stateCsiIntermediate)
	case r == 0x7F:
		// ignore
	case isFinalByte(r):
		p.dispatchCsi(byte(r))
	default:
		p.setState(stateCsiIgnore)
	}
}

func (p *Parser) stepCsiIntermediate(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isIntermediateByte(r):
		p.id.collect(byte(r))
	case r == 0x7F:
		// ignore
	case isFinalByte(r):
		p.dispatchCsi(byte(r))
	default:
		p.setState(stateCsiIgnore)
	}
}

func (p *Parser) stepCsiIgnore(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isFinalByte(r):
		p.setState(stateGround)
	}
}

func (p *Parser) dispatchCsi(final byte) {
	id := p.id.pack(final)
	p.eng.CsiDispatch(id, &p.params, p.callRun)
	p.setState(stateGround)
}

func (p *Parser) stepSs3Entry(r rune) {
	p.stepSs3Param(r)
}

func (p *Parser) stepSs3Param(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isC0(r):
		p.eng.Execute(byte(r))
	case isDigit(r):
		p.params.startParam()
		p.params.digit(uint32(r - '0'))
		p.setState(stateSs3Param)
	case r == ';':
		p.params.startParam()
		p.setState(stateSs3Param)
	case isFinalByte(r):
		p.eng.Ss3Dispatch(p.id.pack(byte(r)), &p.params)
		p.setState(stateGround)
	default:
		p.setState(stateGround)
	}
}

func (p *Parser) stepDcsEntry(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isDigit(r):
		p.params.startParam()
		p.params.digit(uint32(r - '0'))
		p.setState(stateDcsParam)
	case r == ';':
		p.params.startParam()
		p.params.startParam()
		p.setState(stateDcsParam)
	case r == ':':
		p.params.startParam()
		p.params.startSubParam()
		p.setState(stateDcsParam)
	case isPrivMarker(r):
		p.id.collect(byte(r))
		p.setState(stateDcsParam)
	case isIntermediateByte(r):
		p.id.collect(byte(r))
		p.setState(stateDcsIntermediate)
	case isFinalByte(r):
		p.hookDcs(byte(r))
	default:
		// C0 and DEL are ignored while collecting a DCS header
	}
}

func (p *Parser) stepDcsParam(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isDigit(r):
		p.params.digit(uint32(r - '0'))
	case r == ';':
		p.params.startParam()
	case r == ':':
		p.params.startSubParam()
	case isPrivMarker(r):
		p.setState(stateDcsIgnore)
	case isIntermediateByte(r):
		p.id.collect(byte(r))
		p.setState(stateDcsIntermediate)
	case isFinalByte(r):
		p.hookDcs(byte(r))
	default:
	}
}

func (p *Parser) stepDcsIntermediate(r rune) {
	switch {
	case r == 0x1B:
		p.enterClear(stateEscape)
	case isIntermediateByte(r):
		p.id.collect(byte(r))
	case isFinalByte(r):
		p.hookDcs(byte(r))
	case r >= 0x30 && r <= 0x3F:
		p.setState(stateDcsIgnore)
	default:
	}
}

func (p *Parser) hookDcs(final byte) {
	id := p.id.pack(final)
	p.dcsHandler = p.eng.DcsDispatch(id, &p.params)
	if p.dcsHandler == nil {
		p.setState(stateDcsIgnore)
		return
	}
	p.setState(stateDcsPassThrough)
}

func (p *Parser) stepDcsPassThrough(r rune) {
	switch {
	case r == 0x1B:
		p.feedDcsHandler(0x1B)
		p.releaseDcsHandler()
		p.reprocessAsEscape(r)
	case r == 0x9C:
		p.feedDcsHandler(0x1B)
		p.releaseDcsHandler()
		p.setState(stateGround)
	case isC0(r) || (r >= 0x20 && r <= 0x7E):
		p.feedDcsHandler(r)
	default:
		// ignore
	}
}

// feedDcsHandler invokes the active DCS StringHandler, applying the same
// panic-isolation rule as outputEngine.guard (spec.md §7): a StringHandler
// panicking with ErrShutdown aborts the transfer and re-raises through
// ProcessString instead of being demoted to an ordinary decline.
func (p *Parser) feedDcsHandler(r rune) {
	if p.dcsHandler == nil {
		return
	}
	ok := false
	func() {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, isErr := rec.(error); isErr && errors.Is(err, ErrShutdown) {
				p.shutdownErr = err
				return
			}
		}()
		ok = p.dcsHandler(r)
	}()
	if !ok {
		p.setState(stateDcsIgnore)
		p.dcsHandler = nil
	}
}

func (p *Parser) releaseDcsHandler() {
	p.dcsHandler = nil
}

func (p *Parser) stepDcsIgnore(r rune) {
	switch r {
	case 0x1B:
		p.reprocessAsEscape(r)
	case 0x9C:
		p.setState(stateGround)
	}
}

func (p *Parser) stepSosPmApcString(r rune) {
	switch r {
	case 0x1B:
		p.reprocessAsEscape(r)
	case 0x9C:
		p.setState(stateGround)
	default:
		// SOS/PM/APC payloads are discarded; no engine hook (spec.md §9).
	}
}

func (p *Parser) stepOscParam(r rune) {
	switch {
	case isDigit(r):
		p.oscCode = p.oscCode*10 + int(r-'0')
		if p.oscCode > MaxParameterValue {
			p.oscCode = MaxParameterValue
		}
	case r == ';':
		p.eng.OscStart()
		p.setState(stateOscString)
	case r == 0x07:
		p.eng.OscStart()
		p.dispatchOsc(0x07)
	case r == 0x1B:
		p.eng.OscStart()
		p.setState(stateOscTermination)
	default:
		// malformed OSC introducer: fall through to string collection
		// so a payload-only OSC (no leading digits) still round-trips.
		p.eng.OscStart()
		p.setState(stateOscString)
		p.stepOscString(r)
	}
}

func (p *Parser) stepOscString(r rune) {
	switch r {
	case 0x07:
		p.dispatchOsc(0x07)
	case 0x1B:
		p.setState(stateOscTermination)
	case 0x9C:
		p.dispatchOsc(0x9C)
	default:
		p.eng.OscPut(r)
	}
}

func (p *Parser) stepOscTermination(r rune) {
	if r == '\\' {
		p.dispatchOsc(0x9C)
		return
	}
	p.dispatchOsc(0x9C)
	p.stepEscape(r)
}

func (p *Parser) dispatchOsc(terminator byte) {
	p.eng.OscDispatch(p.oscCode, terminator, p.callRun)
	p.setState(stateGround)
}
