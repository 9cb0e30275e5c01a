// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

// Parser is the top-level façade wiring the Input Adapter, the DEC ANSI
// state machine, and a Dispatch Engine together (spec.md §1-§2),
// generalizing the way _examples/ericwq-aprilsh/terminal/parser.go's
// `Parser` owns an embedded `Dispatcher`/`State` pair and exposes a
// single byte-feeding entry point.
type Parser struct {
	state parserState
	mode  ParserMode

	params P
	id     idBuilder

	oscCode    int
	dcsHandler StringHandler
	vt52Args   []byte

	eng engine
	out *outputEngine // non-nil only when eng is the output engine

	adapter InputAdapter

	// callRun accumulates the raw bytes of the in-progress (undispatched)
	// sequence. It survives across ProcessString calls as long as state
	// stays off Ground, so a sequence split across chunk boundaries (e.g.
	// ESC arriving in one read, its CSI bracket in the next) is still
	// seen whole at end-of-input time; it is cleared whenever state
	// returns to Ground or once its bytes have been handed to the output
	// cache or the input tail dispatcher.
	callRun []byte

	// shutdownErr is set by eng.TakeShutdown() (via step) or by a
	// DcsPassThrough StringHandler panicking with ErrShutdown, and
	// re-raised to ProcessString's caller instead of being demoted to a
	// dispatch failure (spec.md §7).
	shutdownErr error
}

// NewParser returns a Parser running the output Dispatch Engine: it
// calls target's methods and, if sink is non-nil, forwards any sequence
// the target doesn't recognize verbatim (spec.md §4.4).
func NewParser(target DispatchTarget, sink PassThrough) *Parser {
	oe := newOutputEngine(target, sink)
	return &Parser{mode: DefaultParserMode, eng: oe, out: oe}
}

// NewInputParser returns a Parser running the Input Dispatch Engine,
// which emits key events to sink instead of calling a DispatchTarget
// (spec.md §4.6).
func NewInputParser(sink KeySink) *Parser {
	return &Parser{mode: DefaultParserMode, eng: newInputEngine(sink)}
}

// SetMode updates the parser's mode bitset (spec.md §6.3), e.g. to flip
// AcceptC1 or drop into VT52 grammar.
func (p *Parser) SetMode(mode ParserMode, enabled bool) {
	p.mode = p.mode.SetParserMode(mode, enabled)
}

// Mode returns the parser's current mode bitset.
func (p *Parser) Mode() ParserMode { return p.mode }

func (p *Parser) clear() {
	p.id.reset()
	p.params.reset()
	p.oscCode = 0
	p.dcsHandler = nil
	p.eng.Clear()
}

// ProcessString decodes chunk as UTF-8 through the Input Adapter and
// feeds the resulting wide characters through the state machine, then
// performs the end-of-input handling spec.md §4.3 requires: in output
// mode an undispatched trailing run is cached for a later flush; in
// input mode it is force-dispatched against whatever state was reached.
func (p *Parser) ProcessString(chunk []byte) error {
	runes, err := p.adapter.Decode(chunk)
	if err != nil {
		return err
	}

	for i := 0; i < len(runes); {
		if p.state == stateGround {
			n := scanGroundRun(runes, i)
			if n > 0 {
				for j := 0; j < n; j++ {
					p.step(runes[i+j])
					if err := p.takeShutdown(); err != nil {
						return err
					}
				}
				i += n
				continue
			}
			// A control byte or ESC sits at i: it may start a new
			// sequence (leaving Ground), so it must still be tracked
			// below rather than stepped untracked.
		}
		p.callRun = append(p.callRun, byte(runes[i]))
		p.step(runes[i])
		if p.state == stateGround {
			p.callRun = p.callRun[:0]
		}
		if err := p.takeShutdown(); err != nil {
			return err
		}
		i++
	}

	if p.state != stateGround {
		p.endOfInput()
	}
	if p.out != nil {
		p.out.flushPrint()
		if err := p.takeShutdown(); err != nil {
			return err
		}
	}
	return nil
}

// takeShutdown collects any ErrShutdown recorded by the engine during the
// step/flush just performed, clearing it so it fires only once.
func (p *Parser) takeShutdown() error {
	if err := p.eng.TakeShutdown(); err != nil {
		return err
	}
	if p.shutdownErr != nil {
		err := p.shutdownErr
		p.shutdownErr = nil
		return err
	}
	return nil
}

func (p *Parser) endOfInput() {
	if p.out != nil {
		switch p.state {
		case stateSosPmApcString, stateDcsPassThrough, stateDcsIgnore:
			// do nothing, per spec.md §4.3
		default:
			p.out.cache.append(p.callRun...)
		}
		p.callRun = p.callRun[:0]
		return
	}
	p.forceDispatchInputTail()
}

// forceDispatchInputTail implements the input-mode end-of-input rule:
// reset to Ground, replay all but the last character of the undispatched
// run, then force-dispatch the last character per the state that replay
// reached (spec.md §4.3). A run with fewer than two bytes is just the
// byte that left Ground (e.g. a lone ESC) with nothing said about it
// yet — there is no prefix state to force anything against, so it's
// left pending for the next call instead of being dispatched early.
func (p *Parser) forceDispatchInputTail() {
	run := []rune(string(p.callRun))
	if len(run) < 2 {
		return
	}

	p.state = stateGround
	p.callRun = p.callRun[:0]
	for _, r := range run[:len(run)-1] {
		p.step(r)
	}

	last := run[len(run)-1]
	switch p.state {
	case stateEscape, stateEscapeIntermediate:
		p.eng.EscDispatch(p.id.pack(byte(last)), p.callRun)
	case stateCsiEntry, stateCsiIntermediate, stateCsiParam, stateCsiSubParam, stateCsiIgnore:
		p.eng.CsiDispatch(p.id.pack(byte(last)), &p.params, p.callRun)
	case stateOscParam, stateOscString, stateOscTermination:
		p.eng.OscDispatch(p.oscCode, byte(last), p.callRun)
	case stateSs3Entry, stateSs3Param:
		p.eng.Ss3Dispatch(p.id.pack(byte(last)), &p.params)
	case stateGround:
		p.eng.Execute(byte(last))
	}
	p.state = stateGround
}

// FlushToTerminal forwards the cached partial sequence (if any) to the
// pass-through sink and clears the cache (spec.md §4.4). It returns false
// on an input-mode Parser (doing nothing) or on one with no sink attached
// (the cache is still cleared).
func (p *Parser) FlushToTerminal() bool {
	if p.out == nil {
		return false
	}
	return p.out.cache.flushTo(p.out.sink, nil)
}

// ClearCache explicitly drops any cached partial sequence bytes without
// forwarding them.
func (p *Parser) ClearCache() {
	if p.out != nil {
		p.out.cache.clear()
	}
}
