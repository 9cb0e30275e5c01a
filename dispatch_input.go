// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import (
	"errors"

	"github.com/ericwq/vtparse/internal/vtlog"
)

// KeyEvent is one decoded input-mode event: either a plain character or
// a finalized escape/CSI/SS3 sequence reported by its packed ID and
// parameters (spec.md §4.6 "emits key events instead of terminal
// operations").
type KeyEvent struct {
	Char   rune
	ID     ID
	Params []int
}

// KeySink receives decoded input-mode events; nil is valid and simply
// discards them.
type KeySink func(KeyEvent)

// inputEngine is the Input Dispatch Engine: it shares the same grammar
// and end-of-input force-dispatch rules as outputEngine (spec.md §4.3)
// but reports key events instead of calling a DispatchTarget. It exists
// mainly so (*Parser) can run in either mode against the identical state
// machine; it is not this module's focus (spec.md §4.6).
type inputEngine struct {
	sink     KeySink
	shutdown error
}

func newInputEngine(sink KeySink) *inputEngine {
	return &inputEngine{sink: sink}
}

// emit calls sink under the same panic-isolation rule as
// outputEngine.guard (spec.md §7): sink panicking with ErrShutdown is
// captured for TakeShutdown rather than crashing ProcessString.
func (e *inputEngine) emit(ev KeyEvent) {
	if e.sink == nil {
		return
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && errors.Is(err, ErrShutdown) {
			e.shutdown = err
			return
		}
		vtlog.Logger.Warn("key sink panicked, dropping event", "recovered", r)
	}()
	e.sink(ev)
}

func (e *inputEngine) TakeShutdown() error {
	err := e.shutdown
	e.shutdown = nil
	return err
}

func (e *inputEngine) Clear()          {}
func (e *inputEngine) Print(r rune)    { e.emit(KeyEvent{Char: r}) }
func (e *inputEngine) Execute(c byte)  { e.emit(KeyEvent{Char: rune(c)}) }
func (e *inputEngine) EscDispatch(id ID, currentRun []byte) {
	e.emit(KeyEvent{ID: id})
}

func (e *inputEngine) CsiDispatch(id ID, params *P, currentRun []byte) {
	e.emit(KeyEvent{ID: id, Params: intParams(params)})
}

func (e *inputEngine) OscStart()     {}
func (e *inputEngine) OscPut(r rune) {}
func (e *inputEngine) OscDispatch(code int, terminator byte, currentRun []byte) {
	e.emit(KeyEvent{ID: ID(code)})
}

func (e *inputEngine) DcsDispatch(id ID, params *P) StringHandler { return nil }

func (e *inputEngine) Vt52Dispatch(final byte, args []byte) {
	e.emit(KeyEvent{Char: rune(final)})
}

func (e *inputEngine) Ss3Dispatch(id ID, params *P) {
	e.emit(KeyEvent{ID: id, Params: intParams(params)})
}
