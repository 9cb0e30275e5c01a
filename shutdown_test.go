// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse_test

import (
	"fmt"
	"testing"

	"github.com/ericwq/vtparse"
	"github.com/ericwq/vtparse/vtparsetest"
)

// panicTarget wraps a Recorder, panicking on CursorUp with whatever
// value panicOn holds (nil means behave normally).
type panicTarget struct {
	*vtparsetest.Recorder
	panicOn any
}

func (t *panicTarget) CursorUp(n int) bool {
	if t.panicOn != nil {
		panic(t.panicOn)
	}
	return t.Recorder.CursorUp(n)
}

// TestOrdinaryPanicDemotesToFailedDispatch asserts a DispatchTarget panic
// that isn't ErrShutdown is caught, logged, and treated as an ordinary
// failed dispatch: ProcessString returns no error and later sequences in
// the same chunk still run (spec.md §7).
func TestOrdinaryPanicDemotesToFailedDispatch(t *testing.T) {
	target := &panicTarget{Recorder: vtparsetest.NewRecorder(), panicOn: fmt.Errorf("boom")}
	p := vtparse.NewParser(target, nil)

	if err := p.ProcessString([]byte("\x1b[5A\x1b[2B")); err != nil {
		t.Fatalf("ProcessString returned error for an ordinary panic: %v", err)
	}
	assertCallNames(t, target.Calls, "CursorDown")
}

// TestShutdownPanicPropagatesFromProcessString asserts a panic carrying
// vtparse.ErrShutdown re-raises through ProcessString rather than being
// demoted, and halts processing of the rest of that chunk.
func TestShutdownPanicPropagatesFromProcessString(t *testing.T) {
	target := &panicTarget{Recorder: vtparsetest.NewRecorder(), panicOn: vtparse.ErrShutdown}
	p := vtparse.NewParser(target, nil)

	err := p.ProcessString([]byte("\x1b[5A\x1b[2B"))
	if err == nil {
		t.Fatalf("expected ErrShutdown, got nil")
	}
	if err != vtparse.ErrShutdown {
		t.Fatalf("err = %v, want vtparse.ErrShutdown", err)
	}
	// The second sequence (CursorDown) must not have run.
	if len(target.Calls) != 0 {
		t.Fatalf("calls = %v, want none (shutdown should halt the chunk)", target.Calls)
	}
}

// TestParserRecoversAfterShutdownReturnedOnce asserts a Parser remains
// usable for subsequent ProcessString calls after a shutdown has been
// reported once.
func TestParserRecoversAfterShutdownReturnedOnce(t *testing.T) {
	target := &panicTarget{Recorder: vtparsetest.NewRecorder(), panicOn: vtparse.ErrShutdown}
	p := vtparse.NewParser(target, nil)

	if err := p.ProcessString([]byte("\x1b[5A")); err != vtparse.ErrShutdown {
		t.Fatalf("first call err = %v, want ErrShutdown", err)
	}

	target.panicOn = nil
	if err := p.ProcessString([]byte("\x1b[2B")); err != nil {
		t.Fatalf("second call err = %v, want nil", err)
	}
	assertCallNames(t, target.Calls, "CursorDown")
}
