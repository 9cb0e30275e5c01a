// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import "golang.org/x/exp/constraints"

const (
	// MaxParameterValue clamps any single accumulated CSI/DCS/OSC
	// numeral. Values that would overflow it latch at the max instead
	// of wrapping.
	MaxParameterValue = 65535

	// MaxParameterCount bounds how many ';'-delimited top level
	// parameters a single sequence may carry. Delimiters past this
	// count are absorbed but do not start a new slot.
	MaxParameterCount = 32

	// MaxSubparameterCount bounds how many ':'-delimited sub-parameters
	// a single top-level parameter slot may carry.
	MaxSubparameterCount = 6
)

// clamp returns v capped at max, generic over any unsigned/int width. The
// parameter and sub-parameter accumulators use it on uint32 values.
func clamp[T constraints.Integer](v, max T) T {
	if v > max {
		return max
	}
	return v
}

// P is the top-level parameter accumulator for a single sequence:
// MaxParameterCount slots, each an optional clamped unsigned value, plus
// an overflow latch and per-slot sub-parameter ranges.
type P struct {
	values  [MaxParameterCount]uint32
	present [MaxParameterCount]bool
	count   int
	overflow bool

	sub SP
	// subRange[i] is the [start,end) slice of sub.values owned by
	// parameter slot i. Only populated for slots that saw a ':'.
	subRange [MaxParameterCount][2]uint8
}

// SP is the flat sub-parameter array shared by all of a sequence's
// top-level parameter slots. Indices fit in a byte because
// MaxParameterCount*MaxSubparameterCount <= 256.
type SP struct {
	values   [MaxParameterCount * MaxSubparameterCount]uint32
	present  [MaxParameterCount * MaxSubparameterCount]bool
	count    uint8
	overflow [MaxParameterCount]bool // latched per owning top-level slot
}

// reset clears both the top-level and sub-parameter state so the next
// sequence starts from a clean slate. Called by the Clear action.
func (p *P) reset() {
	*p = P{}
}

// startParam begins a new top-level slot (on ';' or on the first digit of
// the sequence). It is a no-op once MaxParameterCount slots exist, other
// than latching overflow.
func (p *P) startParam() {
	if p.count == 0 {
		p.count = 1
		return
	}
	if p.count >= MaxParameterCount {
		p.overflow = true
		return
	}
	p.count++
}

// digit folds a decimal digit into the current top-level slot, clamping
// at MaxParameterValue. If no slot has been started yet it starts the
// first one.
func (p *P) digit(d uint32) {
	if p.count == 0 {
		p.startParam()
	}
	i := p.count - 1
	if i >= MaxParameterCount {
		return
	}
	p.present[i] = true
	v := p.values[i]*10 + d
	p.values[i] = clamp(v, uint32(MaxParameterValue))
}

// startSubParam begins a new sub-parameter slot under the current
// top-level parameter (on ':'), latching that parameter's own overflow
// flag once MaxSubparameterCount is exceeded.
func (p *P) startSubParam() {
	if p.count == 0 {
		p.startParam()
	}
	i := p.count - 1
	if i >= MaxParameterCount {
		return
	}
	rng := &p.subRange[i]
	n := rng[1] - rng[0]
	if n > 0 && int(n) >= MaxSubparameterCount {
		p.sub.overflow[i] = true
		return
	}
	if int(p.sub.count) >= len(p.sub.values) {
		p.sub.overflow[i] = true
		return
	}
	if n == 0 {
		rng[0] = p.sub.count
	}
	rng[1] = p.sub.count + 1
	p.sub.values[p.sub.count] = 0
	p.sub.present[p.sub.count] = false
	p.sub.count++
}

// subDigit folds a decimal digit into the current sub-parameter slot.
func (p *P) subDigit(d uint32) {
	i := p.count - 1
	if i < 0 || i >= MaxParameterCount {
		return
	}
	rng := p.subRange[i]
	if rng[1] == rng[0] {
		p.startSubParam()
		rng = p.subRange[i]
	}
	idx := rng[1] - 1
	p.sub.present[idx] = true
	v := p.sub.values[idx]*10 + d
	p.sub.values[idx] = clamp(v, uint32(MaxParameterValue))
}

// Count returns the number of top-level parameter slots parsed
// (0 if the sequence had none, e.g. bare "CSI m").
func (p *P) Count() int { return p.count }

// Overflowed reports whether more than MaxParameterCount parameters were
// supplied; parameters past the limit were discarded.
func (p *P) Overflowed() bool { return p.overflow }

// At returns the value stored at index i and whether it was explicitly
// present (as opposed to an elided/defaulted slot). Indices beyond what
// was parsed report (0, false).
func (p *P) At(i int) (value int, present bool) {
	if i < 0 || i >= p.count {
		return 0, false
	}
	return int(p.values[i]), p.present[i]
}

// Get returns the value at index i, or def if the slot is absent or was
// left empty (e.g. "CSI ;5H" leaves slot 0 empty).
func (p *P) Get(i, def int) int {
	v, present := p.At(i)
	if !present {
		return def
	}
	return v
}

// SubCount returns how many sub-parameters top-level slot i carries.
func (p *P) SubCount(i int) int {
	if i < 0 || i >= p.count {
		return 0
	}
	rng := p.subRange[i]
	return int(rng[1] - rng[0])
}

// SubAt returns sub-parameter j of top-level slot i.
func (p *P) SubAt(i, j int) (value int, present bool) {
	if i < 0 || i >= p.count {
		return 0, false
	}
	rng := p.subRange[i]
	idx := int(rng[0]) + j
	if j < 0 || idx >= int(rng[1]) {
		return 0, false
	}
	return int(p.sub.values[idx]), p.sub.present[idx]
}

// SubOverflowed reports whether top-level slot i saw more than
// MaxSubparameterCount sub-parameters.
func (p *P) SubOverflowed(i int) bool {
	if i < 0 || i >= MaxParameterCount {
		return false
	}
	return p.sub.overflow[i]
}

// HasSubParams reports whether any top-level slot carries sub-parameters,
// used by the dispatch engine's sub-parameter acceptability check (§4.5).
func (p *P) HasSubParams() bool {
	for i := 0; i < p.count; i++ {
		if p.SubCount(i) > 0 {
			return true
		}
	}
	return false
}

// HasSubParamsFrom reports whether any slot at index >= from carries
// sub-parameters. (The DECCARA/DECRARA check in dispatch.go uses
// hasSubParamsBelow instead.)
func (p *P) HasSubParamsFrom(from int) bool {
	for i := from; i < p.count; i++ {
		if p.SubCount(i) > 0 {
			return true
		}
	}
	return false
}
