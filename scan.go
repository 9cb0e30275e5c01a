// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

// isGroundControl is the scalar reference predicate a Ground Scanner
// fast-path must stay bit-exact with (spec.md §9 "SIMD fast-path ... the
// plain scanner MUST exist and MUST be the behavioral reference"): true
// for anything Ground would NOT simply Print.
func isGroundControl(r rune) bool {
	return r <= 0x1F || (r >= 0x7F && r <= 0x9F)
}

// scanGroundRun returns the length of the leading run of runes[i:] that
// Ground would print verbatim (i.e. the bulk-skip span a SIMD fast-path
// would consume in one step). This module only ships the scalar
// reference. (*Parser).ProcessString uses it to find Ground runs that
// need no callRun tracking; each rune of the run is still passed to step
// one at a time.
func scanGroundRun(runes []rune, i int) int {
	n := 0
	for i+n < len(runes) && !isGroundControl(runes[i+n]) {
		n++
	}
	return n
}
