// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

// ID is a packed (intermediates + final byte) sequence identifier used as
// an O(1) switch/table dispatch key, per spec.md §3/§9. It fits any legal
// sequence: at most a handful of intermediate bytes (0x20-0x2F) followed
// by one final byte (0x40-0x7E, or a VT52/SS3 final in the low range).
type ID uint64

// maxIDBytes bounds the intermediates so that they plus the final byte
// fit the 8 bytes of an ID.
const maxIDBytes = 7

// idBuilder accumulates intermediate bytes and packs them with a final
// byte into an ID. It is bounded: bytes past maxIDBytes are dropped,
// matching real terminals which never see intermediates that long.
type idBuilder struct {
	bytes [maxIDBytes]byte
	n     int
}

func (b *idBuilder) reset() { b.n = 0 }

func (b *idBuilder) collect(c byte) {
	if b.n < maxIDBytes {
		b.bytes[b.n] = c
		b.n++
	}
}

// pack combines the collected intermediates with the final byte. Each
// byte occupies 8 bits of the 64-bit key, intermediates first (in
// collection order) then the final byte, so distinct intermediate
// sequences never collide.
func (b *idBuilder) pack(final byte) ID {
	var id ID
	for i := 0; i < b.n; i++ {
		id = id<<8 | ID(b.bytes[i])
	}
	id = id<<8 | ID(final)
	return id
}

// packID is a convenience for building an ID from intermediates already
// held as a byte slice, used by tests and by VT52/SS3 dispatch which
// never collect intermediates.
func packID(intermediates []byte, final byte) ID {
	var id ID
	for _, c := range intermediates {
		id = id<<8 | ID(c)
	}
	return id<<8 | ID(final)
}

// unpackID reverses pack/packID, splitting an ID back into its
// intermediate bytes (in original collection order) and final byte. Used
// by the dispatch engine's tables, which key off (intermediates, final)
// pairs rather than the raw integer.
func unpackID(id ID) (intermediates []byte, final byte) {
	final = byte(id)
	id >>= 8
	var rev []byte
	for id != 0 {
		rev = append(rev, byte(id))
		id >>= 8
	}
	intermediates = make([]byte, len(rev))
	for i, b := range rev {
		intermediates[len(rev)-1-i] = b
	}
	return intermediates, final
}
