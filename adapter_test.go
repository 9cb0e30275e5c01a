// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import "testing"

func TestInputAdapterWholeChunk(t *testing.T) {
	var a InputAdapter
	runes, err := a.Decode([]byte("h\xc3\xa9llo\xe4\xb8\xad")) // "héllo中"
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := []rune("héllo中")
	if string(runes) != string(want) {
		t.Fatalf("Decode() = %q, want %q", string(runes), string(want))
	}
}

func TestInputAdapterSplitMultiByte(t *testing.T) {
	full := []byte("中") // 3-byte UTF-8
	var a InputAdapter

	r1, err := a.Decode(full[:1])
	if err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	if len(r1) != 0 {
		t.Fatalf("first chunk produced %v, want none (buffered)", r1)
	}

	r2, err := a.Decode(full[1:])
	if err != nil {
		t.Fatalf("second chunk: %v", err)
	}
	if string(r2) != "中" {
		t.Fatalf("second chunk = %q, want \"中\"", string(r2))
	}
}

func TestInputAdapterSplitEveryBoundary(t *testing.T) {
	s := "a中b€c𝄞d"
	full := []byte(s)
	for cut := 0; cut <= len(full); cut++ {
		var a InputAdapter
		r1, err1 := a.Decode(full[:cut])
		if err1 != nil {
			t.Fatalf("cut=%d first half error: %v", cut, err1)
		}
		r2, err2 := a.Decode(full[cut:])
		if err2 != nil {
			t.Fatalf("cut=%d second half error: %v", cut, err2)
		}
		got := string(r1) + string(r2)
		if got != s {
			t.Fatalf("cut=%d: got %q, want %q", cut, got, s)
		}
	}
}

func TestInputAdapterInvalidUTF8(t *testing.T) {
	var a InputAdapter
	_, err := a.Decode([]byte{'a', 0xFF, 'b'})
	if err != ErrInvalidUTF8 {
		t.Fatalf("err = %v, want ErrInvalidUTF8", err)
	}
}
