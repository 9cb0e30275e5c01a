// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// MaxURLLength truncates OSC 8 hyperlink URIs (spec.md §4.5 "uri
// truncated to MAX_URL_LENGTH = 2,097,152").
const MaxURLLength = 2097152

// InvalidColor is the sentinel a Set{Foreground,Background,Cursor}Color
// payload uses to mean "skip this slot", and what SetCursorColor is
// called with for OSC 112 (spec.md §4.5).
const InvalidColor = "\x00invalid\x00"

// parseColorPairs splits an OSC 4 payload ("idx;spec[;idx;spec]...")
// into (index, spec) pairs, skipping any pair that doesn't parse as
// index;spec. Grounded in the teacher's OSC handling shape in
// _examples/ericwq-aprilsh/terminal/handler.go (payload split on ';',
// tolerant of malformed entries) generalized to the paired form.
func parseColorPairs(payload string) (pairs []struct {
	Index int
	Spec  string
}, ok bool,
) {
	fields := strings.Split(payload, ";")
	for i := 0; i+1 < len(fields); i += 2 {
		idx, err := strconv.Atoi(fields[i])
		if err != nil {
			continue
		}
		pairs = append(pairs, struct {
			Index int
			Spec  string
		}{idx, fields[i+1]})
	}
	return pairs, len(pairs) > 0
}

// hyperlinkParams is the parsed `params` half of an OSC 8 payload:
// colon-separated `k=v` entries. Only the value of `id` is returned; all
// other entries are discarded.
func hyperlinkParams(raw string) (id string) {
	for _, kv := range strings.Split(raw, ":") {
		k, v, found := strings.Cut(kv, "=")
		if found && k == "id" {
			id = v
		}
	}
	return id
}

// splitHyperlinkPayload splits an OSC 8 payload into its params and uri
// halves, truncating uri to MaxURLLength.
func splitHyperlinkPayload(payload string) (id, uri string) {
	rawParams, rawURI, _ := strings.Cut(payload, ";")
	id = hyperlinkParams(rawParams)
	if len(rawURI) > MaxURLLength {
		rawURI = rawURI[:MaxURLLength]
	}
	return id, rawURI
}

// splitColorSequence splits a `spec[;spec[;spec]]` payload (OSC 10/11/12)
// on ';'. It returns every field; the caller skips InvalidColor or empty
// slots and ignores fields past the cursor color.
func splitColorSequence(payload string) []string {
	return strings.Split(payload, ";")
}

// decodeClipboardPayload splits an OSC 52 payload into targets and
// decoded data. `data == "?"` is a query, reported via the ok=true,
// query=true return so the caller can no-op it.
func decodeClipboardPayload(payload string) (targets string, data []byte, query bool, ok bool) {
	t, d, found := strings.Cut(payload, ";")
	if !found {
		return "", nil, false, false
	}
	if d == "?" {
		return t, nil, true, true
	}
	decoded, err := base64.StdEncoding.DecodeString(d)
	if err != nil {
		return t, nil, false, false
	}
	return t, decoded, false, true
}
