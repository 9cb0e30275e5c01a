// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record encodes and decodes the decoded-action stream cmd/vtdump
// captures and cmd/vtreplay plays back. It uses the wire-format primitives
// in google.golang.org/protobuf/encoding/protowire directly rather than a
// generated message (there is no .proto in this module to generate from),
// which keeps the dependency real without inventing a schema compiler step.
package record

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for one Action record. There is no .proto source of
// truth for these; they're assigned here and must not be renumbered
// without bumping a format version, same as any hand-rolled protobuf
// wire usage would need.
const (
	fieldName = protowire.Number(1)
	fieldInt  = protowire.Number(2)
	fieldStr  = protowire.Number(3)
)

// Action is one Dispatch Target call captured off a live parse: the
// method name, its integer parameters in call order, and its single
// string parameter when the method has one (title, color spec, URI...).
type Action struct {
	Name   string
	Ints   []int
	String string
}

// Writer appends length-prefixed Action records to an underlying stream.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Write encodes a and writes it, preceded by a varint length so Reader
// can frame records without scanning for a delimiter.
func (w *Writer) Write(a Action) error {
	var rec []byte
	rec = protowire.AppendTag(rec, fieldName, protowire.BytesType)
	rec = protowire.AppendString(rec, a.Name)
	for _, n := range a.Ints {
		rec = protowire.AppendTag(rec, fieldInt, protowire.VarintType)
		rec = protowire.AppendVarint(rec, protowire.EncodeZigZag(int64(n)))
	}
	if a.String != "" {
		rec = protowire.AppendTag(rec, fieldStr, protowire.BytesType)
		rec = protowire.AppendString(rec, a.String)
	}

	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(rec)))
	if _, err := w.w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.w.Write(rec)
	return err
}

// Reader reads back the Action records a Writer produced.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader { return &Reader{r: bufio.NewReader(r)} }

// Read returns the next Action, or io.EOF once the stream is exhausted.
func (r *Reader) Read() (Action, error) {
	n, err := binary.ReadUvarint(r.r)
	if err != nil {
		return Action{}, err
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return Action{}, err
	}

	var a Action
	for len(buf) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(buf)
		if tagLen < 0 {
			return Action{}, fmt.Errorf("record: malformed tag: %w", protowire.ParseError(tagLen))
		}
		buf = buf[tagLen:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(buf)
			if m < 0 {
				return Action{}, fmt.Errorf("record: malformed name field: %w", protowire.ParseError(m))
			}
			a.Name = s
			buf = buf[m:]
		case num == fieldInt && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return Action{}, fmt.Errorf("record: malformed int field: %w", protowire.ParseError(m))
			}
			a.Ints = append(a.Ints, int(protowire.DecodeZigZag(v)))
			buf = buf[m:]
		case num == fieldStr && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(buf)
			if m < 0 {
				return Action{}, fmt.Errorf("record: malformed string field: %w", protowire.ParseError(m))
			}
			a.String = s
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return Action{}, fmt.Errorf("record: malformed unknown field: %w", protowire.ParseError(m))
			}
			buf = buf[m:]
		}
	}
	return a, nil
}
