// Package statejson serializes an aggregate to its minimal JSON
// representation and back: each referenced buffer's text plus one
// ordered tuple per excerpt (buffer, line range, context padding).
//
// The representation captures structure, not identity. Decoding builds
// fresh buffers and excerpts, so ids differ from the encoded aggregate
// while the composed text and excerpt layout match exactly.
package statejson

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/multibuf"
)

// ErrMalformed reports input that is not a valid aggregate document.
var ErrMalformed = errors.New("malformed aggregate document")

// Encode renders the snapshot as a JSON document.
func Encode(s *multibuf.Snapshot) ([]byte, error) {
	out := []byte(`{"buffers":[],"excerpts":[]}`)

	var err error
	seen := make(map[multibuf.BufferID]bool)
	bi := 0
	for _, info := range s.Excerpts() {
		if seen[info.Buffer] {
			continue
		}
		seen[info.Buffer] = true

		snap, ok := s.BufferSnapshot(info.Buffer)
		if !ok {
			return nil, fmt.Errorf("%w: excerpt %d references unknown buffer %s", ErrMalformed, info.ID, info.Buffer)
		}
		out, err = sjson.SetBytes(out, fmt.Sprintf("buffers.%d.id", bi), string(info.Buffer))
		if err != nil {
			return nil, err
		}
		out, err = sjson.SetBytes(out, fmt.Sprintf("buffers.%d.text", bi), snap.Text())
		if err != nil {
			return nil, err
		}
		bi++
	}

	for i, info := range s.Excerpts() {
		prefix := fmt.Sprintf("excerpts.%d", i)
		fields := []struct {
			key   string
			value any
		}{
			{"buffer", string(info.Buffer)},
			{"start_line", info.Lines.Start},
			{"end_line", info.Lines.End},
			{"before", info.Padding.Before},
			{"after", info.Padding.After},
		}
		for _, f := range fields {
			out, err = sjson.SetBytes(out, prefix+"."+f.key, f.value)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Decode builds an aggregate from a JSON document produced by Encode.
// The returned MultiBuffer owns freshly created buffers; edits to the
// originals do not propagate to it.
func Decode(data []byte, opts ...multibuf.Option) (*multibuf.MultiBuffer, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	doc := gjson.ParseBytes(data)

	buffers := make(map[string]*multibuf.Buffer)
	for _, b := range doc.Get("buffers").Array() {
		id := b.Get("id").String()
		if id == "" {
			return nil, fmt.Errorf("%w: buffer entry without id", ErrMalformed)
		}
		buffers[id] = multibuf.NewBuffer(b.Get("text").String())
	}

	var specs []multibuf.ExcerptSpec
	for _, e := range doc.Get("excerpts").Array() {
		buf, ok := buffers[e.Get("buffer").String()]
		if !ok {
			return nil, fmt.Errorf("%w: excerpt references unknown buffer %q", ErrMalformed, e.Get("buffer").String())
		}
		specs = append(specs, multibuf.ExcerptSpec{
			Buffer: buf,
			Lines: multibuf.LineRange{
				Start: uint32(e.Get("start_line").Uint()),
				End:   uint32(e.Get("end_line").Uint()),
			},
			Padding: multibuf.Padding{
				Before: uint32(e.Get("before").Uint()),
				After:  uint32(e.Get("after").Uint()),
			},
		})
	}

	m := multibuf.New(opts...)
	if len(specs) > 0 {
		if _, err := m.InsertExcerpts(0, specs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return m, nil
}
