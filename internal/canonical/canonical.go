// Package canonical produces the byte-stable JSON form that every party
// re-executing a transaction must agree on: object keys sorted at every level,
// no insignificant whitespace, number text kept exactly as encoded.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errTrailingData = errors.New("trailing data after JSON value")

// Marshal encodes v and returns its canonical form.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return Canonicalize(raw)
}

// Canonicalize rewrites an already-encoded JSON value into canonical form.
func Canonicalize(raw []byte) ([]byte, error) {
	tree, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return encode(tree)
}

// Decode parses a single JSON value into a generic tree. Numbers are returned
// as json.Number so that re-encoding does not alter their text.
func Decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode: %w", errTrailingData)
	}
	return tree, nil
}

// encoding/json writes map keys in sorted order, which gives the recursive
// key sort once the value is held as map[string]any.
func encode(tree any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
