package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a remote record. The API emits ObjectId strings, but some
// collections still carry numeric ids, so both decode into the same value.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := decodeScalar(b)
	if err != nil {
		return fmt.Errorf("models: invalid id %s: %w", b, err)
	}
	*id = ID(s)
	return nil
}

// IDs converts raw strings (form values, query params) into ids, skipping blanks.
func IDs(raw []string) []ID {
	out := make([]ID, 0, len(raw))
	for _, s := range raw {
		if s == "" {
			continue
		}
		out = append(out, ID(s))
	}
	return out
}

// Strings is the inverse of IDs.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Scalar is a loosely typed display value (durations, counts) that the API
// sends either quoted or bare.
type Scalar string

func (s Scalar) String() string { return string(s) }

// UnmarshalJSON accepts a JSON string, number, bool or null.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	v, err := decodeScalar(b)
	if err != nil {
		return fmt.Errorf("models: invalid scalar %s: %w", b, err)
	}
	*s = Scalar(v)
	return nil
}

func decodeScalar(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return "", nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		return string(b), nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
