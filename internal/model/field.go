package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// FieldKind discriminates the states a snapshot field can be in.
type FieldKind int

const (
	// KindUnavailable means the value could not be obtained this cycle:
	// the fetch failed or the data does not exist. Zero value on purpose,
	// so an uninitialized Field never masquerades as real data.
	KindUnavailable FieldKind = iota
	// KindUnchanged means the field was deliberately skipped this cycle;
	// the consumer must keep whatever value it previously held.
	KindUnchanged
	// KindUnknown means the feed that produced this record never carries
	// the value. Only used for latest-day cost.
	KindUnknown
	// KindValue means the field carries a concrete value.
	KindValue
)

const (
	sentinelUnavailable = "unavailable"
	sentinelUnchanged   = "unchanged"
	sentinelUnknown     = "unknown"
)

// Field is a snapshot field tagged with its state. Exactly one of the four
// kinds holds at any time; the payload is only meaningful for KindValue.
// The explicit tag keeps a real value that happens to equal a sentinel
// string from being misread as one.
type Field struct {
	kind FieldKind
	val  any
}

// Val wraps a concrete value.
func Val(v any) Field { return Field{kind: KindValue, val: v} }

// Unavailable returns the fetch-failed / does-not-exist sentinel.
func Unavailable() Field { return Field{kind: KindUnavailable} }

// Unchanged returns the skipped-this-cycle sentinel.
func Unchanged() Field { return Field{kind: KindUnchanged} }

// Unknown returns the feed-never-reports-this sentinel.
func Unknown() Field { return Field{kind: KindUnknown} }

// Kind reports the field's state.
func (f Field) Kind() FieldKind { return f.kind }

// IsValue reports whether the field carries a concrete value.
func (f Field) IsValue() bool { return f.kind == KindValue }

// Value returns the payload and whether the field is in the value state.
func (f Field) Value() (any, bool) {
	if f.kind != KindValue {
		return nil, false
	}
	return f.val, true
}

// Float64 returns the payload as a float64 if the field carries one.
func (f Field) Float64() (float64, bool) {
	v, ok := f.val.(float64)
	return v, ok && f.kind == KindValue
}

// String renders the field for logs: the sentinel name, or the value.
func (f Field) String() string {
	switch f.kind {
	case KindUnavailable:
		return sentinelUnavailable
	case KindUnchanged:
		return sentinelUnchanged
	case KindUnknown:
		return sentinelUnknown
	}
	b, err := json.Marshal(f.val)
	if err != nil {
		return "<unencodable>"
	}
	return string(b)
}

// MarshalJSON encodes a value field as its payload and a sentinel field as
// its sentinel string, matching what the read surface publishes.
func (f Field) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case KindUnavailable:
		return json.Marshal(sentinelUnavailable)
	case KindUnchanged:
		return json.Marshal(sentinelUnchanged)
	case KindUnknown:
		return json.Marshal(sentinelUnknown)
	}
	return json.Marshal(f.val)
}

// MarshalYAML mirrors MarshalJSON for the yaml output path.
func (f Field) MarshalYAML() (any, error) {
	switch f.kind {
	case KindUnavailable:
		return sentinelUnavailable, nil
	case KindUnchanged:
		return sentinelUnchanged, nil
	case KindUnknown:
		return sentinelUnknown, nil
	}
	return f.val, nil
}

// UnmarshalJSON restores sentinel strings to their kinds and anything else
// to a value field. Numeric payloads come back as float64, which is the
// only numeric type snapshots carry.
func (f *Field) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return eris.Wrap(err, "model: unmarshal field")
	}
	switch v {
	case sentinelUnavailable:
		*f = Unavailable()
	case sentinelUnchanged:
		*f = Unchanged()
	case sentinelUnknown:
		*f = Unknown()
	default:
		*f = Val(v)
	}
	return nil
}
