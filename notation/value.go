// Package notation decodes the number formats used on quote pages into typed values
package notation

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a number that may be missing. The zero value is missing.
type Value struct {
	n  float64
	ok bool
}

// Missing is the explicit absent value
var Missing = Value{}

// Of returns a present value holding f
func Of(f float64) Value {
	return Value{n: f, ok: true}
}

// Get returns the number and whether it is present
func (v Value) Get() (float64, bool) {
	return v.n, v.ok
}

// Present reports whether the value was decoded
func (v Value) Present() bool {
	return v.ok
}

// Int returns the value truncated to an integer
func (v Value) Int() (int64, bool) {
	if !v.ok {
		return 0, false
	}
	return int64(v.n), true
}

// Gt reports whether the value is present and greater than x
func (v Value) Gt(x float64) bool {
	return v.ok && v.n > x
}

// Lt reports whether the value is present and less than x
func (v Value) Lt(x float64) bool {
	return v.ok && v.n < x
}

func (v Value) String() string {
	if !v.ok {
		return "None"
	}
	return strconv.FormatFloat(v.n, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.n)
}

// UnmarshalJSON accepts a number or null
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}
