package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexNumber accepts a JSON number, a numeric string, an empty string or
// null, from JSON bodies and from form fields alike. A value that is present
// but not numeric is kept as NaN so validation rejects it.
type flexNumber struct {
	Set   bool
	Value float64
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = flexNumber{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.UnmarshalParam(s)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = flexNumber{Set: true, Value: math.NaN()}
		return nil
	}
	*n = flexNumber{Set: true, Value: f}
	return nil
}

// UnmarshalParam is used by gin's form binding.
func (n *flexNumber) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = flexNumber{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f = math.NaN()
	}
	*n = flexNumber{Set: true, Value: f}
	return nil
}

// Ptr returns nil when the field was absent or empty.
func (n flexNumber) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// Int returns the value as an int when it is a whole number.
func (n flexNumber) Int() (int, bool) {
	if !n.Set || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) || n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	if n.Value > math.MaxInt32 || n.Value < math.MinInt32 {
		return 0, false
	}
	return int(n.Value), true
}
