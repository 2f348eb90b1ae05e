package graph

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// errNotObject is returned when a record is not a JSON object.
var errNotObject = errors.New("record is not a JSON object")

// fields splits a JSON object into raw fields.
type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, errNotObject
	}
	return f, nil
}

func (f fields) has(key string) bool {
	raw, ok := f[key]
	return ok && string(raw) != "null"
}

// str returns a string field. Numbers keep their literal text; anything else is "".
func (f fields) str(key string) string {
	raw := f[key]
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// num returns a numeric field. Numeric strings are parsed; anything else is 0.
func (f fields) num(key string) float64 {
	raw := f[key]
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v
		}
	}
	return 0
}

// boolean returns a bool field; anything that is not true or false is false.
func (f fields) boolean(key string) bool {
	var b bool
	if err := json.Unmarshal(f[key], &b); err != nil {
		return false
	}
	return b
}

// index returns an integer field rounded to the nearest integer, or def when
// the field is missing or not a number.
func (f fields) index(key string, def int) int {
	if !f.has(key) {
		return def
	}
	var v float64
	if err := json.Unmarshal(f[key], &v); err != nil {
		return def
	}
	r := math.Round(v)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return def
	}
	return int(r)
}
