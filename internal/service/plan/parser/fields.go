package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// number reads a numeric field. Numeric strings ("16", "16%") are accepted.
func number(obj map[string]interface{}, key string) (float64, bool) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func integer(obj map[string]interface{}, key string) (int, bool) {
	f, ok := number(obj, key)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// str reads a string field; numbers are formatted, anything else is "".
func str(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// firstStr returns the first non-empty string among keys.
func firstStr(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := str(obj, k); s != "" {
			return s
		}
	}
	return ""
}

// objects returns the object entries of an array field, skipping anything
// else. present is false when the field is absent or not an array.
func objects(obj map[string]interface{}, key string) (entries []indexedObject, present bool) {
	arr, ok := obj[key].([]interface{})
	if !ok {
		return nil, false
	}
	for i, item := range arr {
		if m, ok := item.(map[string]interface{}); ok {
			entries = append(entries, indexedObject{index: i, obj: m})
		}
	}
	return entries, true
}

// indexedObject keeps an entry's position in its source array.
type indexedObject struct {
	index int
	obj   map[string]interface{}
}
