package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Models send numbers as float64, json.Number or, occasionally, numeric strings.

func numberArg(input map[string]interface{}, key string) (float64, bool, error) {
	raw, exists := input[key]
	if !exists || raw == nil {
		return 0, false, nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
	return v, true, nil
}

func requiredNumber(input map[string]interface{}, key string) (float64, error) {
	v, present, err := numberArg(input, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func stringArg(input map[string]interface{}, key string) (string, bool) {
	raw, exists := input[key]
	if !exists {
		return "", false
	}
	s, ok := raw.(string)
	return strings.TrimSpace(s), ok
}

func numberListArg(input map[string]interface{}, key string) ([]float64, error) {
	raw, exists := input[key]
	if !exists || raw == nil {
		return nil, fmt.Errorf("%s is required", key)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array of numbers", key)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		v, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a number", key, i)
		}
		out[i] = v
	}
	return out, nil
}

func toFloat(raw interface{}) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
