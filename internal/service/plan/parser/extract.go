// Package parser turns model output into plan domain objects.
//
// Parsing is lenient about individual fields (unknown enums fall back to
// defaults, missing numbers are zero) and strict about structure: the text
// must contain a JSON object and that object must carry the entry point's
// required array. Nothing is returned or assigned unless the whole parse
// succeeds.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"stride/internal/domain"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*[ \\t]*\\r?\\n?(.*?)```")

// ExtractJSON locates the JSON object in text. It tries, in order, the whole
// text, the first fenced code block, and the span from the first '{' to the
// last '}'.
func ExtractJSON(text string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, "{") {
		return nil, &domain.ParseError{Kind: domain.ParseNoJSONFound}
	}

	var firstErr string
	for _, candidate := range candidates(trimmed) {
		obj, detail := decodeObject(candidate)
		if obj != nil {
			return obj, nil
		}
		if firstErr == "" {
			firstErr = detail
		}
	}
	return nil, &domain.ParseError{Kind: domain.ParseInvalidJSON, Detail: firstErr}
}

// ContainsJSONObject reports whether ExtractJSON would succeed on text.
func ContainsJSONObject(text string) bool {
	_, err := ExtractJSON(text)
	return err == nil
}

func candidates(text string) []string {
	out := []string{text}
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if block := strings.TrimSpace(m[1]); block != "" {
			out = append(out, block)
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		out = append(out, text[start:end+1])
	}
	return out
}

func decodeObject(candidate string) (map[string]interface{}, string) {
	var value interface{}
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, err.Error()
	}
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, "top-level JSON value is not an object"
	}
	return obj, ""
}
