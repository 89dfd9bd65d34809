package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ExtractJSON strips markdown code fences and surrounding prose from a model
// reply, leaving the innermost JSON document.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// Models occasionally wrap the document in prose. Cut to the outermost
	// object or array when the reply does not already start with one.
	if len(raw) > 0 && raw[0] != '{' && raw[0] != '[' {
		objStart := strings.Index(raw, "{")
		arrStart := strings.Index(raw, "[")
		start := objStart
		closing := "}"
		if start == -1 || (arrStart != -1 && arrStart < start) {
			start = arrStart
			closing = "]"
		}
		if start != -1 {
			if end := strings.LastIndex(raw, closing); end > start {
				raw = raw[start : end+1]
			}
		}
	}

	return strings.TrimSpace(raw)
}

// DecodeLoose parses a model JSON reply into out, tolerating weakly-typed
// fields such as numeric scores encoded as strings. Unknown fields are
// ignored; they are never propagated to callers.
func DecodeLoose(raw string, out any) error {
	cleaned := ExtractJSON(raw)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}

	return nil
}
