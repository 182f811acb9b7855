package pipeline

import (
	"encoding/json"
	"strings"
)

// classifierEntry is one parsed mapping value. The classifier is asked for
// a flat name→flag object, but it may wrap a flag with a rationale:
// {"Plant A": "Normal", "Plant B": {"flag": "High_Nuclear", "notes": "..."}}
type classifierEntry struct {
	Flag  string
	Notes string
}

// parseClassifierResponse extracts the first well-formed JSON object span
// embedded in the response text and parses it as a plant-name→flag map.
// The surrounding prose, markdown fences, and unknown value shapes are all
// tolerated; a text with no parseable span returns ok=false. Parse failures
// are ordinary outcomes here, never errors.
func parseClassifierResponse(text string) (map[string]classifierEntry, bool) {
	span, ok := firstJSONObject(text)
	if !ok {
		return nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, false
	}

	entries := make(map[string]classifierEntry, len(raw))
	for name, value := range raw {
		var flag string
		if err := json.Unmarshal(value, &flag); err == nil {
			entries[name] = classifierEntry{Flag: flag}
			continue
		}

		var wrapped struct {
			Flag  string `json:"flag"`
			Notes string `json:"notes"`
		}
		if err := json.Unmarshal(value, &wrapped); err == nil && wrapped.Flag != "" {
			entries[name] = classifierEntry{Flag: wrapped.Flag, Notes: wrapped.Notes}
		}
		// Other shapes (numbers, arrays) are dropped; the affected record
		// falls back like any unanswered one.
	}

	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// firstJSONObject scans for the first balanced {...} span, honoring string
// literals and escapes so braces inside values do not end the span early.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
