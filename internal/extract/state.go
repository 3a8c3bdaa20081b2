package extract

import (
	"encoding/json"
	"strings"
)

// stateMarker precedes the server-rendered page-state blob inlined in a
// script tag.
const stateMarker = "window.state"

// JSONObjectAfter isolates the JSON object following the first
// occurrence of marker by scanning brace depth while respecting quoted
// strings and escape sequences. A naive regex or lastIndexOf('}') cut
// breaks on braces nested inside string values.
func JSONObjectAfter(body, marker string) (string, bool) {
	at := strings.Index(body, marker)
	if at < 0 {
		return "", false
	}
	rest := body[at+len(marker):]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(rest); i++ {
		c := rest[i]
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
				return rest[start : i+1], true
			}
		}
	}
	return "", false
}

func parseState(body string) map[string]any {
	raw, ok := JSONObjectAfter(body, stateMarker)
	if !ok {
		return nil
	}
	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil
	}
	return state
}

// dig walks nested maps along path, returning nil when any hop is
// missing or not a map.
func dig(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mm[key]
	}
	return cur
}

func digMap(m map[string]any, path ...string) map[string]any {
	v, _ := dig(m, path...).(map[string]any)
	return v
}

func digSlice(m map[string]any, path ...string) []any {
	v, _ := dig(m, path...).([]any)
	return v
}

func digString(m map[string]any, path ...string) string {
	v, _ := dig(m, path...).(string)
	return v
}
