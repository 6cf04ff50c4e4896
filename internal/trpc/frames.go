package trpc

import (
	"encoding/json"
	"strings"

	"appleville.bot/internal/game"
)

// The tRPC endpoint streams JSON-lines frames; some routes return a single
// JSON document instead. parseFrames accepts both.
func parseFrames(body []byte) []json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var whole json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &whole); err == nil {
		return []json.RawMessage{whole}
	}
	var frames []json.RawMessage
	for _, ln := range strings.Split(trimmed, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		var fr json.RawMessage
		if err := json.Unmarshal([]byte(ln), &fr); err == nil {
			frames = append(frames, fr)
		}
	}
	return frames
}

// findState locates the account snapshot anywhere inside the response frames:
// the first object carrying a "plots" array wins. The batch framing nests the
// payload differently per route version, so a recursive scan is the only
// stable way to find it.
func findState(frames []json.RawMessage) (*game.AccountState, bool) {
	for _, fr := range frames {
		var v any
		if err := json.Unmarshal(fr, &v); err != nil {
			continue
		}
		if found := scanForPlots(v); found != nil {
			raw, err := json.Marshal(found)
			if err != nil {
				continue
			}
			var st game.AccountState
			if err := json.Unmarshal(raw, &st); err != nil {
				continue
			}
			return &st, true
		}
	}
	return nil, false
}

func scanForPlots(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if found := scanForPlots(e); found != nil {
				return found
			}
		}
	case map[string]any:
		if _, ok := t["plots"].([]any); ok {
			return t
		}
		for _, e := range t {
			if found := scanForPlots(e); found != nil {
				return found
			}
		}
	}
	return nil
}

// findErrorMessage scans mutation response frames for an embedded tRPC error
// object and extracts the most specific message available.
func findErrorMessage(frames []json.RawMessage) (string, bool) {
	for _, fr := range frames {
		var v any
		if err := json.Unmarshal(fr, &v); err != nil {
			continue
		}
		if msg, ok := scanForError(v); ok {
			return msg, true
		}
	}
	return "", false
}

func scanForError(v any) (string, bool) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if msg, ok := scanForError(e); ok {
				return msg, true
			}
		}
	case map[string]any:
		if errVal, ok := t["error"]; ok {
			return errorMessage(errVal), true
		}
		for _, e := range t {
			if msg, ok := scanForError(e); ok {
				return msg, true
			}
		}
	}
	return "", false
}

func errorMessage(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	m, ok := v.(map[string]any)
	if !ok {
		raw, _ := json.Marshal(v)
		return string(raw)
	}
	if s, ok := m["message"].(string); ok && s != "" {
		return s
	}
	if data, ok := m["data"].(map[string]any); ok {
		if s, ok := data["message"].(string); ok && s != "" {
			return s
		}
		if s, ok := data["code"].(string); ok && s != "" {
			return s
		}
	}
	if s, ok := m["code"].(string); ok && s != "" {
		return s
	}
	raw, _ := json.Marshal(m)
	return string(raw)
}
