package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when the model output contains no JSON object at all
var ErrNoJSON = errors.New("no JSON object found in model output")

// JSON locates the single JSON object expected inside free-form model output
// and returns it as raw bytes. Markdown fencing and surrounding prose are
// tolerated: pure fence-marker lines are dropped, all other lines are kept
// verbatim, and the substring between the first '{' and the last '}' is
// parsed. Literal unescaped braces inside string values can confuse the
// outer-brace search; that is a known limitation of the heuristic.
func JSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if strings.HasPrefix(line, "```") {
				continue
			}
			kept = append(kept, line)
		}
		text = strings.Join(kept, "\n")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}

	raw := json.RawMessage(text[start : end+1])
	if !json.Valid(raw) {
		return nil, fmt.Errorf("model output between braces is not valid JSON")
	}

	return raw, nil
}

// StripFences returns the inner content of a markdown-fenced block, with an
// optional language tag on the opening fence, or the original text unchanged
// if no fence is found.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)

	idx := strings.Index(trimmed, "```")
	if idx == -1 {
		return text
	}

	rest := trimmed[idx+3:]
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		return text
	}
	// Everything up to the first newline is the (optional) language tag
	rest = rest[nl+1:]

	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}

	return strings.TrimSpace(rest)
}
