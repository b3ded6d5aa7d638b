// Package jsonrepair recovers parseable JSON from typical model output
// damage: markdown code fences, prose around the document, trailing commas
// and double-escaped unicode sequences.
package jsonrepair

import (
	"encoding/json"
	"strings"

	"ctxoptimizer/internal/jsonutil"
)

// Repair attempts to turn raw model output into valid JSON. It returns the
// repaired bytes and whether the result parses. Input that already parses is
// returned unchanged.
func Repair(raw []byte) ([]byte, bool) {
	if json.Valid(raw) {
		return raw, true
	}

	s := strings.TrimSpace(string(raw))
	s = stripFences(s)
	s = extractDocument(s)
	s = removeTrailingCommas(s)

	out := []byte(s)
	if !json.Valid(out) {
		return out, false
	}
	if normalized, err := jsonutil.NormalizeJSONUnicode(out); err == nil {
		out = normalized
	}
	return out, true
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		// A language tag like "json" sits alone on the opening fence line.
		if first == "" || !strings.ContainsAny(first, "{}[]\"") {
			s = s[i+1:]
		}
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// extractDocument returns the first balanced JSON object or array in s,
// tolerating prose before and after it. Braces inside string literals are
// ignored.
func extractDocument(s string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start < 0 {
		return s
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unbalanced; return from the opening bracket and let the caller fail.
	return s[start:]
}

// removeTrailingCommas drops commas that directly precede a closing bracket,
// skipping string literals.
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
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
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
