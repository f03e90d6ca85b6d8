// Package formatting provides parsing utilities for model responses and
// human-readable value types such as byte sizes.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON directly,
// from a markdown code fence, or from an embedded JSON object.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse unmarshals content into T, tolerating the ways language models wrap
// JSON. It tries the content verbatim, then a markdown code fence, then the
// first well-formed JSON object embedded in surrounding free text.
// Returns ErrParseFailed when every attempt fails.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}
	}

	if embedded, ok := extractObject(content); ok {
		if err := json.Unmarshal([]byte(embedded), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
}

// extractObject scans for the first balanced top-level JSON object in s,
// respecting string literals and escapes.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start != -1 {
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
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					i = len(s)
				}
			}
		}

		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += 1 + next
	}

	return "", false
}
