package research

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no JSON object could be located in a model
// response by any extraction method.
var ErrNoJSON = errors.New("no JSON object found in response")

var (
	fencedJSONRe  = regexp.MustCompile("```json\\s*([\\s\\S]*?)```")
	fencedPlainRe = regexp.MustCompile("```\\s*([\\s\\S]*?)```")
)

// ExtractJSON pulls a JSON object out of free-form model output that may wrap
// it in reasoning prose or markdown fences. Methods are tried in order:
//
//  1. a ```json fenced block anywhere in the text
//  2. any fenced block whose content starts with '{'
//  3. brace-balance scan from the first '{'
//  4. the whole trimmed text, if it starts with '{'
func ExtractJSON(raw string) (string, error) {
	content := strings.TrimSpace(raw)

	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), nil
	}

	if m := fencedPlainRe.FindStringSubmatch(content); m != nil {
		extracted := strings.TrimSpace(m[1])
		if strings.HasPrefix(extracted, "{") {
			return extracted, nil
		}
	}

	if start := strings.IndexByte(content, '{'); start >= 0 {
		depth := 0
		for i := start; i < len(content); i++ {
			switch content[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return content[start : i+1], nil
				}
			}
		}
	}

	if strings.HasPrefix(content, "{") {
		return content, nil
	}

	return "", ErrNoJSON
}

// DecodeJSON extracts a JSON object from a model response and unmarshals it
// into T. Shared by the search, filter and validation stages.
func DecodeJSON[T any](raw string) (T, error) {
	var zero T

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
