package analysis

import (
	"encoding/json"
	"strings"
)

// ParseError means the model's reply could not be mapped to book info.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "failed to parse book info: " + e.Detail
}

// UpstreamError means the inference call itself failed.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "inference request failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseResult parses the model's reply into a Result. Replies wrapped in a
// markdown code fence, with or without a leading json language tag, are
// unwrapped first. A missing or empty title or author is a hard parse
// failure; a missing category is not.
func ParseResult(raw string) (*Result, error) {
	text := stripFence(raw)

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &ParseError{Detail: err.Error()}
	}
	if result.Title == "" || result.Author == "" {
		return nil, &ParseError{Detail: "title or author missing from response"}
	}
	if result.Category != nil && *result.Category == "" {
		result.Category = nil
	}
	return &result, nil
}

func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, "`")
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}
