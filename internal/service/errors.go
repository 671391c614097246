package service

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed client input; handlers map it to a 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseError reports that no usable JSON object could be recovered from the
// model output
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports that the model's JSON is missing required fields. The
// fields are named so the client sees exactly what was absent; partial
// results are never accepted.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("LLM response missing fields: [%s]", strings.Join(e.Missing, ", "))
}

// UpstreamError reports an LLM gateway failure that survived (or bypassed)
// the retry policy
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("LLM call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
