package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// codeFence matches ``` and ```json markers, with an optional trailing newline
var codeFence = regexp.MustCompile("```(?:json)?\\n?")

// Shape describes the expected form of a generated payload and how to
// turn raw model output into it
type Shape[T any] interface {
	// Name identifies the shape in logs
	Name() string

	// Structured reports whether code-fence wrapping must be stripped
	Structured() bool

	// Parse converts cleaned model output into a payload
	Parse(text string) (T, error)

	// Copy returns a payload that shares no memory with v
	Copy(v T) (T, error)
}

// StripCodeFences removes markdown code fence markers wrapping an embedded
// JSON document
func StripCodeFences(s string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(s, ""))
}

// Clean prepares raw model output for parsing according to the shape
func Clean[T any](shape Shape[T], raw string) string {
	if shape.Structured() {
		return StripCodeFences(raw)
	}
	return strings.TrimSpace(raw)
}

type textShape struct{}

// Text returns the free-text shape. Parsing is the identity on trimmed
// text; an empty response is rejected.
func Text() Shape[string] {
	return textShape{}
}

func (textShape) Name() string { return "text" }

func (textShape) Structured() bool { return false }

func (textShape) Parse(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

func (textShape) Copy(v string) (string, error) { return v, nil }

// JSONShape validates a JSON document against a schema and decodes it into T
type JSONShape[T any] struct {
	name   string
	schema *gojsonschema.Schema
}

// JSON builds a structured shape from a JSON Schema document. It panics if
// the schema does not compile; schemas are package-level constants.
func JSON[T any](name, schema string) *JSONShape[T] {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid schema for %s: %v", name, err))
	}
	return &JSONShape[T]{name: name, schema: s}
}

// Name returns the shape name
func (s *JSONShape[T]) Name() string { return s.name }

// Structured is always true for JSON shapes
func (s *JSONShape[T]) Structured() bool { return true }

// Parse validates text against the schema and decodes it
func (s *JSONShape[T]) Parse(text string) (T, error) {
	var out T

	if !gjson.Valid(text) {
		return out, fmt.Errorf("response is not valid JSON")
	}

	if err := s.Validate([]byte(text)); err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", s.name, err)
	}

	return out, nil
}

// Copy deep-copies v by encoding it and decoding into a fresh T
func (s *JSONShape[T]) Copy(v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to copy %s: %w", s.name, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to copy %s: %w", s.name, err)
	}
	return out, nil
}

// Validate checks a JSON document against the schema
func (s *JSONShape[T]) Validate(doc []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", s.name, err)
	}

	if !result.Valid() {
		var errMsgs []string
		for _, e := range result.Errors() {
			errMsgs = append(errMsgs, e.String())
		}
		return fmt.Errorf("%s validation failed: %s", s.name, strings.Join(errMsgs, "; "))
	}

	return nil
}
