package oracle

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const classificationSchema = `{
  "type": "object",
  "required": ["sentiment", "score", "explanation"],
  "properties": {
    "sentiment": {"enum": ["positive", "negative", "neutral"]},
    "score": {"type": "number", "minimum": 0, "maximum": 1},
    "explanation": {"type": "string"},
    "keywords": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

var (
	fencePattern = regexp.MustCompile("```json\\n?|\\n?```")
	schema       = jsonschema.MustCompileString("classification.json", classificationSchema)
)

// StripFences removes markdown code fences around a model reply.
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// ParseResponse converts a raw model reply into a Classification. Keywords
// default to an empty list when absent.
func ParseResponse(raw string) (Classification, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return Classification{}, ErrEmptyResponse
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return Classification{}, &MalformedResponseError{Raw: raw, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return Classification{}, &MalformedResponseError{Raw: raw, Err: err}
	}

	var c Classification
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return Classification{}, &MalformedResponseError{Raw: raw, Err: err}
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	return c, nil
}
