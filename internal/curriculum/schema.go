package curriculum

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// savedSchema is the envelope contract a fetched curriculum must satisfy
// before normalization. It deliberately says nothing about the inner
// curriculum shape; that is Normalize's job. It only rejects payloads a
// view cannot be built from at all.
const savedSchema = `{
	"type": "object",
	"required": ["id", "userId", "curriculum"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"curriculum": {"type": "object"},
		"formData": {"type": "object"},
		"progress": {"type": "object"},
		"createdAt": {"type": "string"},
		"updatedAt": {"type": "string"}
	}
}`

var compiledSavedSchema = mustCompileSchema(savedSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid saved curriculum schema: %v", err))
	}
	return schema
}

// ValidateSaved checks a raw saved-curriculum document against the
// envelope schema. Violations are folded into ErrCorrupted so callers can
// map them to the corrupted-data state with errors.Is.
func ValidateSaved(raw json.RawMessage) error {
	result, err := compiledSavedSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrCorrupted, strings.Join(msgs, "; "))
	}
	return nil
}

// Validate re-serializes the saved curriculum and checks it against the
// envelope schema. Used by the view layer after a fetch; a cached entry
// written by an incompatible earlier client fails here rather than
// rendering partially.
func (s *Saved) Validate() error {
	if s == nil {
		return ErrCorrupted
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return ValidateSaved(raw)
}
