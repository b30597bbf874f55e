package catalog

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// metadataSchema constrains template.yml / template.json documents.
const metadataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "type"],
  "additionalProperties": false,
  "properties": {
    "name":              {"type": "string", "minLength": 1},
    "groupIdentity":     {"type": "string"},
    "type":              {"type": "string", "enum": ["project", "page", "feature", "service", "composition", "other"]},
    "projectTypes":      {"type": "array", "items": {"type": "string"}},
    "frameworks":        {"type": "array", "items": {"type": "string"}},
    "backendFrameworks": {"type": "array", "items": {"type": "string"}},
    "platform":          {"type": "string"},
    "language":          {"type": "string"},
    "hidden":            {"type": "boolean"},
    "rightClickEnabled": {"type": "boolean"},
    "exclusive":         {"type": "boolean"},
    "group":             {"type": "string"},
    "dependencies":      {"type": "array", "items": {"type": "string", "minLength": 1}},
    "compositionFilter": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "sourceName":        {"type": "string"},
    "defaultName":       {"type": "string"}
  },
  "if":   {"properties": {"exclusive": {"const": true}}, "required": ["exclusive"]},
  "then": {"required": ["group"]}
}`

var schemaLoader = gojsonschema.NewStringLoader(metadataSchema)

// ValidationError represents a metadata validation error with context
type ValidationError struct {
	File    string // metadata file
	Field   string // JSON path of the offending field
	Message string
}

// Error returns a formatted error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation error at %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error returns all validation errors formatted with clear separation
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	result := fmt.Sprintf("found %d validation errors:\n", len(e))
	for i, err := range e {
		result += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return result
}

// validateMetadata checks a decoded metadata document against the schema.
func validateMetadata(file string, doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%s: schema validation failed: %w", file, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make(ValidationErrors, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, ValidationError{
			File:    file,
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}
