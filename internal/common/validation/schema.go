package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	CodeRequired    = "REQUIRED_FIELD_MISSING"
	CodeInvalidType = "INVALID_TYPE"
	CodeMinimum     = "MINIMUM_VIOLATION"
	CodeMaximum     = "MAXIMUM_VIOLATION"
	CodeSchema      = "SCHEMA_VIOLATION"

	// RootField names the document itself.
	RootField = "(root)"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string   `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Bound   *float64 `json:"bound,omitempty"`
}

// Schema is a compiled JSON schema together with its source document, which is
// consulted to report the violated bound of range errors.
type Schema struct {
	source   map[string]interface{}
	compiled *gojsonschema.Schema
}

// NewSchema compiles a JSON schema expressed as a Go map.
func NewSchema(source map[string]interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(source))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{source: source, compiled: compiled}, nil
}

// MustSchema is NewSchema for package-level schemas.
func MustSchema(source map[string]interface{}) *Schema {
	s, err := NewSchema(source)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON validates a raw payload. A payload that is not JSON yields a single
// INVALID_TYPE error on the root.
func (s *Schema) ValidateJSON(payload []byte) (*ValidationResult, interface{}) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil || dec.More() {
		msg := "payload is not a JSON document"
		if err != nil {
			msg = fmt.Sprintf("payload is not a JSON document: %s", err.Error())
		}
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: RootField, Message: msg, Code: CodeInvalidType}},
		}, nil
	}
	return s.Validate(doc), doc
}

// Validate checks an already decoded document and reports every violation, sorted
// by field path.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: RootField, Message: err.Error(), Code: CodeInvalidType}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, s.convert(re))
	}
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Field != errs[j].Field {
			return errs[i].Field < errs[j].Field
		}
		return errs[i].Code < errs[j].Code
	})

	return &ValidationResult{Valid: false, Errors: errs}
}

func (s *Schema) convert(re gojsonschema.ResultError) ValidationError {
	field := re.Field()

	switch re.Type() {
	case "required":
		prop, _ := re.Details()["property"].(string)
		field = joinField(field, prop)
		return ValidationError{Field: field, Message: "required field missing", Code: CodeRequired}

	case "invalid_type":
		return ValidationError{Field: field, Message: re.Description(), Code: CodeInvalidType}

	case "number_gte", "number_gt":
		bound := s.bound(field, "minimum")
		return ValidationError{Field: field, Message: boundMessage(">=", bound, re), Code: CodeMinimum, Bound: bound}

	case "number_lte", "number_lt":
		bound := s.bound(field, "maximum")
		return ValidationError{Field: field, Message: boundMessage("<=", bound, re), Code: CodeMaximum, Bound: bound}

	default:
		return ValidationError{Field: field, Message: re.Description(), Code: CodeSchema}
	}
}

func joinField(parent, prop string) string {
	switch {
	case prop == "":
		return parent
	case parent == "" || parent == RootField:
		return prop
	case parent == prop || strings.HasSuffix(parent, "."+prop):
		return parent
	default:
		return parent + "." + prop
	}
}

func boundMessage(op string, bound *float64, re gojsonschema.ResultError) string {
	if bound == nil {
		return re.Description()
	}
	return fmt.Sprintf("value must be %s %s", op, strconv.FormatFloat(*bound, 'f', -1, 64))
}

// bound walks the schema source along a dotted field path and returns the named
// numeric keyword of the leaf, if any.
func (s *Schema) bound(field, keyword string) *float64 {
	node := s.source
	for _, seg := range strings.Split(field, ".") {
		if _, err := strconv.Atoi(seg); err == nil {
			items, ok := node["items"].(map[string]interface{})
			if !ok {
				return nil
			}
			node = items
			continue
		}
		props, ok := node["properties"].(map[string]interface{})
		if !ok {
			return nil
		}
		next, ok := props[seg].(map[string]interface{})
		if !ok {
			return nil
		}
		node = next
	}

	switch v := node[keyword].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field and everything nested under it
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}

// ValidatePhone validates E.164-ish phone numbers
func ValidatePhone(phone string) bool {
	phonePattern := regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	return phonePattern.MatchString(phone)
}
