package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"risk-workers/internal/common/validation"
)

type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonWrongType  Reason = "wrong_type"
	ReasonOutOfRange Reason = "out_of_range"
)

// FieldError describes one offending field. Bound is set for range violations.
type FieldError struct {
	Field   string   `json:"field"`
	Reason  Reason   `json:"reason"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Bound   *float64 `json:"bound,omitempty"`
}

// ValidationFailure is the only error the core returns. It lists every violation
// of the input, sorted by field path.
type ValidationFailure struct {
	Errors []FieldError `json:"errors"`
}

func (f *ValidationFailure) Error() string {
	parts := make([]string, 0, len(f.Errors))
	for _, fe := range f.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("invalid risk assessment input (%d errors): %s", len(f.Errors), strings.Join(parts, "; "))
}

// Fields returns the offending field paths in order.
func (f *ValidationFailure) Fields() []string {
	out := make([]string, len(f.Errors))
	for i, fe := range f.Errors {
		out[i] = fe.Field
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func number(min, max *float64) map[string]interface{} {
	s := map[string]interface{}{"type": "number"}
	if min != nil {
		s["minimum"] = *min
	}
	if max != nil {
		s["maximum"] = *max
	}
	return s
}

func percent() map[string]interface{} { return number(ptr(0), ptr(100)) }

func object(props map[string]interface{}) map[string]interface{} {
	required := make([]interface{}, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": props,
	}
}

var inputSchema = validation.MustSchema(InputSchema())

// InputSchema returns a fresh copy of the JSON schema every assessment input
// must satisfy.
func InputSchema() map[string]interface{} {
	return object(map[string]interface{}{
		"healthFactors": object(map[string]interface{}{
			"exerciseFrequency":  percent(),
			"sleepHours":         number(ptr(0), ptr(24)),
			"stressLevel":        percent(),
			"alcoholConsumption": percent(),
			"smokingStatus":      percent(),
			"dietQuality":        percent(),
			"medicalHistory": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		}),
		"financialFactors": object(map[string]interface{}{
			"monthlyIncome":       number(ptr(0), nil),
			"monthlyExpenses":     number(ptr(0), nil),
			"savingsRate":         percent(),
			"debtRatio":           percent(),
			"investmentKnowledge": percent(),
			"emergencyFund":       map[string]interface{}{"type": "boolean"},
			"creditScore":         number(ptr(300), ptr(850)),
		}),
		"scamVulnerabilityFactors": object(map[string]interface{}{
			"technicalLiteracy":       percent(),
			"onlineActivityFrequency": percent(),
			"publicPersonalInfo":      percent(),
			"passwordHygiene":         percent(),
			"verificationHabits":      percent(),
			"pastIncidents": map[string]interface{}{
				"type":    "integer",
				"minimum": 0.0,
				"maximum": 5.0,
			},
		}),
	})
}

// Validate checks a raw JSON payload and returns the typed input. Any violation,
// including a payload that is not JSON, yields a *ValidationFailure.
func Validate(payload []byte) (Input, error) {
	result, _ := inputSchema.ValidateJSON(payload)
	if !result.Valid {
		return Input{}, failureFrom(result)
	}
	return decode(payload)
}

// ValidateDocument checks an already decoded document, such as job variables.
func ValidateDocument(doc interface{}) (Input, error) {
	result := inputSchema.Validate(doc)
	if !result.Valid {
		return Input{}, failureFrom(result)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return Input{}, rootFailure(err)
	}
	return decode(payload)
}

func decode(payload []byte) (Input, error) {
	var in Input
	if err := json.Unmarshal(payload, &in); err != nil {
		return Input{}, decodeFailure(err)
	}
	if in.HealthFactors.MedicalHistory == nil {
		in.HealthFactors.MedicalHistory = []string{}
	}
	return in, nil
}

// decodeFailure attributes numbers that pass the schema but overflow a float64
// to their field.
func decodeFailure(err error) *ValidationFailure {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" && strings.HasPrefix(typeErr.Value, "number") {
		return &ValidationFailure{Errors: []FieldError{{
			Field:   typeErr.Field,
			Reason:  ReasonOutOfRange,
			Code:    validation.CodeMaximum,
			Message: fmt.Sprintf("%s is not representable as a float64", typeErr.Value),
		}}}
	}
	return rootFailure(err)
}

func rootFailure(err error) *ValidationFailure {
	return &ValidationFailure{Errors: []FieldError{{
		Field:   validation.RootField,
		Reason:  ReasonWrongType,
		Code:    validation.CodeInvalidType,
		Message: err.Error(),
	}}}
}

func failureFrom(result *validation.ValidationResult) *ValidationFailure {
	errs := make([]FieldError, 0, len(result.Errors))
	for _, ve := range result.Errors {
		errs = append(errs, FieldError{
			Field:   ve.Field,
			Reason:  reasonFor(ve.Code),
			Code:    ve.Code,
			Message: ve.Message,
			Bound:   ve.Bound,
		})
	}
	return &ValidationFailure{Errors: errs}
}

func reasonFor(code string) Reason {
	switch code {
	case validation.CodeRequired:
		return ReasonMissing
	case validation.CodeMinimum, validation.CodeMaximum:
		return ReasonOutOfRange
	default:
		return ReasonWrongType
	}
}
