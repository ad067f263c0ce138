// Package validation provides the default schema-backed Validator for the
// dataset-builder form. The form store treats the validator as an opaque
// contract; this implementation checks values against a declared OpenAPI
// schema using kin-openapi.
package validation

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-datasetform/pkg/form"
)

// Option customises the schema validator.
type Option func(*SchemaValidator)

// WithSchema replaces the built-in form schema with a caller-supplied one.
func WithSchema(schema *openapi3.Schema) Option {
	return func(v *SchemaValidator) {
		if schema != nil {
			v.schema = schema
		}
	}
}

// SchemaValidator validates form values against a declared OpenAPI schema.
type SchemaValidator struct {
	schema *openapi3.Schema
}

var _ form.Validator = (*SchemaValidator)(nil)

// New constructs a SchemaValidator with the default builder-form schema.
func New(options ...Option) *SchemaValidator {
	v := &SchemaValidator{schema: defaultSchema()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

// Validate runs the declared schema against the supplied values. Failures are
// keyed by field name; issues that cannot be attributed to a field land under
// the empty key.
func (v *SchemaValidator) Validate(values form.Values) form.ValidationResult {
	payload, err := toPayload(values)
	if err != nil {
		return form.ValidationResult{
			FieldErrors: map[string][]string{"": {err.Error()}},
		}
	}

	if err := v.schema.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return form.ValidationResult{FieldErrors: collectIssues(err)}
	}
	return form.ValidationResult{Valid: true}
}

func defaultSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty(form.FieldDataset, openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty(form.FieldType, openapi3.NewStringSchema().WithEnum("chat", "json")).
		WithProperty(form.FieldFunction, openapi3.NewStringSchema()).
		WithProperty(form.FieldVariant, openapi3.NewStringSchema()).
		WithProperty(form.FieldMetricName, openapi3.NewStringSchema()).
		WithProperty(form.FieldMetricConfig, openapi3.NewObjectSchema().WithAnyAdditionalProperties()).
		WithProperty(form.FieldThreshold, openapi3.NewFloat64Schema()).
		WithProperty(form.FieldJoinDemonstrations, openapi3.NewBoolSchema())
	schema.Required = []string{form.FieldDataset}
	return schema
}

func toPayload(values form.Values) (map[string]any, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func collectIssues(err error) map[string][]string {
	out := make(map[string][]string)
	appendIssue(out, err)
	if len(out) == 0 {
		out[""] = []string{err.Error()}
	}
	return out
}

func appendIssue(out map[string][]string, err error) {
	if err == nil {
		return
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			appendIssue(out, item)
		}
		return
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		field := fieldFromPointer(schemaErr.JSONPointer())
		msg := strings.TrimSpace(schemaErr.Reason)
		if msg == "" {
			msg = strings.TrimSpace(schemaErr.Error())
		}
		out[field] = append(out[field], msg)
		return
	}

	out[""] = append(out[""], strings.TrimSpace(err.Error()))
}

func fieldFromPointer(pointer []string) string {
	if len(pointer) == 0 {
		return ""
	}
	return pointer[0]
}
