package validation_test

import (
	"testing"

	"github.com/goliatone/go-datasetform/pkg/catalog"
	"github.com/goliatone/go-datasetform/pkg/form"
	"github.com/goliatone/go-datasetform/pkg/validation"
)

func TestSchemaValidator_ValidSelection(t *testing.T) {
	v := validation.New()

	result := v.Validate(form.Values{
		Dataset:    "eval-set",
		Type:       catalog.FunctionTypeJSON,
		Function:   "extract_entities",
		MetricName: "exact_match",
		MetricConfig: &catalog.MetricConfig{
			Type:     catalog.MetricTypeFloat,
			Optimize: "max",
		},
		Threshold: 0.5,
	})
	if !result.Valid {
		t.Fatalf("expected valid, got field errors %v", result.FieldErrors)
	}
}

func TestSchemaValidator_MissingDataset(t *testing.T) {
	v := validation.New()

	result := v.Validate(form.Values{Threshold: 0.5})
	if result.Valid {
		t.Fatal("missing dataset should fail")
	}
	if len(result.FieldErrors[form.FieldDataset]) == 0 {
		t.Fatalf("expected an error keyed by %q, got %v", form.FieldDataset, result.FieldErrors)
	}
}

func TestSchemaValidator_EmptyDataset(t *testing.T) {
	v := validation.New()

	result := v.Validate(form.Values{Dataset: "", Threshold: 0.5})
	if result.Valid {
		t.Fatal("empty dataset should fail")
	}
}

func TestSchemaValidator_MinimalValid(t *testing.T) {
	v := validation.New()

	// Function and metric are optional; a bare named dataset passes.
	result := v.Validate(form.Values{Dataset: "eval-set", Threshold: 0.5})
	if !result.Valid {
		t.Fatalf("expected valid, got field errors %v", result.FieldErrors)
	}
}
