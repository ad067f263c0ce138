package form

import (
	"github.com/goliatone/go-datasetform/pkg/catalog"
)

// Field names used across the builder. Set and Subscribe speak in these
// identifiers; they double as the JSON keys of the submission payload.
const (
	FieldDataset            = "dataset"
	FieldType               = "type"
	FieldFunction           = "function"
	FieldVariant            = "variant"
	FieldMetricName         = "metric_name"
	FieldMetricConfig       = "metric_config"
	FieldThreshold          = "threshold"
	FieldJoinDemonstrations = "join_demonstrations"
)

// DefaultThreshold is the decision threshold a fresh form starts with.
const DefaultThreshold = 0.5

// Values is the dataset-builder form's value object. Type and MetricConfig
// are derived: they always mirror the selected function and metric in the
// catalog and are never set directly by the user.
type Values struct {
	Dataset            string                 `json:"dataset"`
	Type               catalog.FunctionType   `json:"type,omitempty"`
	Function           string                 `json:"function,omitempty"`
	Variant            string                 `json:"variant,omitempty"`
	MetricName         string                 `json:"metric_name,omitempty"`
	MetricConfig       *catalog.MetricConfig  `json:"metric_config,omitempty"`
	Threshold          float64                `json:"threshold"`
	JoinDemonstrations bool                   `json:"join_demonstrations"`
}

// DefaultValues returns the initial value set for a newly mounted form.
func DefaultValues() Values {
	return Values{Threshold: DefaultThreshold}
}

// DerivedFields lists the fields owned by the derivation pass rather than the
// user.
func DerivedFields() []string {
	return []string{FieldType, FieldMetricConfig}
}

// IsDerived reports whether a field is derived.
func IsDerived(field string) bool {
	return field == FieldType || field == FieldMetricConfig
}

func metricConfigEqual(a, b *catalog.MetricConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
