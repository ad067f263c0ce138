package form

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/goliatone/go-datasetform/pkg/catalog"
)

// ErrUnknownField is returned by Set for a field name outside the form.
var ErrUnknownField = errors.New("form: unknown field")

// ErrThresholdNotFinite is returned when a threshold write carries NaN or an
// infinity.
var ErrThresholdNotFinite = errors.New("form: threshold must be a finite number")

// ValidationResult carries the outcome of a schema validation pass.
type ValidationResult struct {
	Valid       bool
	FieldErrors map[string][]string
}

// Validator is the opaque schema-validation contract the store runs on every
// change and before submission. Implementations must be pure with respect to
// the supplied values.
type Validator interface {
	Validate(values Values) ValidationResult
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(values Values) ValidationResult

// Validate delegates to the underlying function.
func (fn ValidatorFunc) Validate(values Values) ValidationResult {
	return fn(values)
}

// ChangeFunc receives the changed field name and the full value set after the
// change settled.
type ChangeFunc func(field string, values Values)

// Store owns the form's field values and validation errors. Each accepted
// change validates exactly once and notifies subscribers synchronously, so a
// change written by the derivation pass behaves the same as a user edit.
// Writing a value equal to the current one is a no-op: no validation run, no
// notification. Subscribers run outside the store lock and may call Set
// again.
type Store struct {
	mu        sync.Mutex
	values    Values
	validator Validator
	result    ValidationResult
	rootError string
	subs      map[int]ChangeFunc
	nextID    int
}

// NewStore constructs a store seeded with DefaultValues. A nil validator
// treats every value set as valid.
func NewStore(validator Validator) *Store {
	s := &Store{
		values:    DefaultValues(),
		validator: validator,
		subs:      make(map[int]ChangeFunc),
	}
	s.result = s.runValidator(s.values)
	return s
}

// Subscribe registers a change callback. The returned cancel function removes
// the subscription.
func (s *Store) Subscribe(fn ChangeFunc) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Set writes a single field. Unknown fields and type mismatches are rejected;
// equal writes return nil without side effects.
func (s *Store) Set(field string, value any) error {
	s.mu.Lock()

	next := s.values
	changed, err := applyField(&next, field, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}

	s.values = next
	s.result = s.runValidator(next)
	snapshot := next.clone()
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(field, snapshot)
	}
	return nil
}

// Get returns a single field value.
func (s *Store) Get(field string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldDataset:
		return s.values.Dataset, nil
	case FieldType:
		return s.values.Type, nil
	case FieldFunction:
		return s.values.Function, nil
	case FieldVariant:
		return s.values.Variant, nil
	case FieldMetricName:
		return s.values.MetricName, nil
	case FieldMetricConfig:
		return s.values.clone().MetricConfig, nil
	case FieldThreshold:
		return s.values.Threshold, nil
	case FieldJoinDemonstrations:
		return s.values.JoinDemonstrations, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Values returns a copy of the current value set.
func (s *Store) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.clone()
}

// Validate re-runs the validator against the current values and returns the
// result.
func (s *Store) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = s.runValidator(s.values)
	return s.result
}

// Errors returns the field errors from the most recent validation pass.
func (s *Store) Errors() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyFieldErrors(s.result.FieldErrors)
}

// Valid reports the outcome of the most recent validation pass.
func (s *Store) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.Valid
}

// SetRootError records a form-level error message. An empty message clears
// it. The submission controller is the only expected writer.
func (s *Store) SetRootError(message string) {
	s.mu.Lock()
	s.rootError = message
	s.mu.Unlock()
}

// RootError returns the current form-level error message, if any.
func (s *Store) RootError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootError
}

func (s *Store) runValidator(values Values) ValidationResult {
	if s.validator == nil {
		return ValidationResult{Valid: true}
	}
	return s.validator.Validate(values.clone())
}

func (s *Store) subscribers() []ChangeFunc {
	subs := make([]ChangeFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (v Values) clone() Values {
	out := v
	if v.MetricConfig != nil {
		cfg := *v.MetricConfig
		out.MetricConfig = &cfg
	}
	return out
}

func applyField(values *Values, field string, value any) (bool, error) {
	switch field {
	case FieldDataset:
		str, err := coerceString(field, value)
		if err != nil {
			return false, err
		}
		if values.Dataset == str {
			return false, nil
		}
		values.Dataset = str
	case FieldType:
		typ, err := coerceFunctionType(field, value)
		if err != nil {
			return false, err
		}
		if values.Type == typ {
			return false, nil
		}
		values.Type = typ
	case FieldFunction:
		str, err := coerceString(field, value)
		if err != nil {
			return false, err
		}
		if values.Function == str {
			return false, nil
		}
		values.Function = str
	case FieldVariant:
		str, err := coerceString(field, value)
		if err != nil {
			return false, err
		}
		if values.Variant == str {
			return false, nil
		}
		values.Variant = str
	case FieldMetricName:
		str, err := coerceString(field, value)
		if err != nil {
			return false, err
		}
		if values.MetricName == str {
			return false, nil
		}
		values.MetricName = str
	case FieldMetricConfig:
		cfg, err := coerceMetricConfig(field, value)
		if err != nil {
			return false, err
		}
		if metricConfigEqual(values.MetricConfig, cfg) {
			return false, nil
		}
		if cfg != nil {
			clone := *cfg
			cfg = &clone
		}
		values.MetricConfig = cfg
	case FieldThreshold:
		num, err := coerceFloat(field, value)
		if err != nil {
			return false, err
		}
		if math.IsNaN(num) || math.IsInf(num, 0) {
			return false, ErrThresholdNotFinite
		}
		if values.Threshold == num {
			return false, nil
		}
		values.Threshold = num
	case FieldJoinDemonstrations:
		flag, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("form: field %q: expected bool, got %T", field, value)
		}
		if values.JoinDemonstrations == flag {
			return false, nil
		}
		values.JoinDemonstrations = flag
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return true, nil
}

func coerceString(field string, value any) (string, error) {
	if value == nil {
		return "", nil
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("form: field %q: expected string, got %T", field, value)
	}
	return str, nil
}

func coerceFunctionType(field string, value any) (catalog.FunctionType, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case catalog.FunctionType:
		return v, nil
	case string:
		return catalog.FunctionType(v), nil
	default:
		return "", fmt.Errorf("form: field %q: expected function type, got %T", field, value)
	}
}

func coerceMetricConfig(field string, value any) (*catalog.MetricConfig, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *catalog.MetricConfig:
		return v, nil
	default:
		return nil, fmt.Errorf("form: field %q: expected *catalog.MetricConfig, got %T", field, value)
	}
}

func coerceFloat(field string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("form: field %q: expected number, got %T", field, value)
	}
}

func copyFieldErrors(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for field, msgs := range in {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}
