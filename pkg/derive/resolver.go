// Package derive keeps the form's derived fields consistent with the
// function/metric catalog. The `type` field always mirrors the selected
// function's declared type and `metric_config` mirrors the selected metric's
// configuration; both reset when their source no longer resolves.
package derive

import (
	"github.com/goliatone/go-datasetform/pkg/catalog"
	"github.com/goliatone/go-datasetform/pkg/form"
)

// Resolver watches a form store and a catalog reference and re-derives the
// dependent fields after every relevant change. Derivation reads only the
// watched inputs, never its own outputs, so a single trigger always reaches a
// fixed point: the second pass sees equal values and the store drops the
// writes as no-ops.
type Resolver struct {
	store   *form.Store
	ref     *catalog.Ref
	cancels []func()
}

// Attach subscribes a resolver to the store and catalog reference and runs an
// initial derivation pass so the derived fields are consistent from the
// start.
func Attach(store *form.Store, ref *catalog.Ref) *Resolver {
	r := &Resolver{store: store, ref: ref}

	cancelStore := store.Subscribe(func(field string, values form.Values) {
		if field != form.FieldFunction && field != form.FieldMetricName {
			return
		}
		r.apply(ref.Current(), values)
	})
	cancelRef := ref.Subscribe(func(cat catalog.Catalog) {
		r.apply(cat, store.Values())
	})
	r.cancels = []func(){cancelStore, cancelRef}

	r.apply(ref.Current(), store.Values())
	return r
}

// Close removes the resolver's subscriptions.
func (r *Resolver) Close() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}

func (r *Resolver) apply(cat catalog.Catalog, values form.Values) {
	var typ catalog.FunctionType
	if fn, ok := cat.Function(values.Function); ok {
		typ = fn.Type
	}
	// Equal writes are dropped by the store, keeping derivation idempotent.
	_ = r.store.Set(form.FieldType, typ)

	cfg, _ := cat.Metric(values.MetricName)
	_ = r.store.Set(form.FieldMetricConfig, cfg)
}
