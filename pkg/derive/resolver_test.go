package derive_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-datasetform/pkg/catalog"
	"github.com/goliatone/go-datasetform/pkg/derive"
	"github.com/goliatone/go-datasetform/pkg/form"
	"github.com/goliatone/go-datasetform/pkg/testsupport"
)

func attach(t *testing.T) (*form.Store, *catalog.Ref) {
	t.Helper()
	store := form.NewStore(nil)
	ref := catalog.NewRef(testsupport.Catalog())
	resolver := derive.Attach(store, ref)
	t.Cleanup(resolver.Close)
	return store, ref
}

func TestResolver_TypeFollowsFunction(t *testing.T) {
	store, _ := attach(t)

	if err := store.Set(form.FieldFunction, "extract_entities"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Values().Type; got != catalog.FunctionTypeJSON {
		t.Fatalf("type = %q, want %q", got, catalog.FunctionTypeJSON)
	}

	if err := store.Set(form.FieldFunction, "summarize"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Values().Type; got != catalog.FunctionTypeChat {
		t.Fatalf("type = %q, want %q", got, catalog.FunctionTypeChat)
	}

	if err := store.Set(form.FieldFunction, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := store.Values().Type; got != "" {
		t.Fatalf("type = %q, want empty after clearing function", got)
	}
}

func TestResolver_UnresolvableFunctionResetsType(t *testing.T) {
	store, _ := attach(t)

	if err := store.Set(form.FieldFunction, "no_such_function"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Values().Type; got != "" {
		t.Fatalf("type = %q, want empty for unresolvable function", got)
	}
}

func TestResolver_MetricConfigMirrorsCatalog(t *testing.T) {
	store, _ := attach(t)

	if err := store.Set(form.FieldMetricName, "exact_match"); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := &catalog.MetricConfig{Type: catalog.MetricTypeFloat, Optimize: "max", Level: "inference"}
	if diff := cmp.Diff(want, store.Values().MetricConfig); diff != "" {
		t.Fatalf("metric config mismatch (-want +got):\n%s", diff)
	}

	if err := store.Set(form.FieldMetricName, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Values().MetricConfig != nil {
		t.Fatal("metric config should clear with the metric")
	}
}

func TestResolver_DerivationIsIdempotent(t *testing.T) {
	store, _ := attach(t)

	if err := store.Set(form.FieldMetricName, "exact_match"); err != nil {
		t.Fatalf("set: %v", err)
	}
	first := store.Values().MetricConfig

	// Away and back reproduces the same config.
	if err := store.Set(form.FieldMetricName, "thumbs_up"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(form.FieldMetricName, "exact_match"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if diff := cmp.Diff(first, store.Values().MetricConfig); diff != "" {
		t.Fatalf("round trip changed the config (-want +got):\n%s", diff)
	}
}

func TestResolver_CatalogSwapRefreshesDerivedFields(t *testing.T) {
	store, ref := attach(t)

	if err := store.Set(form.FieldFunction, "extract_entities"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(form.FieldMetricName, "exact_match"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Config reload drops the entries: derived fields fall back rather than
	// retaining stale values.
	ref.Swap(catalog.Catalog{})
	values := store.Values()
	if values.Type != "" {
		t.Fatalf("type = %q, want empty after catalog reload", values.Type)
	}
	if values.MetricConfig != nil {
		t.Fatalf("metric config = %+v, want nil after catalog reload", values.MetricConfig)
	}

	// Restoring the catalog restores the derivation without user input.
	ref.Swap(testsupport.Catalog())
	values = store.Values()
	if values.Type != catalog.FunctionTypeJSON {
		t.Fatalf("type = %q, want %q after restore", values.Type, catalog.FunctionTypeJSON)
	}
	if !values.MetricConfig.HasThreshold() {
		t.Fatal("metric config should be re-derived after restore")
	}
}

func TestResolver_InitialPassRunsOnAttach(t *testing.T) {
	store := form.NewStore(nil)
	if err := store.Set(form.FieldFunction, "summarize"); err != nil {
		t.Fatalf("set: %v", err)
	}

	resolver := derive.Attach(store, catalog.NewRef(testsupport.Catalog()))
	defer resolver.Close()

	if got := store.Values().Type; got != catalog.FunctionTypeChat {
		t.Fatalf("type = %q, want %q after attach", got, catalog.FunctionTypeChat)
	}
}
