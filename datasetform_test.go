package datasetform_test

import (
	"testing"

	datasetform "github.com/goliatone/go-datasetform"
	"github.com/goliatone/go-datasetform/pkg/form"
	"github.com/goliatone/go-datasetform/pkg/preview"
	"github.com/goliatone/go-datasetform/pkg/submission"
	"github.com/goliatone/go-datasetform/pkg/testsupport"
)

func TestFacadeRoundTrip(t *testing.T) {
	count := int64(12)
	submitter := testsupport.StaticSubmit(submission.Outcome{Success: true, Count: &count})

	b, err := datasetform.New(
		datasetform.NewCatalogRef(testsupport.Catalog()),
		testsupport.StaticCounts(preview.Result{}),
		submitter,
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer b.Close()

	ctx := testsupport.Context()
	if err := b.SetField(ctx, form.FieldDataset, "eval-set"); err != nil {
		t.Fatalf("set dataset: %v", err)
	}
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if label := b.Snapshot().SubmitLabel; label != "Inserted 12 Rows" {
		t.Fatalf("label = %q, want %q", label, "Inserted 12 Rows")
	}
}
