package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-datasetform/pkg/builder"
	"github.com/goliatone/go-datasetform/pkg/render"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, builder.Snapshot, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := render.NewRegistry()

	if err := registry.Register(stubRenderer{name: "vanilla"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	renderer, err := registry.Get("vanilla")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if renderer.Name() != "vanilla" {
		t.Fatalf("name = %q, want vanilla", renderer.Name())
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "vanilla"})

	if err := registry.Register(stubRenderer{name: "vanilla"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestRegistry_UnknownName(t *testing.T) {
	registry := render.NewRegistry()
	if _, err := registry.Get("missing"); err == nil {
		t.Fatal("unknown renderer should fail")
	}
}

func TestRegistry_EmptyNameRejected(t *testing.T) {
	registry := render.NewRegistry()
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatal("empty name should fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatal("nil renderer should fail")
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "vanilla"})
	registry.MustRegister(stubRenderer{name: "ansi"})
	registry.MustRegister(stubRenderer{name: "markdown"})

	want := []string{"ansi", "markdown", "vanilla"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
