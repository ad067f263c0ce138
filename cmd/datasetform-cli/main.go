package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	datasetform "github.com/goliatone/go-datasetform"
	"github.com/goliatone/go-datasetform/pkg/client"
	"github.com/goliatone/go-datasetform/pkg/render"
	"github.com/goliatone/go-datasetform/pkg/renderers/tui"
	"github.com/goliatone/go-datasetform/pkg/renderers/vanilla"
)

func main() {
	catalogPath := flag.String("catalog", "catalog.yaml", "catalog YAML path")
	baseURL := flag.String("base-url", "http://localhost:3000/api", "base URL of the dataset API")
	snapshot := flag.String("snapshot", "", "write an HTML snapshot of the final state to this file")
	flag.Parse()

	ctx := context.Background()

	cat, err := datasetform.LoadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	counts, err := client.NewCountClient(*baseURL)
	if err != nil {
		log.Fatalf("count client: %v", err)
	}
	submitter, err := client.NewSubmitClient(*baseURL)
	if err != nil {
		log.Fatalf("submit client: %v", err)
	}

	b, err := datasetform.New(datasetform.NewCatalogRef(cat), counts, submitter)
	if err != nil {
		log.Fatalf("builder: %v", err)
	}
	defer b.Close()

	flow, err := tui.NewFlow(b)
	if err != nil {
		log.Fatalf("flow: %v", err)
	}
	if err := flow.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Println("Aborted.")
			os.Exit(1)
		}
		log.Fatalf("run: %v", err)
	}

	if *snapshot == "" {
		return
	}
	renderer, err := vanilla.New()
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	html, err := renderer.Render(ctx, b.Snapshot(), render.RenderOptions{Catalog: cat})
	if err != nil {
		log.Fatalf("render snapshot: %v", err)
	}
	if err := os.WriteFile(*snapshot, html, 0o644); err != nil {
		log.Fatalf("write snapshot: %v", err)
	}
	fmt.Printf("Snapshot written to %s\n", *snapshot)
}
