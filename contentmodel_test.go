package contentmodel_test

import (
	"context"
	"strings"
	"testing"

	contentmodel "github.com/goliatone/go-contentmodel"
	"github.com/goliatone/go-contentmodel/pkg/orchestrator"
	"github.com/goliatone/go-contentmodel/pkg/store"
)

func TestBuiltinModelsLoad(t *testing.T) {
	reg, types, err := contentmodel.LoadModels(contentmodel.BuiltinModelsFS(), nil)
	if err != nil {
		t.Fatalf("load builtin models: %v", err)
	}
	if types == nil {
		t.Fatalf("expected default type registry")
	}
	got := reg.List()
	if len(got) != 2 || got[0] != "landing" || got[1] != "post" {
		t.Fatalf("unexpected builtin models: %v", got)
	}
}

func TestPostRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	id, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	entity, _ := s.Entity(ctx, id)
	entity.SetField("headline", "Shipping day")
	entity.SetField("hero_url", "/img/ship.png")
	entity.SetField("hero_alt", "A ship")
	entity.SetPrimaryBody(`<!-- cm:paragraph --><p>It floats.</p><!-- /cm:paragraph -->`)

	options := []orchestrator.Option{
		orchestrator.WithModelsFS(contentmodel.BuiltinModelsFS()),
		orchestrator.WithStore(s),
	}

	doc, err := contentmodel.EditDocument(ctx, "post", id, options...)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	for _, want := range []string{"<h1>Shipping day</h1>", `src="/img/ship.png"`, `alt="A ship"`, "<p>It floats.</p>"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("edit document missing %q:\n%s", want, doc)
		}
	}

	result, err := contentmodel.SaveDocument(ctx, "post", id, doc, options...)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !result.BodyFound || result.Body != `<!-- cm:paragraph --><p>It floats.</p><!-- /cm:paragraph -->` {
		t.Fatalf("body mismatch: %+v", result)
	}
	if result.Fields["headline"] != "Shipping day" || result.Fields["hero_url"] != "/img/ship.png" {
		t.Fatalf("fields mismatch: %#v", result.Fields)
	}
	// The summary was never stored, so the template default is read back.
	if result.Fields["summary"] != "Summary" {
		t.Fatalf("expected template default for summary, got %#v", result.Fields["summary"])
	}

	html, err := contentmodel.RenderHTML(ctx, "post", id, options...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "cm:") {
		t.Fatalf("rendered output leaked delimiters: %s", html)
	}
	if !strings.Contains(html, `<div class="post-body"><p>It floats.</p></div>`) {
		t.Fatalf("rendered body mismatch: %s", html)
	}
}

func TestLandingAppendsButtonStyle(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	id, _ := s.Create(ctx)
	entity, _ := s.Entity(ctx, id)
	entity.SetField("cta_text", "Buy")
	entity.SetField("cta_style", "primary")

	html, err := contentmodel.RenderHTML(ctx, "landing", id,
		orchestrator.WithModelsFS(contentmodel.BuiltinModelsFS()),
		orchestrator.WithStore(s),
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `class="button primary"`) || !strings.Contains(html, ">Buy</a>") {
		t.Fatalf("button not hydrated: %s", html)
	}
}
