package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/catalog"
	"github.com/goliatone/go-contentmodel/pkg/model"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

func TestLoadFS_ModelsAndTypes(t *testing.T) {
	types := binding.DefaultTypes()
	reg, err := catalog.LoadFS(os.DirFS(filepath.Join("testdata", "models")), types)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Empty() {
		t.Fatalf("expected models to be registered")
	}
	if got := reg.List(); len(got) != 2 || got[0] != "article" || got[1] != "landing" {
		t.Fatalf("unexpected slugs: %v", got)
	}

	entry, err := reg.Lookup("article")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry.Model.Label != "Article" {
		t.Fatalf("label mismatch: %q", entry.Model.Label)
	}
	if len(entry.Model.Template) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(entry.Model.Template))
	}
	field, ok := entry.Fields.Lookup("reading_time")
	if !ok || field.Type != model.FieldTypeInteger {
		t.Fatalf("reading_time descriptor mismatch: %+v", field)
	}
	if featured, _ := entry.Fields.Lookup("featured"); featured.Type != model.FieldTypeBoolean || featured.Visible {
		t.Fatalf("featured descriptor mismatch: %+v", featured)
	}

	callout, ok := types.Lookup("callout")
	if !ok {
		t.Fatalf("callout type not registered")
	}
	if callout.Attributes["tone"].Attribute != "class" || callout.Render == "" {
		t.Fatalf("callout descriptor mismatch: %+v", callout)
	}
}

func TestLoadFS_RejectsAmbiguousPrimaryBody(t *testing.T) {
	_, err := catalog.LoadFS(os.DirFS(filepath.Join("testdata", "invalid_ambiguous")), binding.DefaultTypes())
	if !errors.Is(err, binding.ErrAmbiguousPrimaryBody) {
		t.Fatalf("expected ambiguous primary body error, got %v", err)
	}
}

func TestLoadFS_RejectsUndeclaredFields(t *testing.T) {
	_, err := catalog.LoadFS(os.DirFS(filepath.Join("testdata", "invalid_undeclared")), binding.DefaultTypes())
	if !errors.Is(err, catalog.ErrUndeclaredField) {
		t.Fatalf("expected undeclared field error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	reg, err := catalog.LoadFS(nil, nil)
	if err != nil || !reg.Empty() {
		t.Fatalf("expected empty registry, got %v %v", reg.List(), err)
	}
}

func TestRegistry_DuplicateAndLookupIsolation(t *testing.T) {
	reg := catalog.NewRegistry()
	m := model.Model{
		Slug:     "note",
		Template: tree.MustParse(`<!-- cm:paragraph --><p>x</p><!-- /cm:paragraph -->`),
	}
	reg.MustRegister(m)
	if err := reg.Register(m); err == nil {
		t.Fatalf("expected duplicate slug to fail")
	}

	entry, err := reg.Lookup("note")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	entry.Model.Template[0].Markup = "<p>changed</p>"

	again, _ := reg.Lookup("note")
	if again.Model.Template[0].Markup != "<p>x</p>" {
		t.Fatalf("registered template was modified through a lookup")
	}

	if _, err := reg.Lookup("missing"); !errors.Is(err, catalog.ErrModelNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
