package catalog

import (
	"testing"

	"github.com/goliatone/go-contentmodel/pkg/model"
)

func sampleModel() model.Model {
	return model.Model{
		Slug:  "article",
		Label: "Article",
		Fields: []model.Field{
			{Slug: "title", Label: "Title", Type: model.FieldTypeString, Visible: true},
			{Slug: "reading_time", Type: model.FieldTypeInteger},
			{Slug: "rating", Type: model.FieldTypeNumber},
			{Slug: "featured", Type: model.FieldTypeBoolean},
		},
	}
}

func TestSchema_Properties(t *testing.T) {
	schema := Schema(sampleModel())
	if schema.Title != "Article" {
		t.Fatalf("title mismatch: %q", schema.Title)
	}
	cases := map[string]string{
		"title":        "string",
		"reading_time": "integer",
		"rating":       "number",
		"featured":     "boolean",
	}
	for name, want := range cases {
		ref, ok := schema.Properties[name]
		if !ok || ref.Value == nil {
			t.Fatalf("property %q missing", name)
		}
		if !ref.Value.Type.Is(want) {
			t.Fatalf("property %q: expected %s, got %v", name, want, ref.Value.Type)
		}
	}
	if visible := schema.Properties["title"].Value.Extensions[visibleExtension]; visible != true {
		t.Fatalf("expected title to be visible, got %v", visible)
	}
}

func TestValidateFields(t *testing.T) {
	m := sampleModel()
	valid := map[string]any{
		"title":        "Hello",
		"reading_time": int64(4),
		"rating":       4.5,
		"featured":     true,
	}
	if err := ValidateFields(m, valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateFields(m, map[string]any{"reading_time": "four"}); err == nil {
		t.Fatalf("expected type mismatch to fail")
	}
	if err := ValidateFields(m, map[string]any{"unknown": "x"}); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}
