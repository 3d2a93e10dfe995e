package binding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contentmodel/pkg/fragment"
	"github.com/goliatone/go-contentmodel/pkg/model"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

func TestBindings_AnnotationShapes(t *testing.T) {
	cases := map[string]struct {
		metadata map[string]any
		want     map[string]string
	}{
		"object form": {
			metadata: map[string]any{"bindings": map[string]any{"content": map[string]any{"key": "title"}}},
			want:     map[string]string{"content": "title"},
		},
		"bare string": {
			metadata: map[string]any{"bindings": map[string]any{"url": " link "}},
			want:     map[string]string{"url": "link"},
		},
		"typed string map": {
			metadata: map[string]any{"bindings": map[string]string{"alt": "hero_alt"}},
			want:     map[string]string{"alt": "hero_alt"},
		},
		"empty key ignored": {
			metadata: map[string]any{"bindings": map[string]any{"content": map[string]any{"key": ""}}},
			want:     map[string]string{},
		},
		"no metadata": {
			want: map[string]string{},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Bindings(tree.Node{Type: "paragraph", Metadata: tc.metadata})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBindUnbindLock(t *testing.T) {
	node := tree.Node{Type: "image", Metadata: map[string]any{"bindings": map[string]string{"url": "hero"}, "note": "x"}}

	bound := Bind(node, "alt", "hero_alt")
	if diff := cmp.Diff(map[string]string{"url": "hero", "alt": "hero_alt"}, Bindings(bound)); diff != "" {
		t.Fatalf("bind mismatch (-want +got):\n%s", diff)
	}
	if _, ok := Binding(node, "alt"); ok {
		t.Fatalf("Bind must not mutate its input")
	}

	unbound := Unbind(bound)
	if len(Bindings(unbound)) != 0 || unbound.Metadata["note"] != "x" {
		t.Fatalf("unbind should drop only bindings: %#v", unbound.Metadata)
	}
	if len(Bindings(bound)) != 2 {
		t.Fatalf("Unbind must not mutate its input")
	}
	if Unbind(tree.Node{Metadata: map[string]any{"bindings": map[string]any{}}}).Metadata != nil {
		t.Fatalf("empty metadata should be dropped")
	}

	locked := Lock(node)
	if !IsLocked(locked) || IsLocked(node) {
		t.Fatalf("lock should apply to the copy only")
	}
}

func TestResolve_Info(t *testing.T) {
	types := DefaultTypes()
	group := tree.Node{Type: TypeGroup, Metadata: map[string]any{"bindings": map[string]any{"content": "PRIMARY_BODY", "className": "style"}}}

	info := Resolve(group, types)
	if !info.Bound() || !info.PrimaryBody || !info.Container {
		t.Fatalf("unexpected info: %+v", info)
	}
	if diff := cmp.Diff(map[string]string{"className": "style"}, info.FieldBindings()); diff != "" {
		t.Fatalf("field bindings mismatch (-want +got):\n%s", diff)
	}
	if Resolve(tree.Node{Type: TypeParagraph}, types).Bound() {
		t.Fatalf("unbound node reported as bound")
	}
}

func TestResolver_ResolveDescriptor(t *testing.T) {
	r := NewResolver(nil)

	desc, err := r.ResolveDescriptor(tree.Node{Type: TypeGroup}, ContentAttribute)
	if err != nil || desc.Source != fragment.SourceContent || desc.Selector != "" {
		t.Fatalf("container content should resolve to the wrapper: %+v %v", desc, err)
	}

	desc, err = r.ResolveDescriptor(tree.Node{Type: TypeImage}, "url")
	if err != nil || desc.Attribute != "src" {
		t.Fatalf("image url descriptor mismatch: %+v %v", desc, err)
	}

	node := Bind(tree.Node{Type: TypeParagraph}, "subtitle", "ghost")
	_, err = r.ResolveDescriptor(node, "subtitle")
	var unresolved *UnresolvedBindingError
	if !errors.As(err, &unresolved) || unresolved.Key != "ghost" || !errors.Is(err, ErrUnresolvedBinding) {
		t.Fatalf("expected unresolved binding error, got %v", err)
	}

	if r.IsContainer(tree.Node{Type: TypeParagraph}, ContentAttribute) {
		t.Fatalf("paragraph content is not a container")
	}
	if r.IsContainer(tree.Node{Type: TypeGroup}, "className") {
		t.Fatalf("only the content attribute maps to children")
	}
}

func TestResolver_DefaultValue(t *testing.T) {
	r := NewResolver(DefaultTypes())
	doc := `<!-- cm:heading --><h2>Default title</h2><!-- /cm:heading -->` +
		`<!-- cm:paragraph {"content":"attr wins"} --><p>markup</p><!-- /cm:paragraph -->` +
		`<!-- cm:group --><div><!-- cm:paragraph --><p>child</p><!-- /cm:paragraph --></div><!-- /cm:group -->` +
		`<!-- cm:image --><img src="/a.png"/><!-- /cm:image -->`
	nodes := tree.MustParse(doc)

	cases := []struct {
		node int
		attr string
		want any
		ok   bool
	}{
		{0, ContentAttribute, "Default title", true},
		{1, ContentAttribute, "attr wins", true},
		{2, ContentAttribute, `<!-- cm:paragraph --><p>child</p><!-- /cm:paragraph -->`, true},
		{3, "url", "/a.png", true},
		{3, "alt", nil, false},
		{3, "unknown", nil, false},
	}
	for _, tc := range cases {
		got, ok, err := r.DefaultValue(nodes[tc.node], tc.attr)
		if err != nil {
			t.Fatalf("node %d %s: %v", tc.node, tc.attr, err)
		}
		if ok != tc.ok || got != tc.want {
			t.Fatalf("node %d %s: got %#v ok=%v, want %#v ok=%v", tc.node, tc.attr, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		raw     string
		typ     model.FieldType
		want    any
		wantErr bool
	}{
		{"hello", model.FieldTypeString, "hello", false},
		{" 42 ", model.FieldTypeInteger, int64(42), false},
		{"3.0", model.FieldTypeInteger, int64(3), false},
		{"3.5", model.FieldTypeInteger, nil, true},
		{"1.25", model.FieldTypeNumber, 1.25, false},
		{"abc", model.FieldTypeNumber, nil, true},
		{"on", model.FieldTypeBoolean, true, false},
		{"", model.FieldTypeBoolean, false, false},
		{"maybe", model.FieldTypeBoolean, nil, true},
	}
	for _, tc := range cases {
		got, err := Coerce(tc.raw, tc.typ)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Coerce(%q, %s) err = %v", tc.raw, tc.typ, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("Coerce(%q, %s) = %#v, want %#v", tc.raw, tc.typ, got, tc.want)
		}
	}
}

func TestResolver_CoerceFallsBackToRaw(t *testing.T) {
	fields, err := NewFieldRegistry(model.Field{Slug: "count", Type: model.FieldTypeInteger})
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	r := NewResolver(nil, WithFields(fields))
	if got := r.Coerce("count", "7"); got != int64(7) {
		t.Fatalf("expected int64(7), got %#v", got)
	}
	if got := r.Coerce("count", "seven"); got != "seven" {
		t.Fatalf("expected raw fallback, got %#v", got)
	}
	if got := r.Coerce(PrimaryBody, "<p>x</p>"); got != "<p>x</p>" {
		t.Fatalf("primary body must pass through, got %#v", got)
	}
}

func TestFieldRegistry(t *testing.T) {
	reg, err := NewFieldRegistry(
		model.Field{Slug: "b", Type: model.FieldTypeString},
		model.Field{Slug: "a", Type: model.FieldTypeBoolean},
	)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	var order []string
	for _, f := range reg.List() {
		order = append(order, f.Slug)
	}
	if diff := cmp.Diff([]string{"b", "a"}, order); diff != "" {
		t.Fatalf("registration order lost (-want +got):\n%s", diff)
	}

	for name, field := range map[string]model.Field{
		"duplicate": {Slug: "a", Type: model.FieldTypeString},
		"reserved":  {Slug: PrimaryBody, Type: model.FieldTypeString},
		"empty":     {Slug: " "},
		"bad type":  {Slug: "c", Type: "date"},
	} {
		if err := reg.Register(field); err == nil {
			t.Fatalf("%s: expected registration error", name)
		}
	}
}

func TestTypeRegistry(t *testing.T) {
	reg := DefaultTypes()
	if diff := cmp.Diff([]string{"button", "group", "heading", "image", "paragraph"}, reg.List()); diff != "" {
		t.Fatalf("default types mismatch (-want +got):\n%s", diff)
	}
	if err := reg.Register(TypeDescriptor{Name: TypeGroup}); err == nil {
		t.Fatalf("expected duplicate type error")
	}
	if err := reg.Register(TypeDescriptor{Name: "Bad Name"}); err == nil {
		t.Fatalf("expected invalid name error")
	}
	err := reg.Register(TypeDescriptor{
		Name:       "quote",
		Attributes: map[string]fragment.Descriptor{"cite": {Source: fragment.SourceAttribute, Selector: "blockquote"}},
	})
	if err == nil {
		t.Fatalf("expected descriptor validation error")
	}
	var nilReg *TypeRegistry
	if _, ok := nilReg.Lookup("group"); ok {
		t.Fatalf("nil registry lookup should miss")
	}
}

func TestValidateAndBoundKeys(t *testing.T) {
	single := tree.MustParse(`<!-- cm:heading {"metadata":{"bindings":{"content":{"key":"title"}}}} --><h2>x</h2><!-- /cm:heading -->` +
		`<!-- cm:group {"metadata":{"bindings":{"content":{"key":"PRIMARY_BODY"}}}} --><div><!-- cm:heading {"metadata":{"bindings":{"content":{"key":"title"}}}} --><h3>y</h3><!-- /cm:heading --><!-- cm:image {"metadata":{"bindings":{"url":{"key":"hero"}}}} /--></div><!-- /cm:group -->`)
	if err := Validate(single); err != nil {
		t.Fatalf("single primary body should validate: %v", err)
	}
	if diff := cmp.Diff([]string{"title", "hero"}, BoundKeys(single)); diff != "" {
		t.Fatalf("bound keys mismatch (-want +got):\n%s", diff)
	}

	double := tree.MustParse(`<!-- cm:group {"metadata":{"bindings":{"content":"PRIMARY_BODY"}}} --><div></div><!-- /cm:group --><!-- cm:paragraph {"metadata":{"bindings":{"content":"PRIMARY_BODY"}}} --><p></p><!-- /cm:paragraph -->`)
	err := Validate(double)
	var ambiguous *AmbiguousPrimaryBodyError
	if !errors.As(err, &ambiguous) || ambiguous.Count != 2 || !errors.Is(err, ErrAmbiguousPrimaryBody) {
		t.Fatalf("expected ambiguous primary body error, got %v", err)
	}
}
