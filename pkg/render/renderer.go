package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Filter is a template filter callable from type render templates.
type Filter func(input any, param any) (any, error)

var (
	// ErrFilterReserved is returned for filter names pongo2 already provides.
	ErrFilterReserved = errors.New("render: filter name is reserved by pongo2")
	// ErrFilterInUse is returned when another live Renderer owns the name.
	ErrFilterInUse = errors.New("render: filter name is owned by another renderer")
)

// Renderer flattens a document tree into plain markup: block delimiters and
// binding annotations disappear, types with a render template are expanded
// through pongo2, and the result is optionally sanitised.
type Renderer struct {
	types   *binding.TypeRegistry
	policy  *bluemonday.Policy
	filters map[string]Filter
	logger  *slog.Logger

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

// New constructs a Renderer reading render templates from types.
func New(types *binding.TypeRegistry, options ...Option) (*Renderer, error) {
	if types == nil {
		types = binding.DefaultTypes()
	}
	r := &Renderer{
		types:     types,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		templates: make(map[string]*pongo2.Template),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if err := filters.claim(r, r.filters); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the template filter names owned by r so another Renderer
// can register them.
func (r *Renderer) Close() {
	filters.release(r)
}

// Render flattens nodes to markup.
func (r *Renderer) Render(nodes []tree.Node) (string, error) {
	var b strings.Builder
	for _, node := range nodes {
		if err := r.renderNode(&b, node); err != nil {
			return "", err
		}
	}
	out := b.String()
	if r.policy != nil {
		out = r.policy.Sanitize(out)
	}
	return out, nil
}

// RenderString parses a serialized document and renders it.
func (r *Renderer) RenderString(doc string) (string, error) {
	nodes, err := tree.Parse(doc)
	if err != nil {
		return "", err
	}
	return r.Render(nodes)
}

func (r *Renderer) renderNode(b *strings.Builder, node tree.Node) error {
	var inner strings.Builder
	var childErr error
	tree.Interleave(node,
		func(markup string) { inner.WriteString(markup) },
		func(child tree.Node) {
			if childErr == nil {
				childErr = r.renderNode(&inner, child)
			}
		},
	)
	if childErr != nil {
		return childErr
	}

	desc, ok := r.types.Lookup(node.Type)
	if !ok || strings.TrimSpace(desc.Render) == "" {
		b.WriteString(inner.String())
		return nil
	}

	tpl, err := r.template(desc)
	if err != nil {
		return err
	}
	attrs := make(map[string]any, len(node.Attributes))
	for key, value := range node.Attributes {
		if key == binding.LockAttribute {
			continue
		}
		attrs[key] = value
	}
	out, err := tpl.Execute(pongo2.Context{
		"type":       node.Type,
		"attributes": attrs,
		"content":    pongo2.AsSafeValue(inner.String()),
	})
	if err != nil {
		r.logger.Warn("render template failed", "type", node.Type, "error", err)
		return fmt.Errorf("render: execute template for %q: %w", node.Type, err)
	}
	b.WriteString(out)
	return nil
}

func (r *Renderer) template(desc binding.TypeDescriptor) (*pongo2.Template, error) {
	r.mu.RLock()
	tpl, ok := r.templates[desc.Name]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	compiled, err := pongo2.FromString(desc.Render)
	if err != nil {
		return nil, fmt.Errorf("render: compile template for %q: %w", desc.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.templates[desc.Name]; ok {
		return existing, nil
	}
	r.templates[desc.Name] = compiled
	return compiled, nil
}

// pongo2 keeps filters in a process-wide table. filterTable tracks which
// Renderer owns each name installed by this package; the installed pongo2
// filter dispatches to the owner's current function.
type filterTable struct {
	mu        sync.Mutex
	installed map[string]bool
	owners    map[string]*Renderer
	funcs     map[string]Filter
}

var filters = &filterTable{
	installed: make(map[string]bool),
	owners:    make(map[string]*Renderer),
	funcs:     make(map[string]Filter),
}

func (t *filterTable) claim(r *Renderer, fns map[string]Filter) error {
	if len(fns) == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	names := tree.SortedKeys(fns)
	for _, name := range names {
		if fns[name] == nil {
			return fmt.Errorf("render: filter %q is nil", name)
		}
		if owner, ok := t.owners[name]; ok && owner != r {
			return fmt.Errorf("%w: %q", ErrFilterInUse, name)
		}
		if !t.installed[name] && pongo2.FilterExists(name) {
			return fmt.Errorf("%w: %q", ErrFilterReserved, name)
		}
	}
	for _, name := range names {
		if !t.installed[name] {
			if err := pongo2.RegisterFilter(name, t.dispatch(name)); err != nil {
				return fmt.Errorf("render: register filter %q: %w", name, err)
			}
			t.installed[name] = true
		}
		t.owners[name] = r
		t.funcs[name] = fns[name]
	}
	return nil
}

func (t *filterTable) release(r *Renderer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, owner := range t.owners {
		if owner == r {
			delete(t.owners, name)
			delete(t.funcs, name)
		}
	}
}

func (t *filterTable) dispatch(name string) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		t.mu.Lock()
		fn := t.funcs[name]
		t.mu.Unlock()
		if fn == nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: fmt.Errorf("filter %q is not registered", name)}
		}
		out, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(out), nil
	}
}
