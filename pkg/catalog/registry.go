package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/model"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

var (
	// ErrModelNotFound is returned for unknown model slugs.
	ErrModelNotFound = errors.New("catalog: model not found")
	// ErrUndeclaredField is returned when a template binds a key that the
	// model does not declare as a field.
	ErrUndeclaredField = errors.New("catalog: binding references undeclared field")
)

// Entry is a registered model together with its field registry.
type Entry struct {
	Model  model.Model
	Fields *binding.FieldRegistry
}

// Registry holds validated content models. Models are checked when they are
// registered so broken templates never reach hydration.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Entry)}
}

// Register validates and adds a model. Duplicate slugs, more than one
// primary body binding and bindings to undeclared fields are rejected.
func (r *Registry) Register(m model.Model) error {
	slug := strings.TrimSpace(m.Slug)
	if slug == "" {
		return fmt.Errorf("catalog: model slug is required")
	}
	m.Slug = slug

	fields, err := binding.NewFieldRegistry(m.Fields...)
	if err != nil {
		return fmt.Errorf("catalog: model %q: %w", slug, err)
	}
	if err := binding.Validate(m.Template); err != nil {
		return fmt.Errorf("catalog: model %q: %w", slug, err)
	}
	for _, key := range binding.BoundKeys(m.Template) {
		if _, ok := fields.Lookup(key); !ok {
			return fmt.Errorf("%w: model %q key %q", ErrUndeclaredField, slug, key)
		}
	}
	m.Template = tree.Clone(m.Template)
	m.Fields = fields.List()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[slug]; exists {
		return fmt.Errorf("catalog: model %q already registered", slug)
	}
	r.models[slug] = Entry{Model: m, Fields: fields}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(m model.Model) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for slug. The template is cloned so callers can
// never alter the registered copy.
func (r *Registry) Lookup(slug string) (Entry, error) {
	if r == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrModelNotFound, slug)
	}
	r.mu.RLock()
	entry, ok := r.models[slug]
	r.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrModelNotFound, slug)
	}
	entry.Model.Template = tree.Clone(entry.Model.Template)
	return entry, nil
}

// List returns the registered slugs, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slugs := make([]string, 0, len(r.models))
	for slug := range r.models {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Empty reports whether the registry holds any models.
func (r *Registry) Empty() bool {
	if r == nil {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models) == 0
}
