package binding

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-contentmodel/pkg/fragment"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Built-in node types registered by DefaultTypes.
const (
	TypeGroup     = "group"
	TypeParagraph = "paragraph"
	TypeHeading   = "heading"
	TypeImage     = "image"
	TypeButton    = "button"
)

// TypeDescriptor declares how a node type exposes its attributes inside its
// markup. Container types hold their content as children. Render, when set,
// is a template used to produce front-end markup for the type.
type TypeDescriptor struct {
	Name       string                         `json:"name" yaml:"name"`
	Container  bool                           `json:"container,omitempty" yaml:"container,omitempty"`
	Attributes map[string]fragment.Descriptor `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Render     string                         `json:"render,omitempty" yaml:"render,omitempty"`
}

// TypeRegistry stores type descriptors by name. It is built explicitly and
// passed to the components that need it; it is safe for concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]TypeDescriptor
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]TypeDescriptor)}
}

// DefaultTypes returns a registry seeded with the built-in node types.
func DefaultTypes() *TypeRegistry {
	reg := NewTypeRegistry()
	reg.MustRegister(TypeDescriptor{Name: TypeGroup, Container: true})
	reg.MustRegister(TypeDescriptor{
		Name: TypeParagraph,
		Attributes: map[string]fragment.Descriptor{
			"content": {Source: fragment.SourceContent, Selector: "p"},
		},
	})
	reg.MustRegister(TypeDescriptor{
		Name: TypeHeading,
		Attributes: map[string]fragment.Descriptor{
			"content": {Source: fragment.SourceContent, Selector: "h1,h2,h3,h4,h5,h6"},
		},
	})
	reg.MustRegister(TypeDescriptor{
		Name: TypeImage,
		Attributes: map[string]fragment.Descriptor{
			"url":     {Source: fragment.SourceAttribute, Selector: "img", Attribute: "src"},
			"alt":     {Source: fragment.SourceAttribute, Selector: "img", Attribute: "alt"},
			"caption": {Source: fragment.SourceContent, Selector: "figcaption"},
		},
	})
	reg.MustRegister(TypeDescriptor{
		Name: TypeButton,
		Attributes: map[string]fragment.Descriptor{
			"text":      {Source: fragment.SourceContent, Selector: "a"},
			"url":       {Source: fragment.SourceAttribute, Selector: "a", Attribute: "href"},
			"className": {Source: fragment.SourceAttribute, Selector: "a", Attribute: "class"},
		},
	})
	return reg
}

// Register adds a descriptor. Duplicate names and invalid attribute
// descriptors return an error.
func (r *TypeRegistry) Register(desc TypeDescriptor) error {
	name := strings.TrimSpace(desc.Name)
	if name == "" {
		return fmt.Errorf("binding: type name is required")
	}
	if !tree.ValidType(name) {
		return fmt.Errorf("binding: invalid type name %q", name)
	}
	for attr, ad := range desc.Attributes {
		if err := ad.Validate(); err != nil {
			return fmt.Errorf("binding: type %q attribute %q: %w", name, attr, err)
		}
	}
	desc.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("binding: type %q already registered", name)
	}
	r.types[name] = desc
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *TypeRegistry) MustRegister(desc TypeDescriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor registered for name.
func (r *TypeRegistry) Lookup(name string) (TypeDescriptor, bool) {
	if r == nil {
		return TypeDescriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.types[name]
	return desc, ok
}

// List returns the registered type names, sorted.
func (r *TypeRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
