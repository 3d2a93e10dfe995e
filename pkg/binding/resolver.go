package binding

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-contentmodel/pkg/fragment"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Info summarises a node's relationship to storage.
type Info struct {
	// Bindings maps attribute names to storage keys.
	Bindings map[string]string
	// PrimaryBody is set when the content attribute is bound to PrimaryBody.
	PrimaryBody bool
	// Container is set when the node's type holds its content as children.
	Container bool
}

// Bound reports whether the node carries any binding.
func (i Info) Bound() bool {
	return len(i.Bindings) > 0
}

// FieldBindings returns the bindings that target named fields.
func (i Info) FieldBindings() map[string]string {
	out := make(map[string]string, len(i.Bindings))
	for attr, key := range i.Bindings {
		if key != PrimaryBody {
			out[attr] = key
		}
	}
	return out
}

// Resolve classifies node against the type registry.
func Resolve(node tree.Node, types *TypeRegistry) Info {
	bindings := Bindings(node)
	desc, _ := types.Lookup(node.Type)
	return Info{
		Bindings:    bindings,
		PrimaryBody: bindings[ContentAttribute] == PrimaryBody,
		Container:   desc.Container,
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFields attaches the field registry used for type coercion.
func WithFields(fields *FieldRegistry) Option {
	return func(r *Resolver) {
		r.fields = fields
	}
}

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver answers which storage keys a node is bound to and where inside its
// markup each bound value lives.
type Resolver struct {
	types  *TypeRegistry
	fields *FieldRegistry
	logger *slog.Logger
}

// NewResolver builds a resolver over types. A nil registry falls back to
// DefaultTypes.
func NewResolver(types *TypeRegistry, options ...Option) *Resolver {
	if types == nil {
		types = DefaultTypes()
	}
	r := &Resolver{
		types:  types,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Types exposes the registry the resolver reads from.
func (r *Resolver) Types() *TypeRegistry {
	return r.types
}

// Fields exposes the field registry, which may be nil.
func (r *Resolver) Fields() *FieldRegistry {
	return r.fields
}

// Logger exposes the resolver's logger so pipeline stages share it.
func (r *Resolver) Logger() *slog.Logger {
	return r.logger
}

// Resolve classifies node.
func (r *Resolver) Resolve(node tree.Node) Info {
	return Resolve(node, r.types)
}

// Bindings returns node's attribute -> storage key annotations.
func (r *Resolver) Bindings(node tree.Node) map[string]string {
	return Bindings(node)
}

// Binding returns the storage key bound to attribute.
func (r *Resolver) Binding(node tree.Node, attribute string) (string, bool) {
	return Binding(node, attribute)
}

// IsContainer reports whether attribute on node means "the node's children".
func (r *Resolver) IsContainer(node tree.Node, attribute string) bool {
	if attribute != ContentAttribute {
		return false
	}
	desc, ok := r.types.Lookup(node.Type)
	return ok && desc.Container
}

// ResolveDescriptor locates attribute inside node's markup. The content
// attribute of a container resolves to the node's own wrapping element.
// Unknown types or attributes return an *UnresolvedBindingError.
func (r *Resolver) ResolveDescriptor(node tree.Node, attribute string) (fragment.Descriptor, error) {
	if r.IsContainer(node, attribute) {
		return fragment.Descriptor{Source: fragment.SourceContent}, nil
	}
	if desc, ok := r.types.Lookup(node.Type); ok {
		if ad, ok := desc.Attributes[attribute]; ok {
			return ad, nil
		}
	}
	key, _ := Binding(node, attribute)
	return fragment.Descriptor{}, &UnresolvedBindingError{Type: node.Type, Attribute: attribute, Key: key}
}

// DefaultValue returns the value currently embedded in node for attribute:
// the structural attribute when present, the serialized children for a
// container's content, or whatever the markup holds at the resolved location.
// A missing value is reported through the boolean, never as an error; only
// malformed markup fails.
func (r *Resolver) DefaultValue(node tree.Node, attribute string) (any, bool, error) {
	if value, ok := node.Attribute(attribute); ok {
		return value, true, nil
	}
	if r.IsContainer(node, attribute) && len(node.Children) > 0 {
		return tree.Serialize(node.Children), true, nil
	}
	desc, err := r.ResolveDescriptor(node, attribute)
	if err != nil {
		return nil, false, nil
	}
	if node.Markup == "" {
		return nil, false, nil
	}
	value, ok, err := fragment.Extract(node.Markup, desc)
	if err != nil || !ok {
		return nil, false, err
	}
	return value, true, nil
}

// Coerce casts a stored value for key to its declared field type. Coercion
// failures are logged and the raw string is kept.
func (r *Resolver) Coerce(key, raw string) any {
	if r.fields == nil || key == PrimaryBody {
		return raw
	}
	value, err := r.fields.Coerce(key, raw)
	if err != nil {
		r.logger.Warn("stored value does not match field type", "key", key, "error", err)
		return raw
	}
	return value
}
