package hydrate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/fragment"
	"github.com/goliatone/go-contentmodel/pkg/render"
	"github.com/goliatone/go-contentmodel/pkg/store"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// maxNesting bounds how deep stripped hydration follows bindings found inside
// injected values. Field values may embed blocks bound to other fields.
const maxNesting = 8

// Option customises a Hydrator.
type Option func(*Hydrator)

// WithRenderer sets the renderer used to flatten injected values when
// metadata is stripped. Defaults to a renderer over the resolver's types.
func WithRenderer(renderer *render.Renderer) Option {
	return func(h *Hydrator) {
		h.renderer = renderer
	}
}

// WithLogger overrides the logger inherited from the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hydrator) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Hydrator populates templates with stored values.
type Hydrator struct {
	resolver *binding.Resolver
	renderer *render.Renderer
	logger   *slog.Logger
}

// New constructs a Hydrator.
func New(resolver *binding.Resolver, options ...Option) (*Hydrator, error) {
	if resolver == nil {
		return nil, errors.New("hydrate: resolver is required")
	}
	h := &Hydrator{resolver: resolver, logger: resolver.Logger()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.renderer == nil {
		renderer, err := render.New(resolver.Types(), render.WithLogger(h.logger))
		if err != nil {
			return nil, fmt.Errorf("hydrate: default renderer: %w", err)
		}
		h.renderer = renderer
	}
	return h, nil
}

// Hydrate returns a copy of template with bound nodes filled from source.
//
// Empty or absent stored values leave the template's default in place. Every
// bound node is locked. With stripMetadata set, injected values are rendered
// to plain markup (following nested bindings) and binding annotations are
// removed from the result; otherwise the raw stored structure is injected so
// it stays editable. Bindings the type registry cannot locate are skipped.
// Only malformed markup fails the call.
func (h *Hydrator) Hydrate(template []tree.Node, source store.Source, stripMetadata bool) ([]tree.Node, error) {
	if source == nil {
		return nil, errors.New("hydrate: source is required")
	}
	return h.hydrate(template, source, stripMetadata, 0)
}

func (h *Hydrator) hydrate(nodes []tree.Node, source store.Source, strip bool, depth int) ([]tree.Node, error) {
	result := tree.Walk(nodes, tree.DepthFirst, func(node tree.Node) tree.Step[error] {
		hydrated, err := h.hydrateNode(node, source, strip, depth)
		if err != nil {
			return tree.Stop(err)
		}
		return tree.Continue[error](hydrated)
	})
	if result.Stopped {
		return nil, result.Value
	}
	return result.Nodes, nil
}

func (h *Hydrator) hydrateNode(node tree.Node, source store.Source, strip bool, depth int) (tree.Node, error) {
	bindings := binding.Bindings(node)
	if len(bindings) == 0 {
		return node, nil
	}

	for _, attr := range tree.SortedKeys(bindings) {
		key := bindings[attr]
		if key == binding.PrimaryBody && depth > 0 {
			// A primary body nested inside injected content would recurse.
			continue
		}
		value, ok := lookup(source, key)
		if !ok || value == "" {
			continue
		}

		desc, err := h.resolver.ResolveDescriptor(node, attr)
		if err != nil {
			h.logger.Debug("skipping unresolved binding", "type", node.Type, "attribute", attr, "key", key)
			continue
		}

		if h.resolver.IsContainer(node, attr) {
			children, err := h.children(value, source, strip, depth)
			if err != nil {
				return node, fmt.Errorf("hydrate: %s into %q: %w", key, node.Type, err)
			}
			node.SetChildren(children)
			continue
		}

		text := value
		if strip && desc.Source == fragment.SourceContent {
			if text, err = h.flatten(value, source, depth); err != nil {
				return node, fmt.Errorf("hydrate: %s into %q: %w", key, node.Type, err)
			}
		}
		if node.Markup != "" {
			err := node.EditMarkup(func(markup string) (string, error) {
				return fragment.Replace(markup, desc, text)
			})
			if err != nil {
				return node, fmt.Errorf("hydrate: %s into %q: %w", key, node.Type, err)
			}
		}
		if _, present := node.Attribute(attr); present {
			attrs := make(map[string]any, len(node.Attributes))
			for k, v := range node.Attributes {
				attrs[k] = v
			}
			attrs[attr] = h.resolver.Coerce(key, value)
			node.Attributes = attrs
		}
	}

	node = binding.Lock(node)
	if strip {
		node = binding.Unbind(node)
	}
	return node, nil
}

// children turns a stored value into the nodes injected into a container.
func (h *Hydrator) children(value string, source store.Source, strip bool, depth int) ([]tree.Node, error) {
	if strip {
		flat, err := h.flatten(value, source, depth)
		if err != nil {
			return nil, err
		}
		return []tree.Node{tree.Freeform(flat)}, nil
	}
	return tree.Parse(value)
}

// flatten renders a stored value, hydrating any bindings it carries.
func (h *Hydrator) flatten(value string, source store.Source, depth int) (string, error) {
	nodes, err := tree.Parse(value)
	if err != nil {
		return "", err
	}
	if depth+1 < maxNesting {
		if nodes, err = h.hydrate(nodes, source, true, depth+1); err != nil {
			return "", err
		}
	} else {
		h.logger.Warn("nested bindings too deep, rendering as stored", "depth", depth)
	}
	return h.renderer.Render(nodes)
}

func lookup(source store.Source, key string) (string, bool) {
	if key == binding.PrimaryBody {
		body := source.PrimaryBody()
		return body, body != ""
	}
	return source.Field(key)
}
