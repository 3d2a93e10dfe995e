package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/fragment"
	"github.com/goliatone/go-contentmodel/pkg/store"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Option customises an Extractor.
type Option func(*Extractor)

// WithLogger overrides the logger inherited from the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithoutCoercion keeps extracted values as found in the tree instead of
// casting them to the declared field types.
func WithoutCoercion() Option {
	return func(e *Extractor) {
		e.coerce = false
	}
}

// Extractor reads stored values back out of an edited tree.
type Extractor struct {
	resolver *binding.Resolver
	logger   *slog.Logger
	coerce   bool
}

// New constructs an Extractor.
func New(resolver *binding.Resolver, options ...Option) (*Extractor, error) {
	if resolver == nil {
		return nil, errors.New("extract: resolver is required")
	}
	e := &Extractor{resolver: resolver, logger: resolver.Logger(), coerce: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e, nil
}

type bodyResult struct {
	markup string
	err    error
}

// PrimaryBody returns the markup of the node bound to the primary body. The
// first readable match in breadth-first order wins, so shallow nodes beat
// nested ones. Bound nodes of unknown types, or whose markup lacks the bound
// element, are passed over. The boolean is false when no bound node yields a
// value; callers must then leave any stored body alone.
func (e *Extractor) PrimaryBody(nodes []tree.Node) (string, bool, error) {
	result := tree.Walk(nodes, tree.BreadthFirst, func(node tree.Node) tree.Step[bodyResult] {
		if key, ok := binding.Binding(node, binding.ContentAttribute); !ok || key != binding.PrimaryBody {
			return tree.Continue[bodyResult](node)
		}
		if len(node.Children) > 0 {
			return tree.Stop(bodyResult{markup: tree.Serialize(node.Children)})
		}
		value, err := e.nodeValue(node, binding.ContentAttribute)
		if errors.Is(err, binding.ErrUnresolvedBinding) {
			e.logger.Debug("primary body binding cannot be located", "type", node.Type)
			return tree.Continue[bodyResult](node)
		}
		if err != nil {
			return tree.Stop(bodyResult{err: err})
		}
		if value == nil {
			e.logger.Debug("primary body node has no readable content", "type", node.Type)
			return tree.Continue[bodyResult](node)
		}
		return tree.Stop(bodyResult{markup: store.Format(value)})
	})
	if !result.Stopped {
		return "", false, nil
	}
	if result.Value.err != nil {
		return "", false, fmt.Errorf("extract: primary body: %w", result.Value.err)
	}
	return result.Value.markup, true, nil
}

// Fields collects every named field bound in the tree. Nodes are visited
// depth-first; when several nodes bind the same key the last one visited
// wins. Bindings the type registry cannot locate are omitted.
func (e *Extractor) Fields(nodes []tree.Node) (map[string]any, error) {
	out := map[string]any{}
	result := tree.Walk(nodes, tree.DepthFirst, func(node tree.Node) tree.Step[error] {
		bindings := binding.Bindings(node)
		for _, attr := range tree.SortedKeys(bindings) {
			key := bindings[attr]
			if key == binding.PrimaryBody {
				continue
			}
			value, err := e.nodeValue(node, attr)
			if errors.Is(err, binding.ErrUnresolvedBinding) {
				e.logger.Debug("skipping unresolved binding", "type", node.Type, "attribute", attr, "key", key)
				continue
			}
			if err != nil {
				return tree.Stop(fmt.Errorf("extract: field %q: %w", key, err))
			}
			if value == nil {
				continue
			}
			out[key] = e.coerceValue(key, value)
		}
		return tree.Continue[error](node)
	})
	if result.Stopped {
		return nil, result.Value
	}
	return out, nil
}

// nodeValue reads the bound value of attribute: serialized children for a
// container's content, else the structural attribute, else the markup at the
// resolved location. A nil value means nothing was found.
func (e *Extractor) nodeValue(node tree.Node, attribute string) (any, error) {
	if e.resolver.IsContainer(node, attribute) {
		if len(node.Children) > 0 || node.Markup == "" {
			return tree.Serialize(node.Children), nil
		}
	} else if value, ok := node.Attribute(attribute); ok {
		return value, nil
	}

	desc, err := e.resolver.ResolveDescriptor(node, attribute)
	if err != nil {
		return nil, err
	}
	if node.Markup == "" {
		return nil, nil
	}
	value, ok, err := fragment.Extract(node.Markup, desc)
	if err != nil || !ok {
		return nil, err
	}
	return value, nil
}

func (e *Extractor) coerceValue(key string, value any) any {
	raw, ok := value.(string)
	if !ok || !e.coerce {
		return value
	}
	return e.resolver.Coerce(key, raw)
}
