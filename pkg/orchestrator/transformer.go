package orchestrator

import (
	"context"

	"github.com/goliatone/go-contentmodel/pkg/model"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Transformer rewrites a hydrated tree before it is returned to the caller,
// for example to inject host-specific attributes.
type Transformer interface {
	Transform(ctx context.Context, m model.Model, nodes []tree.Node) ([]tree.Node, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, m model.Model, nodes []tree.Node) ([]tree.Node, error)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, m model.Model, nodes []tree.Node) ([]tree.Node, error) {
	if fn == nil {
		return nodes, nil
	}
	return fn(ctx, m, nodes)
}
