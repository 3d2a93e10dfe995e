package binding

import (
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Validate checks template-level binding invariants: at most one node may be
// bound to PrimaryBody.
func Validate(template []tree.Node) error {
	var types []string
	tree.Walk(template, tree.DepthFirst, func(node tree.Node) tree.Step[struct{}] {
		for _, key := range Bindings(node) {
			if key == PrimaryBody {
				types = append(types, node.Type)
				break
			}
		}
		return tree.Continue[struct{}](node)
	})
	if len(types) > 1 {
		return &AmbiguousPrimaryBodyError{Count: len(types), Types: types}
	}
	return nil
}

// BoundKeys lists every named field key referenced by the template, in
// depth-first order without duplicates.
func BoundKeys(template []tree.Node) []string {
	var keys []string
	seen := map[string]struct{}{}
	tree.Walk(template, tree.DepthFirst, func(node tree.Node) tree.Step[struct{}] {
		bindings := Bindings(node)
		for _, attr := range tree.SortedKeys(bindings) {
			key := bindings[attr]
			if key == PrimaryBody {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		return tree.Continue[struct{}](node)
	})
	return keys
}
