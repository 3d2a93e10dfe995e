package binding

import (
	"strings"

	"github.com/goliatone/go-contentmodel/pkg/tree"
)

const (
	// PrimaryBody is the reserved storage key of the document's main content.
	PrimaryBody = "PRIMARY_BODY"
	// ContentAttribute is the pseudo-attribute meaning "this node's children"
	// on container types. On other types it is an ordinary attribute.
	ContentAttribute = "content"
	// BindingsKey is the metadata key holding binding annotations.
	BindingsKey = "bindings"
	// LockAttribute marks a node as structurally locked.
	LockAttribute = "lock"
)

// Bindings returns the attribute -> storage key annotations of node. Each
// annotation is either {"key": "..."} or a bare key string.
func Bindings(node tree.Node) map[string]string {
	out := map[string]string{}
	if node.Metadata == nil {
		return out
	}
	switch raw := node.Metadata[BindingsKey].(type) {
	case map[string]any:
		for attr, value := range raw {
			if key := annotationKey(value); key != "" {
				out[attr] = key
			}
		}
	case map[string]string:
		for attr, key := range raw {
			if key = strings.TrimSpace(key); key != "" {
				out[attr] = key
			}
		}
	case map[string]map[string]any:
		for attr, value := range raw {
			if key := annotationKey(value); key != "" {
				out[attr] = key
			}
		}
	}
	return out
}

func annotationKey(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		key, _ := typed["key"].(string)
		return strings.TrimSpace(key)
	case map[string]string:
		return strings.TrimSpace(typed["key"])
	default:
		return ""
	}
}

// Binding returns the storage key bound to attribute.
func Binding(node tree.Node, attribute string) (string, bool) {
	key, ok := Bindings(node)[attribute]
	return key, ok
}

// Bind returns a copy of node annotated so attribute maps to key.
func Bind(node tree.Node, attribute, key string) tree.Node {
	out := node.Clone()
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	annotations, _ := out.Metadata[BindingsKey].(map[string]any)
	if annotations == nil {
		annotations = map[string]any{}
		for attr, existing := range Bindings(node) {
			annotations[attr] = map[string]any{"key": existing}
		}
	}
	annotations[attribute] = map[string]any{"key": key}
	out.Metadata[BindingsKey] = annotations
	return out
}

// Unbind returns a copy of node without binding annotations. The metadata map
// is dropped entirely when nothing else is left in it.
func Unbind(node tree.Node) tree.Node {
	if _, ok := node.Metadata[BindingsKey]; !ok {
		return node
	}
	out := node
	out.Metadata = make(map[string]any, len(node.Metadata))
	for key, value := range node.Metadata {
		if key != BindingsKey {
			out.Metadata[key] = value
		}
	}
	if len(out.Metadata) == 0 {
		out.Metadata = nil
	}
	return out
}

// Lock returns a copy of node with move/remove disabled.
func Lock(node tree.Node) tree.Node {
	out := node
	attrs := make(map[string]any, len(node.Attributes)+1)
	for key, value := range node.Attributes {
		attrs[key] = value
	}
	attrs[LockAttribute] = map[string]any{"move": true, "remove": true}
	out.Attributes = attrs
	return out
}

// IsLocked reports whether node carries a lock attribute disabling moves.
func IsLocked(node tree.Node) bool {
	lock, ok := node.Attributes[LockAttribute].(map[string]any)
	if !ok {
		return false
	}
	move, _ := lock["move"].(bool)
	remove, _ := lock["remove"].(bool)
	return move && remove
}
