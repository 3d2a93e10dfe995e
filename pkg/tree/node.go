package tree

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FreeformType is the type tag of nodes holding markup that sits outside any
// block delimiter. Their Markup is kept verbatim.
const FreeformType = ""

// MetadataKey is the attribute under which the serialized form carries node
// metadata (binding annotations live inside it).
const MetadataKey = "metadata"

// Node is a single element of a document tree. Attributes and Metadata maps
// are shared between copies of a Node; callers that mutate them should call
// Clone first.
type Node struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Children   []Node         `json:"children,omitempty"`

	// Markup is the node's own rendered form without its children. Boundaries
	// holds, for each child, the byte offset in Markup where it is spliced in.
	Markup     string `json:"markup,omitempty"`
	Boundaries []int  `json:"boundaries,omitempty"`
}

// Freeform builds a freeform node around raw markup.
func Freeform(markup string) Node {
	return Node{Type: FreeformType, Markup: markup}
}

// IsFreeform reports whether the node carries raw markup only.
func (n Node) IsFreeform() bool {
	return n.Type == FreeformType
}

// Attribute returns a structural attribute value.
func (n Node) Attribute(name string) (any, bool) {
	if n.Attributes == nil {
		return nil, false
	}
	value, ok := n.Attributes[name]
	return value, ok
}

// SetAttribute stores value under name, allocating the map when needed.
func (n *Node) SetAttribute(name string, value any) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]any)
	}
	n.Attributes[name] = value
}

// InnerMarkup serializes the node's children.
func (n Node) InnerMarkup() string {
	return Serialize(n.Children)
}

// SetChildren replaces the children and regenerates the inner boundaries so
// the new children are spliced where the old ones were (or just before the
// wrapper's closing tag when there were none). Text that used to sit between
// the old children is dropped.
func (n *Node) SetChildren(children []Node) {
	insertAt := innerOffset(n.Markup)
	if len(n.Children) > 0 {
		offsets := n.offsets()
		first, last := offsets[0], offsets[len(offsets)-1]
		n.Markup = n.Markup[:first] + n.Markup[last:]
		insertAt = first
	}
	n.Children = children
	if len(children) == 0 {
		n.Boundaries = nil
		return
	}
	n.Boundaries = make([]int, len(children))
	for i := range n.Boundaries {
		n.Boundaries[i] = insertAt
	}
}

var spliceMarkerPattern = regexp.MustCompile(`<!--tree-splice-(\d+)-->`)

func spliceMarker(i int) string {
	return fmt.Sprintf("<!--tree-splice-%d-->", i)
}

// EditMarkup applies edit to the node's own markup and recomputes Boundaries
// so each child stays where it was relative to the surrounding tags, however
// much edit grows or shrinks the text around it. A child whose splice point
// was overwritten by edit moves to the previous child's offset, or to the
// wrapper's closing tag when it is the first.
func (n *Node) EditMarkup(edit func(markup string) (string, error)) error {
	if len(n.Children) == 0 {
		markup, err := edit(n.Markup)
		if err != nil {
			return err
		}
		n.Markup = markup
		return nil
	}

	offsets := n.offsets()
	var marked strings.Builder
	prev := 0
	for i, at := range offsets {
		marked.WriteString(n.Markup[prev:at])
		marked.WriteString(spliceMarker(i))
		prev = at
	}
	marked.WriteString(n.Markup[prev:])

	edited, err := edit(marked.String())
	if err != nil {
		return err
	}

	found := make(map[int]int, len(offsets))
	var out strings.Builder
	prev = 0
	for _, loc := range spliceMarkerPattern.FindAllStringSubmatchIndex(edited, -1) {
		out.WriteString(edited[prev:loc[0]])
		prev = loc[1]
		i, err := strconv.Atoi(edited[loc[2]:loc[3]])
		if err != nil || i >= len(offsets) {
			continue
		}
		if _, dup := found[i]; !dup {
			found[i] = out.Len()
		}
	}
	out.WriteString(edited[prev:])

	n.Markup = out.String()
	boundaries := make([]int, len(offsets))
	for i := range boundaries {
		at, ok := found[i]
		switch {
		case ok:
		case i > 0:
			at = boundaries[i-1]
		default:
			at = innerOffset(n.Markup)
		}
		boundaries[i] = at
	}
	n.Boundaries = boundaries
	return nil
}

// offsets returns the clamped, non-decreasing splice offset of every child.
func (n Node) offsets() []int {
	out := make([]int, len(n.Children))
	fallback := innerOffset(n.Markup)
	prev := 0
	for i := range out {
		at := fallback
		if i < len(n.Boundaries) {
			at = n.Boundaries[i]
		}
		if at < prev {
			at = prev
		}
		if at > len(n.Markup) {
			at = len(n.Markup)
		}
		out[i] = at
		prev = at
	}
	return out
}

// innerOffset locates the position just before the wrapper's closing tag.
func innerOffset(markup string) int {
	trimmed := strings.TrimRight(markup, " \t\r\n")
	if strings.HasSuffix(trimmed, ">") {
		if idx := strings.LastIndex(trimmed, "</"); idx >= 0 {
			return idx
		}
	}
	return len(markup)
}

// Clone returns a deep copy of the node, its maps and its children.
func (n Node) Clone() Node {
	out := n
	out.Attributes = cloneMap(n.Attributes)
	out.Metadata = cloneMap(n.Metadata)
	out.Children = Clone(n.Children)
	if n.Boundaries != nil {
		out.Boundaries = append([]int(nil), n.Boundaries...)
	}
	return out
}

// Clone deep copies a list of nodes.
func Clone(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, node := range nodes {
		out[i] = node.Clone()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case map[string]string:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
