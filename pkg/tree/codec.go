package tree

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/net/html"
)

// DelimiterPrefix namespaces block delimiters inside HTML comments:
//
//	<!-- cm:group {"className":"hero"} -->...<!-- /cm:group -->
//	<!-- cm:spacer /-->
const DelimiterPrefix = "cm:"

// ErrParse is returned (wrapped) for malformed serialized trees.
var ErrParse = errors.New("tree: malformed document")

var (
	delimiterPattern = regexp.MustCompile(`(?s)^\s+(/)?cm:([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)?)\s+(?:(\{.*\})\s+)?(/)?$`)
	typePattern      = regexp.MustCompile(`^[a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)?$`)
)

type frame struct {
	node Node
	buf  strings.Builder
}

// Parse reads a serialized document into nodes. Text outside any block is kept
// as freeform nodes so canonical input serializes back byte for byte.
func Parse(doc string) ([]Node, error) {
	var (
		out      = []Node{}
		stack    []*frame
		freeform strings.Builder
	)

	flush := func() {
		if freeform.Len() == 0 {
			return
		}
		out = append(out, Freeform(freeform.String()))
		freeform.Reset()
	}
	appendNode := func(node Node) {
		if len(stack) == 0 {
			flush()
			out = append(out, node)
			return
		}
		top := stack[len(stack)-1]
		top.node.Children = append(top.node.Children, node)
		top.node.Boundaries = append(top.node.Boundaries, top.buf.Len())
	}
	writeText := func(raw string) {
		if len(stack) == 0 {
			freeform.WriteString(raw)
			return
		}
		stack[len(stack)-1].buf.WriteString(raw)
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			break
		}
		raw := string(z.Raw())
		position := offset
		offset += len(raw)

		if tt != html.CommentToken {
			writeText(raw)
			continue
		}
		match := delimiterPattern.FindStringSubmatch(z.Token().Data)
		if match == nil {
			writeText(raw)
			continue
		}

		closing, name, rawAttrs, void := match[1] == "/", match[2], match[3], match[4] == "/"
		switch {
		case closing:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected closer for %q at offset %d", ErrParse, name, position)
			}
			top := stack[len(stack)-1]
			if top.node.Type != name {
				return nil, fmt.Errorf("%w: closer for %q at offset %d does not match open %q", ErrParse, name, position, top.node.Type)
			}
			stack = stack[:len(stack)-1]
			node := top.node
			node.Markup = top.buf.String()
			appendNode(node)
		default:
			node := Node{Type: name}
			if err := decodeAttributes(rawAttrs, &node); err != nil {
				return nil, fmt.Errorf("%w: block %q at offset %d: %v", ErrParse, name, position, err)
			}
			if void {
				appendNode(node)
				continue
			}
			if len(stack) == 0 {
				flush()
			}
			stack = append(stack, &frame{node: node})
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: block %q is never closed", ErrParse, stack[len(stack)-1].node.Type)
	}
	flush()
	return out, nil
}

// MustParse panics when doc cannot be parsed. Useful for fixtures.
func MustParse(doc string) []Node {
	nodes, err := Parse(doc)
	if err != nil {
		panic(err)
	}
	return nodes
}

// Serialize writes nodes back into the delimited block format.
func Serialize(nodes []Node) string {
	var b strings.Builder
	for _, node := range nodes {
		writeNode(&b, node)
	}
	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	if node.IsFreeform() {
		b.WriteString(node.Markup)
		for _, child := range node.Children {
			writeNode(b, child)
		}
		return
	}

	b.WriteString("<!-- ")
	b.WriteString(DelimiterPrefix)
	b.WriteString(node.Type)
	if attrs := encodeAttributes(node); attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	if node.Markup == "" && len(node.Children) == 0 {
		b.WriteString(" /-->")
		return
	}
	b.WriteString(" -->")
	Interleave(node, func(markup string) { b.WriteString(markup) }, func(child Node) { writeNode(b, child) })
	b.WriteString("<!-- /")
	b.WriteString(DelimiterPrefix)
	b.WriteString(node.Type)
	b.WriteString(" -->")
}

// Interleave walks a node's own markup, calling text for each markup span and
// child at each declared inner boundary.
func Interleave(node Node, text func(string), child func(Node)) {
	pos := 0
	for i, at := range node.offsets() {
		if at > pos {
			text(node.Markup[pos:at])
		}
		pos = at
		child(node.Children[i])
	}
	if pos < len(node.Markup) {
		text(node.Markup[pos:])
	}
}

// ValidType reports whether name can be used as a block type.
func ValidType(name string) bool {
	return typePattern.MatchString(name)
}

func encodeAttributes(node Node) string {
	if len(node.Attributes) == 0 && len(node.Metadata) == 0 {
		return ""
	}
	attrs := make(map[string]any, len(node.Attributes)+1)
	for key, value := range node.Attributes {
		attrs[key] = value
	}
	if len(node.Metadata) > 0 {
		attrs[MetadataKey] = node.Metadata
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return ""
	}
	// "--" would terminate the surrounding comment.
	return strings.ReplaceAll(string(data), "--", `\u002d\u002d`)
}

func decodeAttributes(raw string, node *Node) error {
	if raw == "" {
		return nil
	}
	var attrs map[string]any
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return err
	}
	if meta, ok := attrs[MetadataKey].(map[string]any); ok {
		node.Metadata = meta
		delete(attrs, MetadataKey)
	}
	if len(attrs) > 0 {
		node.Attributes = attrs
	}
	return nil
}
