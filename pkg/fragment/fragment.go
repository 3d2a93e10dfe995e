package fragment

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Source tells where inside a fragment a value lives.
type Source string

const (
	// SourceAttribute reads/writes a named attribute of the matched element.
	SourceAttribute Source = "attribute"
	// SourceContent reads/writes the matched element's inner markup.
	SourceContent Source = "content"
)

// Descriptor addresses a value inside a markup fragment. Selector accepts a
// CSS selector group; alternatives separated by commas are unioned. An empty
// selector targets the fragment's outer element.
type Descriptor struct {
	Source    Source `json:"source" yaml:"source"`
	Selector  string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
}

// Validate checks that the descriptor is complete and its selector compiles.
func (d Descriptor) Validate() error {
	switch d.Source {
	case SourceContent:
	case SourceAttribute:
		if strings.TrimSpace(d.Attribute) == "" {
			return fmt.Errorf("fragment: attribute descriptor requires an attribute name")
		}
	default:
		return fmt.Errorf("fragment: unknown source %q", d.Source)
	}
	_, err := compile(d.Selector)
	return err
}

// multiValueAttributes receive appended values on Replace instead of being
// overwritten.
var multiValueAttributes = map[string]string{
	"class": " ",
	"style": ";",
}

var selectorCache sync.Map

func compile(selector string) (cascadia.Matcher, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, nil
	}
	if cached, ok := selectorCache.Load(selector); ok {
		return cached.(cascadia.Matcher), nil
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("fragment: invalid selector %q: %w", selector, err)
	}
	selectorCache.Store(selector, group)
	return group, nil
}

// Extract reads the value addressed by d from markup. The boolean is false
// when the selector matches nothing or the attribute is absent.
func Extract(markup string, d Descriptor) (string, bool, error) {
	root, err := parse(markup)
	if err != nil {
		return "", false, err
	}
	target, err := match(root, d.Selector)
	if err != nil || target == nil {
		return "", false, err
	}

	switch d.Source {
	case SourceAttribute:
		for _, attr := range target.Attr {
			if strings.EqualFold(attr.Key, d.Attribute) {
				return attr.Val, true, nil
			}
		}
		return "", false, nil
	case SourceContent:
		if s := locate(root, target, scan(markup)); s != nil && s.explicitEnd() {
			return markup[s.openEnd:s.closeStart], true, nil
		}
		inner, err := renderChildren(target)
		if err != nil {
			return "", false, err
		}
		return inner, true, nil
	default:
		return "", false, fmt.Errorf("fragment: unknown source %q", d.Source)
	}
}

// Replace writes value at the location addressed by d and returns the new
// markup. Unmatched selectors leave markup unchanged. class and style values
// are appended to the existing ones; content targets are replaced wholesale
// with value, which must itself be well-nested markup. Only the addressed
// start tag or inner range is rewritten; the rest of markup, and value, are
// kept byte for byte.
func Replace(markup string, d Descriptor, value string) (string, error) {
	root, err := parse(markup)
	if err != nil {
		return "", err
	}
	target, err := match(root, d.Selector)
	if err != nil {
		return "", err
	}
	if target == nil {
		return markup, nil
	}
	s := locate(root, target, scan(markup))

	switch d.Source {
	case SourceAttribute:
		setAttribute(target, strings.ToLower(d.Attribute), value)
		if s != nil {
			return markup[:s.openStart] + startTag(markup, s, target) + markup[s.openEnd:], nil
		}
	case SourceContent:
		if err := checkBalanced(value); err != nil {
			return "", err
		}
		if _, void := voidElements[target.Data]; void {
			return markup, nil
		}
		if s != nil && s.explicitEnd() {
			return markup[:s.openEnd] + value + markup[s.closeStart:], nil
		}
		if err := replaceChildren(target, value); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("fragment: unknown source %q", d.Source)
	}

	// The target's tags could not be located in the source; fall back to
	// re-rendering the parsed fragment.
	return renderChildren(root)
}

func replaceChildren(target *html.Node, value string) error {
	children, err := html.ParseFragment(strings.NewReader(value), target)
	if err != nil {
		return &MarkupParseError{Markup: value, Reason: err.Error()}
	}
	for child := target.FirstChild; child != nil; {
		next := child.NextSibling
		target.RemoveChild(child)
		child = next
	}
	for _, child := range children {
		target.AppendChild(child)
	}
	return nil
}

func setAttribute(el *html.Node, key, value string) {
	for i, attr := range el.Attr {
		if !strings.EqualFold(attr.Key, key) {
			continue
		}
		if sep, ok := multiValueAttributes[key]; ok {
			el.Attr[i].Val = appendValue(attr.Val, value, sep)
			return
		}
		el.Attr[i].Val = value
		return
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: value})
}

func appendValue(existing, value, sep string) string {
	existing = strings.TrimSpace(existing)
	value = strings.TrimSpace(value)
	switch {
	case existing == "":
		return value
	case value == "":
		return existing
	case sep == ";":
		return strings.TrimSuffix(existing, ";") + "; " + value
	default:
		return existing + sep + value
	}
}

// parse turns a fragment into a detached tree under a synthetic root.
func parse(markup string) (*html.Node, error) {
	if err := checkBalanced(markup); err != nil {
		return nil, err
	}
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, &MarkupParseError{Markup: markup, Reason: err.Error()}
	}
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, node := range nodes {
		root.AppendChild(node)
	}
	return root, nil
}

// match returns the last element matching selector, or the first top-level
// element when selector is empty.
func match(root *html.Node, selector string) (*html.Node, error) {
	matcher, err := compile(selector)
	if err != nil {
		return nil, err
	}
	if matcher == nil {
		for child := root.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				return child, nil
			}
		}
		return nil, nil
	}
	matches := cascadia.QueryAll(root, matcher)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[len(matches)-1], nil
}

func renderChildren(node *html.Node) (string, error) {
	var buf bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", fmt.Errorf("fragment: render: %w", err)
		}
	}
	return buf.String(), nil
}
