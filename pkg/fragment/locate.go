package fragment

import (
	"strings"

	"golang.org/x/net/html"
)

// span records where an element's tags sit in the source markup. closeStart
// is -1 when the end tag is implied or missing.
type span struct {
	name        string
	attrs       []html.Attribute
	openStart   int
	openEnd     int
	closeStart  int
	closeEnd    int
	selfClosing bool
}

func (s *span) explicitEnd() bool {
	return s.closeStart >= 0
}

// scan tokenizes markup and returns a span per start tag, in document order.
func scan(markup string) []*span {
	var spans, stack []*span
	z := html.NewTokenizer(strings.NewReader(markup))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return spans
		}
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			s := &span{
				name:        token.Data,
				attrs:       token.Attr,
				openStart:   start,
				openEnd:     offset,
				closeStart:  -1,
				closeEnd:    -1,
				selfClosing: tt == html.SelfClosingTagToken,
			}
			spans = append(spans, s)
			if _, void := voidElements[s.name]; void || s.selfClosing {
				continue
			}
			stack = append(stack, s)
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == tag {
					stack[i].closeStart, stack[i].closeEnd = start, offset
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// locate pairs target with its span. Elements the parser synthesised (an
// implied tbody, for instance) have no token and are skipped. The result is
// nil when target cannot be paired with confidence.
func locate(root, target *html.Node, spans []*span) *span {
	next := 0
	var found *span
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			if next < len(spans) && sameElement(child, spans[next]) {
				if child == target {
					found = spans[next]
					return false
				}
				next++
			} else if child == target {
				return false
			}
			if !walk(child) {
				return false
			}
		}
		return true
	}
	walk(root)
	return found
}

func sameElement(n *html.Node, s *span) bool {
	if !strings.EqualFold(n.Data, s.name) || len(n.Attr) != len(s.attrs) {
		return false
	}
	for i, attr := range n.Attr {
		if !strings.EqualFold(attr.Key, s.attrs[i].Key) || attr.Val != s.attrs[i].Val {
			return false
		}
	}
	return true
}

// startTag rebuilds an element's start tag from its current attributes,
// keeping the tag name as written in the source.
func startTag(markup string, s *span, el *html.Node) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(markup[s.openStart+1 : s.openStart+1+len(s.name)])
	for _, attr := range el.Attr {
		b.WriteByte(' ')
		if attr.Namespace != "" {
			b.WriteString(attr.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteByte('"')
	}
	if s.selfClosing {
		b.WriteString("/")
	}
	b.WriteByte('>')
	return b.String()
}
