package fragment

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrMarkupParse is the sentinel wrapped by every MarkupParseError.
var ErrMarkupParse = errors.New("fragment: malformed markup")

// MarkupParseError reports a fragment that cannot be read as a single,
// well-nested piece of markup.
type MarkupParseError struct {
	Markup string
	Offset int
	Reason string
}

func (e *MarkupParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("fragment: malformed markup at offset %d: %s", e.Offset, e.Reason)
	}
	return "fragment: malformed markup: " + e.Reason
}

// Unwrap lets callers match with errors.Is(err, ErrMarkupParse).
func (e *MarkupParseError) Unwrap() error {
	return ErrMarkupParse
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// Elements whose end tag may be implied by the parent closing.
var optionalEnd = map[string]struct{}{
	"p": {}, "li": {}, "dt": {}, "dd": {}, "option": {}, "optgroup": {}, "tr": {},
	"td": {}, "th": {}, "thead": {}, "tbody": {}, "tfoot": {}, "colgroup": {}, "rp": {}, "rt": {},
}

// checkBalanced rejects fragments with stray or unclosed tags. The HTML5
// parser would silently repair them, which hides broken templates.
func checkBalanced(markup string) error {
	var stack []string
	z := html.NewTokenizer(strings.NewReader(markup))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return &MarkupParseError{Markup: markup, Offset: offset, Reason: err.Error()}
			}
			break
		}
		raw := len(z.Raw())
		position := offset
		offset += raw

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, ok := voidElements[tag]; ok {
				continue
			}
			stack = append(stack, tag)
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, ok := voidElements[tag]; ok {
				continue
			}
			idx := len(stack) - 1
			for idx >= 0 && stack[idx] != tag {
				if _, ok := optionalEnd[stack[idx]]; !ok {
					break
				}
				idx--
			}
			if idx < 0 || stack[idx] != tag {
				return &MarkupParseError{
					Markup: markup,
					Offset: position,
					Reason: fmt.Sprintf("unexpected closing tag </%s>", tag),
				}
			}
			stack = stack[:idx]
		}
	}

	for _, tag := range stack {
		if _, ok := optionalEnd[tag]; !ok {
			return &MarkupParseError{Markup: markup, Offset: offset, Reason: fmt.Sprintf("unclosed <%s>", tag)}
		}
	}
	return nil
}
