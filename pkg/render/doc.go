// Package render flattens populated document trees into the plain markup
// served to readers. Types registered with a render template are expanded
// through pongo2 with "type", "attributes" and the rendered inner "content"
// in scope; everything else renders as its own markup with its children
// spliced in.
package render
