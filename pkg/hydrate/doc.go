// Package hydrate fills a content model template with stored values,
// producing the tree an author edits (metadata kept) or the tree served to
// readers (metadata stripped, values rendered).
package hydrate
