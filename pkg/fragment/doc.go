// Package fragment reads and rewrites values inside a single node's markup.
// A Descriptor names the element (CSS selector group, last match wins) and
// whether the value is one of its attributes or its inner markup.
//
// Fragments must be well nested; anything else fails with a
// *MarkupParseError. Unmatched selectors are not errors: Extract reports the
// value as absent and Replace returns the markup unchanged.
package fragment
