// Package tree defines the document tree shared by templates and populated
// documents, the delimited block format used to serialize it, and Walk, the
// generic traversal every hydration and extraction pass is built on.
//
// Serialized documents interleave plain markup with block delimiters kept in
// HTML comments. A block's own markup is stored on the node together with the
// offsets at which its children are spliced back, so a parsed document can be
// written back unchanged.
package tree
