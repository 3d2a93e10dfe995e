// Package binding resolves the storage bindings annotated on template nodes.
//
// A binding maps one of a node's attributes to a storage key. The key
// PrimaryBody denotes the document's main content; any other key is a named
// field. On container types the "content" attribute stands for the node's
// children, elsewhere it is an ordinary attribute located in the node's markup
// through the TypeRegistry.
package binding
