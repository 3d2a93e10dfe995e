// Package model defines content model definitions: a template tree whose nodes
// carry binding annotations, and the named fields those bindings refer to.
// Field types are limited to the scalars a flat key/value store can hold
// (string, integer, number, boolean); values read from storage are coerced to
// the declared type by the binding package.
package model
