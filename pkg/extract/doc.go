// Package extract is the inverse of hydrate: it walks an edited document tree
// and returns the primary body markup plus the values of every named field,
// ready to be written to a store.Sink.
package extract
