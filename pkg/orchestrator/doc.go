// Package orchestrator wires the catalog → store → hydrate/extract → render
// pipeline behind a single entry point. Each call builds its trees afresh from
// the registered template and the entity's current values; no tree outlives
// the request that produced it.
package orchestrator
