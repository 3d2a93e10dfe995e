// Package store defines the value source/sink boundary used by hydration and
// extraction, plus an in-memory Store. Persistent stores live outside this
// module; they only need to satisfy Store and Entity.
//
// There is no concurrent-edit safety: two editors saving the same entity race
// and the last write wins.
package store
