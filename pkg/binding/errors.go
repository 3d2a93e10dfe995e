package binding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedBinding marks a binding whose attribute the type registry
	// does not describe. Callers skip such nodes.
	ErrUnresolvedBinding = errors.New("binding: unresolved binding")
	// ErrAmbiguousPrimaryBody is returned when a template binds more than one
	// node to PrimaryBody.
	ErrAmbiguousPrimaryBody = errors.New("binding: ambiguous primary body")
)

// UnresolvedBindingError describes a binding that cannot be located in its
// node's markup.
type UnresolvedBindingError struct {
	Type      string
	Attribute string
	Key       string
}

func (e *UnresolvedBindingError) Error() string {
	return fmt.Sprintf("binding: type %q has no descriptor for attribute %q (key %q)", e.Type, e.Attribute, e.Key)
}

// Unwrap lets callers match with errors.Is(err, ErrUnresolvedBinding).
func (e *UnresolvedBindingError) Unwrap() error {
	return ErrUnresolvedBinding
}

// AmbiguousPrimaryBodyError reports how many nodes claim the primary body.
type AmbiguousPrimaryBodyError struct {
	Count int
	Types []string
}

func (e *AmbiguousPrimaryBodyError) Error() string {
	return fmt.Sprintf("binding: %d nodes bound to %s (types %v)", e.Count, PrimaryBody, e.Types)
}

// Unwrap lets callers match with errors.Is(err, ErrAmbiguousPrimaryBody).
func (e *AmbiguousPrimaryBodyError) Unwrap() error {
	return ErrAmbiguousPrimaryBody
}
