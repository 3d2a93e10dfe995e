package render

import (
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
)

// Option customises a Renderer.
type Option func(*Renderer)

// WithSanitizer runs every rendered document through policy. Pass nil to
// disable sanitising (the default).
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		r.policy = policy
	}
}

// WithTemplateFilters registers pongo2 filters available to type templates.
// pongo2 filters are process-wide, so New refuses names pongo2 already
// provides (ErrFilterReserved) and names owned by another Renderer that has
// not been closed (ErrFilterInUse).
func WithTemplateFilters(filters map[string]Filter) Option {
	return func(r *Renderer) {
		for name, fn := range filters {
			if r.filters == nil {
				r.filters = make(map[string]Filter, len(filters))
			}
			r.filters[name] = fn
		}
	}
}

// WithLogger sets the logger used for template diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
