package binding

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-contentmodel/pkg/model"
)

// FieldRegistry indexes field descriptors by slug so stored values can be
// coerced to their declared types.
type FieldRegistry struct {
	mu     sync.RWMutex
	fields map[string]model.Field
	order  []string
}

// NewFieldRegistry builds a registry from the given descriptors.
func NewFieldRegistry(fields ...model.Field) (*FieldRegistry, error) {
	reg := &FieldRegistry{fields: make(map[string]model.Field, len(fields))}
	for _, field := range fields {
		if err := reg.Register(field); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a field descriptor.
func (r *FieldRegistry) Register(field model.Field) error {
	slug := strings.TrimSpace(field.Slug)
	if slug == "" {
		return fmt.Errorf("binding: field slug is required")
	}
	if slug == PrimaryBody {
		return fmt.Errorf("binding: field slug %q is reserved", slug)
	}
	if !field.Type.Valid() {
		return fmt.Errorf("binding: field %q has unsupported type %q", slug, field.Type)
	}
	field.Slug = slug
	field.Type = field.Type.Normalize()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fields[slug]; exists {
		return fmt.Errorf("binding: field %q already registered", slug)
	}
	r.fields[slug] = field
	r.order = append(r.order, slug)
	return nil
}

// Lookup returns the descriptor for slug.
func (r *FieldRegistry) Lookup(slug string) (model.Field, bool) {
	if r == nil {
		return model.Field{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	field, ok := r.fields[slug]
	return field, ok
}

// List returns the descriptors in registration order.
func (r *FieldRegistry) List() []model.Field {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Field, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.fields[slug])
	}
	return out
}

// Coerce casts raw to the declared type of the field bound to key. Unknown
// keys and string fields pass through unchanged.
func (r *FieldRegistry) Coerce(key, raw string) (any, error) {
	field, ok := r.Lookup(key)
	if !ok {
		return raw, nil
	}
	return Coerce(raw, field.Type)
}

// Coerce casts a stored string to t.
func Coerce(raw string, t model.FieldType) (any, error) {
	value := strings.TrimSpace(raw)
	switch t.Normalize() {
	case model.FieldTypeInteger:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			// Accept integral floats such as "3.0" written by JSON encoders.
			f, ferr := strconv.ParseFloat(value, 64)
			if ferr != nil || f != float64(int64(f)) {
				return nil, fmt.Errorf("binding: %q is not an integer", raw)
			}
			n = int64(f)
		}
		return n, nil
	case model.FieldTypeNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("binding: %q is not a number", raw)
		}
		return f, nil
	case model.FieldTypeBoolean:
		switch strings.ToLower(value) {
		case "", "0", "false", "no", "off":
			return false, nil
		case "1", "true", "yes", "on":
			return true, nil
		default:
			return nil, fmt.Errorf("binding: %q is not a boolean", raw)
		}
	default:
		return raw, nil
	}
}
