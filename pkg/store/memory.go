package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps entities in process memory. It is safe for concurrent
// use but offers no conflict detection between editors.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]*memoryEntity
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: make(map[string]*memoryEntity)}
}

// Create allocates a new entity with a random id.
func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.entities[id] = &memoryEntity{fields: make(map[string]any)}
	s.mu.Unlock()
	return id, nil
}

// Entity returns the entity stored under id.
func (s *MemoryStore) Entity(ctx context.Context, id string) (Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return entity, nil
}

type memoryEntity struct {
	mu     sync.RWMutex
	body   string
	fields map[string]any
}

func (e *memoryEntity) PrimaryBody() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.body
}

func (e *memoryEntity) Field(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	value, ok := e.fields[key]
	if !ok {
		return "", false
	}
	return Format(value), true
}

func (e *memoryEntity) SetPrimaryBody(markup string) {
	e.mu.Lock()
	e.body = markup
	e.mu.Unlock()
}

func (e *memoryEntity) SetField(key string, value any) {
	e.mu.Lock()
	e.fields[key] = value
	e.mu.Unlock()
}

// MapSource is a plain map-backed Source and Sink, handy in tests and for
// callers that already hold the values.
type MapSource struct {
	Body   string
	Fields map[string]string
}

// PrimaryBody implements Source.
func (m *MapSource) PrimaryBody() string {
	return m.Body
}

// Field implements Source.
func (m *MapSource) Field(key string) (string, bool) {
	value, ok := m.Fields[key]
	return value, ok
}

// SetPrimaryBody implements Sink.
func (m *MapSource) SetPrimaryBody(markup string) {
	m.Body = markup
}

// SetField implements Sink.
func (m *MapSource) SetField(key string, value any) {
	if m.Fields == nil {
		m.Fields = make(map[string]string)
	}
	m.Fields[key] = Format(value)
}

// Format converts a native scalar to the string form handed back by Field.
func Format(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
