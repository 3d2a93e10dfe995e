package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-contentmodel/pkg/store"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// LoadTree reads a serialized document fixture and parses it. Testing helpers
// fail the test on error to keep table setup concise.
func LoadTree(t *testing.T, path string) []tree.Node {
	t.Helper()

	nodes, err := LoadTreeFromPath(path)
	if err != nil {
		t.Fatalf("load tree: %v", err)
	}
	return nodes
}

// LoadTreeFromPath returns parsed nodes without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadTreeFromPath(path string) ([]tree.Node, error) {
	if path == "" {
		return nil, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read document: %w", err)
	}
	nodes, err := tree.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse document: %w", err)
	}
	return nodes, nil
}

// NewEntity creates an entity in s seeded with body and fields.
func NewEntity(t *testing.T, s store.Store, body string, fields map[string]any) (string, store.Entity) {
	t.Helper()

	ctx := context.Background()
	id, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	entity, err := s.Entity(ctx, id)
	if err != nil {
		t.Fatalf("load entity: %v", err)
	}
	if body != "" {
		entity.SetPrimaryBody(body)
	}
	for _, key := range tree.SortedKeys(fields) {
		entity.SetField(key, fields[key])
	}
	return id, entity
}

// DiffTrees returns a go-cmp diff between two trees, treating nil and empty
// maps/slices as equal.
func DiffTrees(want, got []tree.Node) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// MustReadGoldenString reads a golden file and returns its content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
