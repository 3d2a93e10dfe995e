package contentmodel

import (
	"context"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/orchestrator"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Node aliases tree.Node so callers can work with documents from the
// top-level package.
type Node = tree.Node

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// SaveResult aliases orchestrator.SaveResult.
type SaveResult = orchestrator.SaveResult

// PrimaryBody is the reserved storage key for an entity's main markup.
const PrimaryBody = binding.PrimaryBody

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// EditDocument hydrates a model for editing and returns the serialized tree.
// It is the simplest entry point for hosts feeding a block editor.
func EditDocument(ctx context.Context, model, entityID string, options ...orchestrator.Option) (string, error) {
	return orchestrator.New(options...).EditDocument(ctx, Request{Model: model, EntityID: entityID})
}

// SaveDocument extracts an edited serialized tree back into the entity.
func SaveDocument(ctx context.Context, model, entityID, doc string, options ...orchestrator.Option) (SaveResult, error) {
	return orchestrator.New(options...).SaveDocument(ctx, Request{Model: model, EntityID: entityID}, doc)
}

// RenderHTML hydrates a model with annotations stripped and returns the
// front-end markup.
func RenderHTML(ctx context.Context, model, entityID string, options ...orchestrator.Option) (string, error) {
	return orchestrator.New(options...).Render(ctx, Request{Model: model, EntityID: entityID})
}
