package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/catalog"
	"github.com/goliatone/go-contentmodel/pkg/extract"
	"github.com/goliatone/go-contentmodel/pkg/hydrate"
	"github.com/goliatone/go-contentmodel/pkg/render"
	"github.com/goliatone/go-contentmodel/pkg/store"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithCatalog injects an already loaded model registry.
func WithCatalog(registry *catalog.Registry) Option {
	return func(o *Orchestrator) {
		o.catalog = registry
	}
}

// WithModelsFS loads model definitions from fsys when the orchestrator is
// built. Ignored when WithCatalog is also supplied.
func WithModelsFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.modelsFS = fsys
	}
}

// WithTypes injects the node type registry. Defaults to binding.DefaultTypes.
func WithTypes(types *binding.TypeRegistry) Option {
	return func(o *Orchestrator) {
		o.types = types
	}
}

// WithStore injects the entity store. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithRenderer injects the renderer used for front-end output.
func WithRenderer(renderer *render.Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = renderer
	}
}

// WithSanitizer sanitises front-end output with policy. Only used when the
// orchestrator builds its own renderer.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(o *Orchestrator) {
		o.sanitizer = policy
	}
}

// WithLogger sets the structured logger shared by every pipeline stage.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithValidation toggles schema validation of extracted fields on Save.
func WithValidation(enabled bool) Option {
	return func(o *Orchestrator) {
		o.validate = enabled
	}
}

// WithTransformer registers a Transformer run on every hydrated tree.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator coordinates the request cycle of a content model: hydrate a
// template from the store for editing or display, and extract an edited tree
// back into the store. Trees are rebuilt on every request; nothing is cached
// between an edit and the following save.
//
// Saves are not guarded against concurrent editors: the last write wins.
type Orchestrator struct {
	catalog     *catalog.Registry
	modelsFS    fs.FS
	types       *binding.TypeRegistry
	store       store.Store
	renderer    *render.Renderer
	sanitizer   *bluemonday.Policy
	logger      *slog.Logger
	validate    bool
	transformer Transformer

	initialiseErr error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{validate: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request identifies the model and entity a call operates on.
type Request struct {
	// Model is the content model slug.
	Model string
	// EntityID selects the stored values.
	EntityID string
}

// SaveResult reports what Save wrote to the store.
type SaveResult struct {
	Body      string
	BodyFound bool
	Fields    map[string]any
}

// Edit hydrates the model's template for editing. Binding annotations are
// kept so the tree can be saved back.
func (o *Orchestrator) Edit(ctx context.Context, req Request) ([]tree.Node, error) {
	return o.hydrate(ctx, req, false)
}

// EditDocument is Edit returning the serialized tree.
func (o *Orchestrator) EditDocument(ctx context.Context, req Request) (string, error) {
	nodes, err := o.Edit(ctx, req)
	if err != nil {
		return "", err
	}
	return tree.Serialize(nodes), nil
}

// Render hydrates the template with annotations stripped and returns the
// front-end markup.
func (o *Orchestrator) Render(ctx context.Context, req Request) (string, error) {
	nodes, err := o.hydrate(ctx, req, true)
	if err != nil {
		return "", err
	}
	out, err := o.renderer.Render(nodes)
	if err != nil {
		return "", fmt.Errorf("orchestrator: render: %w", err)
	}
	return out, nil
}

// Save extracts the primary body and named fields from an edited tree and
// writes them to the entity. When the tree has no primary body binding the
// stored body is left untouched.
func (o *Orchestrator) Save(ctx context.Context, req Request, edited []tree.Node) (SaveResult, error) {
	entry, entity, err := o.prepare(ctx, req)
	if err != nil {
		return SaveResult{}, err
	}

	extractor, err := extract.New(o.resolver(entry))
	if err != nil {
		return SaveResult{}, fmt.Errorf("orchestrator: %w", err)
	}

	body, found, err := extractor.PrimaryBody(edited)
	if err != nil {
		return SaveResult{}, fmt.Errorf("orchestrator: %w", err)
	}
	fields, err := extractor.Fields(edited)
	if err != nil {
		return SaveResult{}, fmt.Errorf("orchestrator: %w", err)
	}
	if o.validate {
		if err := catalog.ValidateFields(entry.Model, fields); err != nil {
			return SaveResult{}, fmt.Errorf("orchestrator: %w", err)
		}
	}

	if found {
		entity.SetPrimaryBody(body)
	} else {
		o.logger.Debug("edited tree has no primary body binding", "model", req.Model, "entity", req.EntityID)
	}
	for _, key := range tree.SortedKeys(fields) {
		entity.SetField(key, fields[key])
	}

	o.logger.Info("entity saved", "model", req.Model, "entity", req.EntityID, "fields", len(fields), "body", found)
	return SaveResult{Body: body, BodyFound: found, Fields: fields}, nil
}

// SaveDocument parses a serialized tree and saves it.
func (o *Orchestrator) SaveDocument(ctx context.Context, req Request, doc string) (SaveResult, error) {
	nodes, err := tree.Parse(doc)
	if err != nil {
		return SaveResult{}, fmt.Errorf("orchestrator: %w", err)
	}
	return o.Save(ctx, req, nodes)
}

// Catalog exposes the model registry.
func (o *Orchestrator) Catalog() *catalog.Registry {
	return o.catalog
}

// Store exposes the entity store.
func (o *Orchestrator) Store() store.Store {
	return o.store
}

func (o *Orchestrator) hydrate(ctx context.Context, req Request, strip bool) ([]tree.Node, error) {
	entry, entity, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	hydrator, err := hydrate.New(o.resolver(entry), hydrate.WithRenderer(o.renderer))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	nodes, err := hydrator.Hydrate(entry.Model.Template, entity, strip)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: hydrate %q: %w", req.Model, err)
	}

	if o.transformer != nil {
		if nodes, err = o.transformer.Transform(ctx, entry.Model, nodes); err != nil {
			return nil, fmt.Errorf("orchestrator: transform tree: %w", err)
		}
	}
	return nodes, nil
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (catalog.Entry, store.Entity, error) {
	if ctx == nil {
		return catalog.Entry{}, nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return catalog.Entry{}, nil, err
	}
	if err := o.initialiseErr; err != nil {
		return catalog.Entry{}, nil, err
	}
	if req.Model == "" {
		return catalog.Entry{}, nil, errors.New("orchestrator: model slug is required")
	}
	if req.EntityID == "" {
		return catalog.Entry{}, nil, errors.New("orchestrator: entity id is required")
	}

	entry, err := o.catalog.Lookup(req.Model)
	if err != nil {
		return catalog.Entry{}, nil, fmt.Errorf("orchestrator: %w", err)
	}
	entity, err := o.store.Entity(ctx, req.EntityID)
	if err != nil {
		return catalog.Entry{}, nil, fmt.Errorf("orchestrator: %w", err)
	}
	return entry, entity, nil
}

func (o *Orchestrator) resolver(entry catalog.Entry) *binding.Resolver {
	return binding.NewResolver(o.types, binding.WithFields(entry.Fields), binding.WithLogger(o.logger))
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.types == nil {
		o.types = binding.DefaultTypes()
	}
	if o.store == nil {
		o.store = store.NewMemoryStore()
	}
	if o.catalog == nil {
		registry, err := catalog.LoadFS(o.modelsFS, o.types)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load models: %w", err)
			registry = catalog.NewRegistry()
		}
		o.catalog = registry
	}
	if o.renderer == nil {
		options := []render.Option{render.WithLogger(o.logger)}
		if o.sanitizer != nil {
			options = append(options, render.WithSanitizer(o.sanitizer))
		}
		renderer, err := render.New(o.types, options...)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.renderer = renderer
	}
}
