package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"

	contentmodel "github.com/goliatone/go-contentmodel"
	"github.com/goliatone/go-contentmodel/internal/prompt"
	"github.com/goliatone/go-contentmodel/pkg/orchestrator"
	"github.com/goliatone/go-contentmodel/pkg/render"
	"github.com/goliatone/go-contentmodel/pkg/store"
)

type assignments map[string]string

func (a assignments) String() string {
	parts := make([]string, 0, len(a))
	for k, v := range a {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (a assignments) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	a[strings.TrimSpace(key)] = value
	return nil
}

func main() {
	models := flag.String("models", "", "directory with model definitions (builtin models if empty)")
	slug := flag.String("model", "post", "content model to hydrate")
	body := flag.String("body", "", "file holding the primary body markup")
	edited := flag.String("edited", "", "edited document to save back before output")
	interactive := flag.Bool("interactive", false, "prompt for field values and body")
	renderHTML := flag.Bool("render", false, "print front-end markup instead of the editable document")
	sanitize := flag.Bool("sanitize", true, "sanitize rendered markup")
	output := flag.String("output", "", "output file (stdout if empty)")
	verbose := flag.Bool("v", false, "verbose logging")
	fields := assignments{}
	flag.Var(fields, "set", "field value as key=value (repeatable)")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	entities := store.NewMemoryStore()

	var fsys fs.FS = contentmodel.BuiltinModelsFS()
	if *models != "" {
		fsys = os.DirFS(*models)
	}
	options := []orchestrator.Option{
		orchestrator.WithModelsFS(fsys),
		orchestrator.WithStore(entities),
		orchestrator.WithLogger(logger),
	}
	if *sanitize {
		options = append(options, orchestrator.WithSanitizer(render.ContentPolicy()))
	}
	orch := contentmodel.NewOrchestrator(options...)

	id, err := entities.Create(ctx)
	if err != nil {
		log.Fatalf("Failed to create entity: %v", err)
	}
	entity, err := entities.Entity(ctx, id)
	if err != nil {
		log.Fatalf("Failed to load entity: %v", err)
	}
	if *body != "" {
		data, err := os.ReadFile(*body)
		if err != nil {
			log.Fatalf("Failed to read body: %v", err)
		}
		entity.SetPrimaryBody(string(data))
	}
	for key, value := range fields {
		entity.SetField(key, value)
	}

	req := orchestrator.Request{Model: *slug, EntityID: id}
	if *interactive {
		entry, err := orch.Catalog().Lookup(*slug)
		if err != nil {
			log.Fatalf("Unknown model: %v", err)
		}
		driver := prompt.Survey(os.Stderr)
		if err := prompt.CollectFields(ctx, driver, entry.Model, entity, entity); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				os.Exit(130)
			}
			log.Fatalf("Failed to collect fields: %v", err)
		}
		if err := prompt.CollectBody(ctx, driver, entity, entity); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				os.Exit(130)
			}
			log.Fatalf("Failed to collect body: %v", err)
		}
	}

	if *edited != "" {
		data, err := os.ReadFile(*edited)
		if err != nil {
			log.Fatalf("Failed to read edited document: %v", err)
		}
		result, err := orch.SaveDocument(ctx, req, string(data))
		if err != nil {
			log.Fatalf("Failed to save document: %v", err)
		}
		logger.Info("saved edited document", "fields", len(result.Fields), "body", result.BodyFound)
	}

	var out string
	if *renderHTML {
		out, err = orch.Render(ctx, req)
	} else {
		out, err = orch.EditDocument(ctx, req)
	}
	if err != nil {
		log.Fatalf("Failed to build output: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
		return
	}
	fmt.Println(out)
}
