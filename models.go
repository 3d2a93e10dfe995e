package contentmodel

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/catalog"
)

//go:embed models/*.yaml
var embeddedModels embed.FS

// BuiltinModelsFS exposes the starter model definitions shipped with the
// module (a blog post and a landing page) so hosts can load or extend them
// without copying files around.
//
//	orch := contentmodel.NewOrchestrator(
//	  orchestrator.WithModelsFS(contentmodel.BuiltinModelsFS()),
//	)
func BuiltinModelsFS() fs.FS {
	sub, err := fs.Sub(embeddedModels, "models")
	if err != nil {
		return embeddedModels
	}
	return sub
}

// LoadModels reads model definitions from fsys into a new catalog. Types
// declared in the files are added to types; a nil registry starts from the
// built-in node types.
func LoadModels(fsys fs.FS, types *binding.TypeRegistry) (*catalog.Registry, *binding.TypeRegistry, error) {
	if types == nil {
		types = binding.DefaultTypes()
	}
	reg, err := catalog.LoadFS(fsys, types)
	if err != nil {
		return nil, nil, err
	}
	return reg, types, nil
}
