package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/fragment"
	"github.com/goliatone/go-contentmodel/pkg/model"
	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// LoadFS walks fsys and registers every model defined in JSON/YAML files.
// Files may also declare node types, which are added to types before any
// template is validated. When fsys is nil the returned registry is empty.
func LoadFS(fsys fs.FS, types *binding.TypeRegistry) (*Registry, error) {
	reg := NewRegistry()
	if fsys == nil {
		return reg, nil
	}

	var docs []documentFile
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		doc.source = path
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		for _, name := range tree.SortedKeys(doc.Types) {
			if types == nil {
				return nil, fmt.Errorf("catalog: file %s declares types but no type registry was supplied", doc.source)
			}
			desc := doc.Types[name].descriptor(name)
			if err := types.Register(desc); err != nil {
				return nil, fmt.Errorf("catalog: file %s: %w", doc.source, err)
			}
		}
	}

	for _, doc := range docs {
		for _, slug := range tree.SortedKeys(doc.Models) {
			m, err := doc.Models[slug].model(slug, doc.source)
			if err != nil {
				return nil, err
			}
			if err := reg.Register(m); err != nil {
				return nil, fmt.Errorf("%w (file %s)", err, doc.source)
			}
		}
	}
	return reg, nil
}

type documentFile struct {
	Types  map[string]typeFile  `json:"types" yaml:"types"`
	Models map[string]modelFile `json:"models" yaml:"models"`
	source string
}

type typeFile struct {
	Container  bool                           `json:"container" yaml:"container"`
	Attributes map[string]fragment.Descriptor `json:"attributes" yaml:"attributes"`
	Render     string                         `json:"render" yaml:"render"`
}

func (t typeFile) descriptor(name string) binding.TypeDescriptor {
	return binding.TypeDescriptor{
		Name:       strings.TrimSpace(name),
		Container:  t.Container,
		Attributes: t.Attributes,
		Render:     t.Render,
	}
}

type modelFile struct {
	Label       string        `json:"label" yaml:"label"`
	Description string        `json:"description" yaml:"description"`
	Template    string        `json:"template" yaml:"template"`
	Fields      []model.Field `json:"fields" yaml:"fields"`
}

func (f modelFile) model(slug, source string) (model.Model, error) {
	id := strings.TrimSpace(slug)
	if id == "" {
		return model.Model{}, fmt.Errorf("catalog: file %s defines a model with an empty slug", source)
	}
	template, err := tree.Parse(f.Template)
	if err != nil {
		return model.Model{}, fmt.Errorf("catalog: model %q (file %s) template: %w", id, source, err)
	}
	return model.Model{
		Slug:        id,
		Label:       f.Label,
		Description: f.Description,
		Template:    template,
		Fields:      f.Fields,
	}, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
