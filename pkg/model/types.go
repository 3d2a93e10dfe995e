package model

import (
	"strings"

	"github.com/goliatone/go-contentmodel/pkg/tree"
)

// FieldType is the scalar type a named field is stored as.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
)

// Valid reports whether t is one of the supported field types. The empty
// type is accepted and treated as string.
func (t FieldType) Valid() bool {
	switch t {
	case "", FieldTypeString, FieldTypeInteger, FieldTypeNumber, FieldTypeBoolean:
		return true
	default:
		return false
	}
}

// Normalize maps the empty type to FieldTypeString.
func (t FieldType) Normalize() FieldType {
	if t == "" {
		return FieldTypeString
	}
	return FieldType(strings.ToLower(string(t)))
}

// Field declares a named storage slot exposed by a content model.
type Field struct {
	Slug        string    `json:"slug" yaml:"slug"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type        FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Visible     bool      `json:"visible" yaml:"visible"`
}

// Model is a content model definition: the authored template plus the named
// fields its bindings refer to. Templates are treated as immutable once the
// model is registered.
type Model struct {
	Slug        string      `json:"slug"`
	Label       string      `json:"label,omitempty"`
	Description string      `json:"description,omitempty"`
	Template    []tree.Node `json:"template"`
	Fields      []Field     `json:"fields,omitempty"`
}

// Field returns the declared field with the given slug.
func (m Model) Field(slug string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Slug == slug {
			return field, true
		}
	}
	return Field{}, false
}
