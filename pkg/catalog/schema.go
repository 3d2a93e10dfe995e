package catalog

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-contentmodel/pkg/model"
)

// visibleExtension carries the field's UI visibility on exported schemas.
const visibleExtension = "x-visible"

// Schema describes a model's field map as an OpenAPI object schema so hosts
// can publish it next to their REST endpoints.
func Schema(m model.Model) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = m.Label
	schema.Description = m.Description
	noExtra := false
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: &noExtra}

	for _, field := range m.Fields {
		prop := fieldSchema(field)
		schema.WithProperty(field.Slug, prop)
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var prop *openapi3.Schema
	switch field.Type.Normalize() {
	case model.FieldTypeInteger:
		prop = openapi3.NewIntegerSchema()
	case model.FieldTypeNumber:
		prop = openapi3.NewFloat64Schema()
	case model.FieldTypeBoolean:
		prop = openapi3.NewBoolSchema()
	default:
		prop = openapi3.NewStringSchema()
	}
	prop.Title = field.Label
	prop.Description = field.Description
	prop.Extensions = map[string]any{visibleExtension: field.Visible}
	return prop
}

// ValidateFields checks extracted values against the model's declared field
// types. Unknown keys are rejected.
func ValidateFields(m model.Model, values map[string]any) error {
	payload := make(map[string]any, len(values))
	for key, value := range values {
		payload[key] = jsonValue(value)
	}
	if err := Schema(m).VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("catalog: model %q fields: %w", m.Slug, err)
	}
	return nil
}

// jsonValue widens Go integers to the float64 form JSON decoding produces.
func jsonValue(value any) any {
	switch typed := value.(type) {
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case int32:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return value
	}
}
