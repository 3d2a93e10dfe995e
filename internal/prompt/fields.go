package prompt

import (
	"context"
	"fmt"

	"github.com/goliatone/go-contentmodel/pkg/binding"
	"github.com/goliatone/go-contentmodel/pkg/model"
	"github.com/goliatone/go-contentmodel/pkg/store"
)

// CollectFields asks for a value for every visible field of m, offering the
// current value from source as default, and writes the answers to sink.
// Answers that do not match the field type are re-asked.
func CollectFields(ctx context.Context, d Driver, m model.Model, source store.Source, sink store.Sink) error {
	for _, field := range m.Fields {
		if !field.Visible {
			continue
		}
		current, _ := source.Field(field.Slug)
		label := field.Label
		if label == "" {
			label = field.Slug
		}

		if field.Type.Normalize() == model.FieldTypeBoolean {
			def, _ := binding.Coerce(current, field.Type)
			defBool, _ := def.(bool)
			answer, err := d.Confirm(ctx, ConfirmConfig{Message: label, Default: defBool, Help: field.Description})
			if err != nil {
				return err
			}
			sink.SetField(field.Slug, answer)
			continue
		}

		fieldType := field.Type
		answer, err := d.Input(ctx, InputConfig{
			Message: label,
			Default: current,
			Help:    field.Description,
			Validator: func(value string) error {
				if _, err := binding.Coerce(value, fieldType); err != nil {
					return fmt.Errorf("expected %s", fieldType.Normalize())
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
		value, err := binding.Coerce(answer, field.Type)
		if err != nil {
			return fmt.Errorf("prompt: field %q: %w", field.Slug, err)
		}
		sink.SetField(field.Slug, value)
	}
	return nil
}

// CollectBody asks for the primary body markup.
func CollectBody(ctx context.Context, d Driver, source store.Source, sink store.Sink) error {
	body, err := d.TextArea(ctx, TextAreaConfig{
		Message: "Body markup",
		Default: source.PrimaryBody(),
		Help:    "Serialized blocks, e.g. <!-- cm:paragraph --><p>Hello</p><!-- /cm:paragraph -->",
	})
	if err != nil {
		return err
	}
	sink.SetPrimaryBody(body)
	return nil
}
