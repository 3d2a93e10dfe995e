// Package catalog loads and validates content model definitions. Models are
// read from JSON or YAML files (templates written in the serialized block
// format), checked when registered, and exposed through a Registry that the
// orchestrator consults per request. Schema exports a model's fields as an
// OpenAPI schema; ValidateFields checks extracted values against it.
package catalog
