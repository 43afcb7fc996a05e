package llm

import (
	"caterpro-ai/internal/shared"
	"context"
)

// FieldType enumerates the JSON types a response schema can describe.
type FieldType string

const (
	TypeObject FieldType = "object"
	TypeArray  FieldType = "array"
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
)

// Schema is a provider-neutral description of the expected response
// shape. Providers translate it into their native schema format, or
// fall back to JSON-object mode when they cannot express it.
type Schema struct {
	Type        FieldType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

// Request describes a single generation call.
type Request struct {
	Prompt string
	// ResponseSchema is nil for plain-text operations.
	ResponseSchema *Schema
	Temperature    float32
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// ObjectSchema builds an object schema from its properties.
func ObjectSchema(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// StringArraySchema builds a schema for an array of strings.
func StringArraySchema(description string) *Schema {
	return &Schema{
		Type:        TypeArray,
		Description: description,
		Items:       &Schema{Type: TypeString},
	}
}

// ObjectArraySchema builds a schema for an array of uniform objects.
func ObjectArraySchema(description string, props map[string]*Schema) *Schema {
	return &Schema{
		Type:        TypeArray,
		Description: description,
		Items:       &Schema{Type: TypeObject, Properties: props},
	}
}
