package llm

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Client is the language-model capability the pipeline consumes for
// filtering, validation reasoning and the direct web-search fallback.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// StructuredClient additionally enforces a JSON schema on the output, so the
// caller gets schema-conformant JSON without free-text parsing.
type StructuredClient interface {
	Client
	GenerateStructured(ctx context.Context, system, user, schemaName string, schema *jsonschema.Definition) (string, error)
}

// AsStructured returns the client's structured-output capability when the
// underlying provider supports one.
func AsStructured(c Client) (StructuredClient, bool) {
	sc, ok := c.(StructuredClient)
	return sc, ok
}
