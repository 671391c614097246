package llm

import "context"

// Request describes one text-generation call
type Request struct {
	Prompt            string
	SystemInstruction string
	Temperature       float64
	MaxTokens         int
	JSONMode          bool
}

// Gateway is the narrow contract the rest of the service depends on for text
// generation. The concrete vendor adapter is swappable; callers never see its
// wire protocol.
type Gateway interface {
	// Generate returns the model's raw text output for the request
	Generate(ctx context.Context, req Request) (string, error)

	// Model returns the configured model identifier, for diagnostics
	Model() string
}
