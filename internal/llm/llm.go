package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message is one chat-style message sent to the generation provider.
type Message struct {
	Role    string
	Content string
}

// ChatRequest describes a single structured-generation call. APIKey, when
// set, overrides the client's default credential for this call only.
type ChatRequest struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
	APIKey      string
}

// Client abstracts a generation provider constrained to JSON-object output.
type Client interface {
	// ChatJSON sends the request and returns the parsed JSON object. It
	// makes a single attempt; retries belong to the caller.
	ChatJSON(ctx context.Context, req ChatRequest) (map[string]any, error)
}

// ErrMissingCredential is returned when no API key is available from either
// the caller or the environment. The condition is user-correctable.
var ErrMissingCredential = errors.New(
	"no API key available: supply one with the X-OpenAI-Key header or set OPENAI_API_KEY on the server")

// InvalidOutputError reports provider output that did not parse as JSON.
type InvalidOutputError struct {
	Raw string
	Err error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v", e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }
