package gap

import (
	"context"
	"fmt"

	"jdgap-backend/internal/llm"
)

const (
	analysisTemperature = 0.5
	analysisMaxTokens   = 4096
)

// Input carries everything one analysis call needs. APIKey, when set,
// overrides the server's default credential for this call.
type Input struct {
	ResumeText string
	JDText     string
	TargetRole string
	APIKey     string
}

// Engine turns (resume text, JD text) into a validated Result via a single
// structured-generation call. It holds no per-request state and performs no
// retries or caching.
type Engine struct {
	LLM   llm.Client
	Model string
}

// NewEngine constructs an Engine bound to a generation client.
func NewEngine(client llm.Client, model string) *Engine {
	return &Engine{LLM: client, Model: model}
}

// Analyze invokes the generation client and normalizes its output.
func (e *Engine) Analyze(ctx context.Context, input Input) (Result, error) {
	raw, err := e.LLM.ChatJSON(ctx, llm.ChatRequest{
		Messages:    buildMessages(input.ResumeText, input.JDText, input.TargetRole),
		Model:       e.Model,
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		APIKey:      input.APIKey,
	})
	if err != nil {
		return Result{}, err
	}

	result, err := normalizeResult(raw)
	if err != nil {
		return Result{}, fmt.Errorf("normalize analysis result: %w", err)
	}
	return result, nil
}
