package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// OpMeta holds operational metadata for a single generation operation.
type OpMeta struct {
	Operation string
	Usage     TokenUsage
	Latency   time.Duration
}
