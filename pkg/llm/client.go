package llm

import (
	"context"
	"errors"
)

var (
	// ErrUpstream wraps completion-service failures: unreachable, non-success
	// status, or an empty reply.
	ErrUpstream = errors.New("completion service error")

	// ErrParse is returned when a reply holds no JSON object matching the
	// optimization schema.
	ErrParse = errors.New("no optimization JSON in completion reply")
)

type OptimizeInput struct {
	Title       string
	Bullets     []string
	Description string
}

type OptimizeResult struct {
	OptTitle       string
	OptBullets     []string
	OptDescription string
	Keywords       string
	ModelUsed      string
}

type CompletionClient interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
	Name() string
}
