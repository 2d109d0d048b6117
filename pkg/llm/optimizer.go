package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"listingopt/pkg/retry"
)

// Optimizer rewrites listing content through a completion service.
type Optimizer struct {
	client CompletionClient
	models []string
	policy retry.Policy
}

func NewOptimizer(client CompletionClient, models []string, policy retry.Policy) *Optimizer {
	return &Optimizer{
		client: client,
		models: models,
		policy: policy,
	}
}

// Run asks each configured model in turn and stops at the first reply. If
// every model fails the last error is returned. A reply that cannot be
// parsed is not handed to the next model.
func (o *Optimizer) Run(ctx context.Context, input OptimizeInput) (*OptimizeResult, error) {
	if len(o.models) == 0 {
		return nil, fmt.Errorf("%w: no models configured for %s", ErrUpstream, o.client.Name())
	}

	prompt := BuildOptimizePrompt(input)

	var lastErr error
	for _, model := range o.models {
		var reply string
		err := o.policy.Do(ctx, func() error {
			var err error
			reply, err = o.client.Complete(ctx, model, prompt)
			return err
		})
		if err != nil {
			slog.Warn("completion failed", "provider", o.client.Name(), "model", model, "error", err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		result, err := ExtractOptimization(reply, input)
		if err != nil {
			return nil, err
		}
		result.ModelUsed = model

		slog.Info("listing optimized", "provider", o.client.Name(), "model", model, "prompt_version", promptVersion)
		return result, nil
	}

	if !errors.Is(lastErr, ErrUpstream) {
		lastErr = fmt.Errorf("%w: %w", ErrUpstream, lastErr)
	}
	return nil, lastErr
}
