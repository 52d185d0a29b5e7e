package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolayk812/sweetshop/internal/bootstrap/steps"
)

// Pipeline runs startup steps in order and stops at the first failure.
type Pipeline struct {
	steps  []steps.Step
	logger *slog.Logger
}

func NewPipeline(logger *slog.Logger, pSteps ...steps.Step) (Pipeline, error) {
	var p Pipeline

	if len(pSteps) == 0 {
		return p, errors.New("no steps")
	}

	for idx, step := range pSteps {
		if step == nil {
			return p, fmt.Errorf("step[%d] is nil", idx)
		}
	}

	return Pipeline{
		steps:  pSteps,
		logger: logger.With("component", "bootstrap"),
	}, nil
}

func (p Pipeline) Run(ctx context.Context) error {
	for idx, step := range p.steps {
		start := time.Now()

		if err := step.Run(ctx); err != nil {
			p.logger.ErrorContext(ctx, "startup step failed",
				"step", step.Name(), "status", "error", "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return fmt.Errorf("step.Run[%d][%s]: %w", idx, step.Name(), err)
		}

		p.logger.InfoContext(ctx, "startup step done",
			"step", step.Name(), "status", "ok", "duration_ms", time.Since(start).Milliseconds())
	}

	return nil
}
