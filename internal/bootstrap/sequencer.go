package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
)

// Policy decides how a failing startup step affects the sequence.
type Policy int

const (
	// Required steps abort startup when they fail.
	Required Policy = iota
	// BestEffort steps log their failure and let startup continue.
	BestEffort
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Required:
		return "required"
	case BestEffort:
		return "best_effort"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Step is one startup dependency.
type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) error
	// ReadyMessage is logged when Run succeeds. Defaults to "<Name> ready".
	ReadyMessage string
}

// Sequencer runs startup steps strictly in order. Nothing is retried.
type Sequencer struct {
	logger *slog.Logger
	steps  []Step
}

// NewSequencer creates a Sequencer over the given steps.
func NewSequencer(logger *slog.Logger, steps ...Step) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		logger: logger.With("component", "bootstrap"),
		steps:  steps,
	}
}

// Run executes each step once. The first Required failure is returned
// immediately and no later step runs.
func (s *Sequencer) Run(ctx context.Context) error {
	for _, step := range s.steps {
		err := step.Run(ctx)
		if err == nil {
			msg := step.ReadyMessage
			if msg == "" {
				msg = step.Name + " ready"
			}
			s.logger.Info(msg, "step", step.Name, "policy", step.Policy.String())
			continue
		}

		if step.Policy == BestEffort {
			s.logger.Error(step.Name+" failed",
				"step", step.Name,
				"policy", step.Policy.String(),
				"error", err)
			continue
		}

		return fmt.Errorf("%s: %w", step.Name, err)
	}
	return nil
}
