package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// DataSource is the persistent storage the application cannot serve without.
type DataSource interface {
	Connect(ctx context.Context) error
}

// Scanner is the optional malware-scanning subsystem.
type Scanner interface {
	Activate(ctx context.Context) error
}

// AssembleFunc builds the request-handling pipeline.
type AssembleFunc func() (http.Handler, error)

// ErrNilAssembler is returned when Initialize is given no assembler.
var ErrNilAssembler = errors.New("bootstrap: nil assembler")

// Initialize connects the data source, activates the scanner and assembles the
// application, in that order. A data source failure aborts before the scanner
// or the assembler runs. A scanner failure is logged and startup continues.
func Initialize(
	ctx context.Context,
	logger *slog.Logger,
	dataSource DataSource,
	scanner Scanner,
	assemble AssembleFunc,
) (http.Handler, error) {
	if assemble == nil {
		return nil, ErrNilAssembler
	}

	seq := NewSequencer(logger,
		Step{
			Name:         "database",
			Policy:       Required,
			Run:          dataSource.Connect,
			ReadyMessage: "database connected",
		},
		Step{
			Name:         "scanner",
			Policy:       BestEffort,
			Run:          scanner.Activate,
			ReadyMessage: "scanner ready",
		},
	)

	if err := seq.Run(ctx); err != nil {
		return nil, fmt.Errorf("startup aborted: %w", err)
	}

	handler, err := assemble()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble application: %w", err)
	}
	return handler, nil
}
