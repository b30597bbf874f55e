package generator

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExecuteOptions configures Execute.
type ExecuteOptions struct {
	DryRun bool
	Writer io.Writer // progress lines, defaults to os.Stdout
}

// Execute validates every operation, then commits them in one transaction.
// Nothing is written unless all operations validate.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if opts.DryRun {
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil
	}

	tx := NewTransaction()
	for _, op := range ops {
		op.Stage(tx)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	for _, op := range ops {
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return nil
}
