package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/non/log"
)

// Check parses, validates, and resolves every record without writing output.
type Check struct {
	Source string `arg:"" default:"-" help:"Source file or '-' for stdin." name:"source"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	table, err := loadTable(ctx, c.Source)
	if err != nil {
		return err
	}

	_, err = table.ResolveAll(ctx)

	failed := logFailures(ctx, "record unresolved", err)
	if failed > 0 {
		return ErrUnresolved.With(
			slog.Int("count", failed),
			slog.Int("records", table.Len()),
		)
	}

	log.InfoContext(ctx, "check passed",
		slog.String("source", c.Source),
		slog.Int("records", table.Len()),
	)

	return nil
}
