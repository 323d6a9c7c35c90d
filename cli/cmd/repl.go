package cmd

import (
	"context"

	"github.com/ardnew/non/cli/cmd/repl"
	"github.com/ardnew/non/log"
	"github.com/ardnew/non/pkg"
)

// Repl starts an interactive session over a source file.
type Repl struct {
	Source string `arg:"" help:"Source file." name:"source" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	cacheDir := pkg.CacheDir()

	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			cacheDir = dir
		}
	}

	return repl.Run(ctx, r.Source, cacheDir, log.Default())
}
