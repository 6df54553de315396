package main

import (
	"fmt"

	"github.com/fwojciec/pagechunk"
)

// Run executes the prune command.
func (c *PruneCmd) Run(deps *Dependencies) error {
	removed, err := deps.Cache.Prune(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "removed %d orphaned records\n", removed)
	return nil
}
