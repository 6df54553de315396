package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/pagechunk"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	entries, err := deps.Cache.ListMeta(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No cached pages. Use 'pagechunk ingest' to fetch some.")
		return nil
	}

	for _, e := range entries {
		sha := e.ContentSHA1
		if len(sha) > 12 {
			sha = sha[:12]
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n",
			sha, e.FetchedAt.UTC().Format(time.RFC3339), e.URL, e.PageTitle)
	}
	return nil
}
