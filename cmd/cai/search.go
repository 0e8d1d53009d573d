package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/agentinsights/internal/insights"
	"github.com/fyrsmithlabs/agentinsights/internal/vectorstore"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		limit int
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over embedded learnings or sessions",
		Long: `Embed the query and list the closest learnings (or sessions with
--kind session), best match first.

Examples:
  cai search "database is locked"
  cai search --kind session --limit 5 "flaky integration tests"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := vectorstore.ParseKind(kind)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if _, err := os.Stat(a.cfg.Paths.EmbeddingsDB); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "Embeddings not found. Run 'cai embed' first.")
				return nil
			}

			src, err := a.openRecords(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			embedder, err := a.newEmbedder()
			if err != nil {
				return err
			}
			defer embedder.Close()

			vectors, err := a.openVectors(ctx)
			if err != nil {
				return err
			}
			defer vectors.Close()

			fmt.Fprintf(out, "Searching for: %s\n\n", args[0])

			svc := insights.NewService(src, vectors, embedder, nil, a.zapLogger().Named("insights"))
			hits, err := svc.Search(ctx, insights.SearchOptions{Kind: k, Query: args[0], Limit: limit})
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}

			st := newStyles(out)
			for _, hit := range hits {
				if hit.Learning != nil {
					writeLearningHit(out, st, hit)
				} else {
					writeSessionHit(out, st, hit)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", insights.DefaultSearchLimit, "maximum number of results")
	cmd.Flags().StringVar(&kind, "kind", "learning", "what to search: learning or session")
	return cmd
}
