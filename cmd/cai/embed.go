package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/agentinsights/internal/insights"
	"github.com/fyrsmithlabs/agentinsights/internal/vectorstore"
)

func newEmbedCmd(a *app) *cobra.Command {
	var (
		typ       string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed learnings and session transcripts",
		Long: `Embed learnings (their content) and sessions (their user and assistant
messages, truncated to 10000 characters) into ~/.code-agent-insights/embeddings.db.

Existing vectors are replaced. Texts are embedded and stored in chunks of
--batch-size, so an interrupted run keeps the chunks it finished.

Examples:
  cai embed
  cai embed --type learnings --batch-size 64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := embedKinds(typ)
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = a.cfg.Embeddings.BatchSize
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			src, err := a.openRecords(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			fmt.Fprintln(out, "Loading embedding model...")
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

			svc := insights.NewService(src, vectors, embedder, nil, a.zapLogger().Named("insights"))
			bar := newProgressBar(out)

			for _, kind := range kinds {
				fmt.Fprintf(out, "Embedding %s...\n", kindPlural(kind))
				res, err := svc.Embed(ctx, insights.EmbedOptions{
					Kinds:     []vectorstore.Kind{kind},
					BatchSize: batchSize,
					Progress:  bar.report,
				})
				if err != nil {
					return err
				}
				if res.Embedded[kind] == 0 {
					fmt.Fprintf(out, "  No %s to embed\n", kindPlural(kind))
				}
			}
			fmt.Fprintln(out, "Done!")
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "all", "what to embed: sessions, learnings or all")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "texts per embedding request (default embeddings.batch_size)")
	return cmd
}

// embedKinds maps --type to store kinds, learnings first.
func embedKinds(typ string) ([]vectorstore.Kind, error) {
	if typ == "all" {
		return vectorstore.Kinds(), nil
	}
	kind, err := vectorstore.ParseKind(typ)
	if err != nil {
		return nil, fmt.Errorf("--type must be sessions, learnings or all: %w", err)
	}
	return []vectorstore.Kind{kind}, nil
}

func kindPlural(kind vectorstore.Kind) string {
	return string(kind) + "s"
}
