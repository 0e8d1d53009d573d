package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/agentinsights/internal/insights"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		sessionID     string
		all           bool
		minConfidence float64
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract learnings from sessions with a language model",
		Long: `Send each session's context (files touched, errors, tools, skills,
sub-agents, modes and conversation) to the configured model and store the
learnings it returns with at least --min-confidence.

Sessions whose model call fails are reported and skipped. Re-running on a
session appends new learnings.

Examples:
  cai extract --all
  cai extract --session-id 3f2a9c1e --min-confidence 0.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessionID == "" && !all {
				return insights.ErrNoTarget
			}
			if !cmd.Flags().Changed("min-confidence") {
				minConfidence = a.cfg.Extraction.MinConfidence
			}
			if minConfidence < 0 || minConfidence > 1 {
				return fmt.Errorf("--min-confidence must be in [0,1], got %v", minConfidence)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			extractor, err := a.newExtractor()
			if err != nil {
				return err
			}
			src, err := a.openRecords(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			svc := insights.NewService(src, nil, nil, extractor, a.zapLogger().Named("insights"))
			res, err := svc.Extract(ctx, insights.ExtractOptions{
				SessionID:       sessionID,
				All:             all,
				Limit:           a.cfg.Extraction.SessionLimit,
				MinConfidence:   minConfidence,
				MaxContextChars: a.cfg.Extraction.MaxContextChars,
				OnStart: func(n int) {
					fmt.Fprintf(out, "Processing %d sessions...\n", n)
				},
				OnSession: func(r insights.SessionReport) {
					fmt.Fprintf(out, "  Processing %s...\n", shortID(r.SessionID))
					switch {
					case r.Skipped:
						fmt.Fprintln(out, "    Skipped: no content")
					case r.Err != nil:
						fmt.Fprintf(out, "    Error: %v\n", r.Err)
					default:
						fmt.Fprintf(out, "    Extracted %d learnings\n", len(r.LearningIDs))
					}
				},
			})
			if err != nil {
				return err
			}
			if res.Sessions == 0 {
				fmt.Fprintln(out, "No sessions to process")
				return nil
			}
			fmt.Fprintf(out, "Done! %d processed, %d skipped, %d failed, %d learnings\n",
				res.Processed, res.Skipped, res.Failed, res.Learnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session-id", "", "extract from this session only")
	cmd.Flags().BoolVar(&all, "all", false, "extract from every session without learnings")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.7, "minimum learning confidence to keep")
	cmd.MarkFlagsMutuallyExclusive("session-id", "all")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
