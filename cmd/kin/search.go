package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search relationships by meaning",
		Long: `Searches the kinship index for relationships matching a question.
Requires index.enabled in .kin/config.yaml.

Examples:
  kin search "who are Haylee's grandparents" -t lee`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withDeps(func(d *Deps) error {
				if limit <= 0 {
					limit = d.Config.Index.SearchLimit
				}
				result, err := d.Search.Handle(cmd.Context(), query, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(result.Hits) == 0 {
					fmt.Fprintln(out, "No matching relationships.")
					return nil
				}
				for _, hit := range result.Hits {
					fmt.Fprintf(out, "%.3f  %s  (%s)\n", hit.Score, hit.Sentence, hit.RelationshipID)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of results (default from config)")

	return cmd
}
