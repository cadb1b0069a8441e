package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <relationship-id>",
		Short: "Show the change history of a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
				entries, err := handler.HandleHistory(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(out, "No history for relationship: %s\n", args[0])
					return nil
				}

				for _, e := range entries {
					fmt.Fprintf(out, "%s  %-22s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, formatDetails(e.Details))
				}
				return nil
			})
		},
	}
}

// formatDetails renders details as sorted key=value pairs.
func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
