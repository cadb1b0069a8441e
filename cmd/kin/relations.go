package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
)

type relationsFlags struct {
	relType string
	raw     bool
	format  string
}

func newRelationsCmd() *cobra.Command {
	var flags relationsFlags

	cmd := &cobra.Command{
		Use:   "relations <member-id>",
		Short: "List relationships of a member",
		Long: `Shows a member's relationships labeled from their side and grouped by
category. Use --raw to see the stored edges as written.

Examples:
  kin relations <haylee-id> -t lee
  kin relations <haylee-id> --type parent -t lee
  kin relations <haylee-id> --raw --format json -t lee`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelations(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.relType, "type", "", "Filter by relationship type")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Show stored edges without dedup or labeling")
	cmd.Flags().StringVar(&flags.format, "format", "tree", "Output format: tree, list, json")

	return cmd
}

func runRelations(cmd *cobra.Command, personID string, flags relationsFlags) error {
	if !contains(validRelationsFormats, flags.format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", flags.format, strings.Join(validRelationsFormats, ", "))
	}

	ctx := cmd.Context()

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		result, err := handler.HandleList(ctx, personID, handlers.ListOptions{
			Raw:  flags.raw,
			Type: flags.relType,
		})
		if err != nil {
			return fmt.Errorf("listing relationships: %w", err)
		}

		out := cmd.OutOrStdout()
		if flags.format == "json" {
			return writeJSON(out, result)
		}
		if result.Empty() {
			fmt.Fprintf(out, "No relationships found for member: %s\n", personID)
			return nil
		}
		printRelations(out, result, flags.format)
		return nil
	})
}

func printRelations(w io.Writer, result *handlers.ListResult, format string) {
	switch {
	case result.View == nil:
		printRawRelations(w, result)
	case format == "list":
		printRelationsList(w, result)
	default:
		printRelationsTree(w, result)
	}
}

func printRawRelations(w io.Writer, result *handlers.ListResult) {
	fmt.Fprintf(w, "Stored relationships touching %s:\n", result.PersonID)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, rel := range result.Raw {
		fmt.Fprintf(w, "%s  %s -[%s]-> %s\n", rel.ID, rel.PersonID, rel.Type, rel.RelatedID)
	}
}

func printRelationsList(w io.Writer, result *handlers.ListResult) {
	view := result.View
	fmt.Fprintf(w, "Relationships for %s:\n", view.Person.DisplayName())
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, v := range view.Views {
		fmt.Fprintf(w, "%s is the %s of %s\n", otherName(v.OtherName, v.OtherID), v.Label, view.Person.DisplayName())
	}
}

func printRelationsTree(w io.Writer, result *handlers.ListResult) {
	view := result.View
	fmt.Fprintln(w, view.Person.DisplayName())

	for i, group := range view.Groups {
		branch, indent := "+-", "|  "
		if i == len(view.Groups)-1 {
			branch, indent = "\\-", "   "
		}
		fmt.Fprintf(w, "%s %s\n", branch, group.Category)

		for j, v := range group.Members {
			leaf := "+-"
			if j == len(group.Members)-1 {
				leaf = "\\-"
			}
			fmt.Fprintf(w, "%s%s %s (%s)\n", indent, leaf, otherName(v.OtherName, v.OtherID), v.Label)
		}
	}
}

func otherName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
