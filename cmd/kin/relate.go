package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
)

func newRelateCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "relate <person-id> <type> <related-id>",
		Short: "Record a relationship between two members",
		Long: `Records that <person-id> IS <type> OF <related-id>.
Recording a fact that is already stored, from either side, is a no-op.

Valid relationship types:
  - parent, child, spouse, sibling, half_sibling
  - grandparent, grandchild, uncle_aunt, nephew_niece, cousin
  - step_parent, step_child, adopted_parent, adopted_child
  - in_law, partner, friend, other

Examples:
  kin relate <jerry-id> parent <haylee-id> -t lee
  kin relate <mira-id> spouse <jerry-id> --notes "married 2004" -t lee`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(cmd, args, notes)
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes about the relationship")

	cmd.AddCommand(newRelateUpdateCmd(), newRelateDeleteCmd())

	return cmd
}

func runRelate(cmd *cobra.Command, args []string, notes string) error {
	ctx := cmd.Context()

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		rel, err := handler.HandleCreate(ctx, args[0], args[1], args[2], notes)
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Relationship: %s\n", rel.ID)
		fmt.Fprintf(out, "  %s -[%s]-> %s\n", rel.PersonID, rel.Type, rel.RelatedID)
		return nil
	})
}

func newRelateUpdateCmd() *cobra.Command {
	var relType, notes string

	cmd := &cobra.Command{
		Use:   "update <relationship-id>",
		Short: "Change the type or notes of a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var typePtr, notesPtr *string
			if cmd.Flags().Changed("type") {
				typePtr = &relType
			}
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}
			if typePtr == nil && notesPtr == nil {
				return fmt.Errorf("nothing to update: set --type and/or --notes")
			}

			return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
				rel, err := handler.HandleUpdate(cmd.Context(), args[0], typePtr, notesPtr)
				if err != nil {
					return fmt.Errorf("updating relationship: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated relationship: %s\n  %s -[%s]-> %s\n", rel.ID, rel.PersonID, rel.Type, rel.RelatedID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&relType, "type", "", "New relationship type")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")

	return cmd
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <relationship-id>",
		Short: "Delete a relationship",
		Long:  "Deletes an existing relationship by its ID.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelateDelete,
	}
}

func runRelateDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	relID := args[0]

	return withRelationshipHandler(func(handler *handlers.RelationshipHandler) error {
		if err := handler.HandleDelete(ctx, relID); err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted relationship: %s\n", relID)
		return nil
	})
}
