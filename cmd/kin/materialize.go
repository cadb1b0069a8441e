package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/entities"
)

type materializeFlags struct {
	file      string
	format    string
	existing  []string
	newPeople []string
	asJSON    bool
}

func newMaterializeCmd() *cobra.Command {
	var flags materializeFlags

	cmd := &cobra.Command{
		Use:   "materialize <focal-member-id>",
		Short: "Add several relationships to a member in one batch",
		Long: `Applies a batch of relationship intents against a focal member. Each
intent either links an existing member or creates a new one. Intents run
independently: one failing does not undo the others. Re-running the same
batch does not create duplicate members.

Intents file (JSON):
  [{"category": "children", "newPersonAttributes": {"firstName": "Haylee", "lastName": "Lee"}},
   {"category": "spouse", "existingPersonId": "<id>"}]

Intents file (CSV):
  category,existing_person_id,first_name,last_name,birth_date
  children,,Haylee,Lee,2010-04-02

Examples:
  kin materialize <mira-id> --file family.json -t lee
  kin materialize <mira-id> --existing spouse=<jerry-id> --new "children=Haylee Lee" -t lee`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaterialize(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Intents file (.json or .csv)")
	cmd.Flags().StringVar(&flags.format, "format", "auto", "File format: auto, json, csv")
	cmd.Flags().StringArrayVar(&flags.existing, "existing", nil, "Link an existing member as category=memberId (repeatable)")
	cmd.Flags().StringArrayVar(&flags.newPeople, "new", nil, `Create a member as "category=First Last" (repeatable)`)
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Output the batch result as JSON")

	return cmd
}

func runMaterialize(cmd *cobra.Command, focalID string, flags materializeFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.Materialize.Handle(ctx, focalID, handlers.MaterializeOptions{
			File:     flags.file,
			Format:   flags.format,
			Existing: flags.existing,
			New:      flags.newPeople,
		})
		if err != nil {
			return fmt.Errorf("materializing: %w", err)
		}

		if flags.asJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		printBatchResult(cmd.OutOrStdout(), result)
		return nil
	})
}

func printBatchResult(w io.Writer, result *entities.BatchResult) {
	for _, r := range result.Results {
		switch {
		case r.Status == entities.IntentError:
			fmt.Fprintf(w, "  [%d] %-14s error: %s\n", r.Index, r.Category, r.Error)
		case r.Replayed:
			fmt.Fprintf(w, "  [%d] %-14s %s (already applied)\n", r.Index, r.Category, r.PersonID)
		case r.CreatedPerson:
			fmt.Fprintf(w, "  [%d] %-14s %s (new member)\n", r.Index, r.Category, r.PersonID)
		default:
			fmt.Fprintf(w, "  [%d] %-14s %s\n", r.Index, r.Category, r.PersonID)
		}
	}
	fmt.Fprintf(w, "\n%d succeeded, %d failed\n", result.Succeeded, result.Failed)
}
