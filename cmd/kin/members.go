package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

type memberAddFlags struct {
	first     string
	middle    string
	last      string
	nickname  string
	birthDate string
	deceased  bool
	rels      []string
	notes     string
}

func newMembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage family members",
	}

	cmd.AddCommand(
		newMembersAddCmd(),
		newMembersListCmd(),
		newMembersShowCmd(),
		newMembersDeleteCmd(),
	)

	return cmd
}

func newMembersAddCmd() *cobra.Command {
	var flags memberAddFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a family member",
		Long: `Adds a member and, optionally, relationships to existing members.
Each --rel names what the existing member is to the new one.

Examples:
  kin members add --first Haylee --last Lee -t lee
  kin members add --first Ada --last Lee --rel parents=<jerry-id> --rel siblings=<haylee-id> -t lee`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMembersAdd(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.first, "first", "", "First name (required)")
	cmd.Flags().StringVar(&flags.middle, "middle", "", "Middle name")
	cmd.Flags().StringVar(&flags.last, "last", "", "Last name (required)")
	cmd.Flags().StringVar(&flags.nickname, "nickname", "", "Nickname")
	cmd.Flags().StringVar(&flags.birthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flags.deceased, "deceased", false, "Mark the member as deceased")
	cmd.Flags().StringArrayVar(&flags.rels, "rel", nil, "Relationship as category=memberId (repeatable)")
	cmd.Flags().StringVar(&flags.notes, "notes", "", "Notes stored on the new relationships")

	return cmd
}

func runMembersAdd(cmd *cobra.Command, flags memberAddFlags) error {
	ctx := cmd.Context()

	hints, err := handlers.ParseHints(flags.rels)
	if err != nil {
		return err
	}

	alive := !flags.deceased
	in := services.MemberInput{
		PersonAttributes: entities.PersonAttributes{
			FirstName:  flags.first,
			MiddleName: flags.middle,
			LastName:   flags.last,
			Nickname:   flags.nickname,
			BirthDate:  flags.birthDate,
			IsAlive:    &alive,
		},
		Relationships: hints,
		Notes:         flags.notes,
	}

	return withMemberHandler(func(handler *handlers.MemberHandler) error {
		result, err := handler.HandleAdd(ctx, in)
		if err != nil {
			return fmt.Errorf("adding member: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added member: %s (%s)\n", result.Person.DisplayName(), result.Person.ID)
		for _, rel := range result.Relationships {
			fmt.Fprintf(out, "  %s -[%s]-> %s (%s)\n", rel.PersonID, rel.Type, rel.RelatedID, rel.ID)
		}
		return nil
	})
}

func newMembersListCmd() *cobra.Command {
	var (
		query  string
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List family members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemberHandler(func(handler *handlers.MemberHandler) error {
				people, err := handler.HandleList(cmd.Context(), query, limit, offset)
				if err != nil {
					return fmt.Errorf("listing members: %w", err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), people)
				}
				printMembers(cmd.OutOrStdout(), people)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by name")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of members")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of members to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func printMembers(w io.Writer, people []*entities.Person) {
	if len(people) == 0 {
		fmt.Fprintln(w, "No members found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-30s %s\n", "ID", "NAME", "BORN")
	for _, p := range people {
		born := ""
		if p.BirthDate != nil {
			born = p.BirthDate.Format(entities.BirthDateLayout)
		}
		fmt.Fprintf(w, "%-36s  %-30s %s\n", p.ID, p.DisplayName(), born)
	}
}

func newMembersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <member-id>",
		Short: "Show a family member as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemberHandler(func(handler *handlers.MemberHandler) error {
				person, err := handler.HandleGet(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), person)
			})
		},
	}
}

func newMembersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <member-id>",
		Short: "Delete a member and all of their relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMemberHandler(func(handler *handlers.MemberHandler) error {
				if err := handler.HandleDelete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("deleting member: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted member: %s\n", args[0])
				return nil
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
