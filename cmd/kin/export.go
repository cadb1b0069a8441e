package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/entities"
)

type exportFlags struct {
	format string
	output string
	limit  int
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a family tree to file",
		Long: `Exports members and stored relationships to JSON, CSV, or markdown.
CSV output has one row per relationship with both member names resolved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultExportLimit, "Maximum number of members and relationships to export")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validExportFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validExportFormats)
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		export, err := d.Export.Handle(ctx, flags.limit)
		if err != nil {
			return err
		}
		if len(export.Members) == 0 {
			return fmt.Errorf("no members found to export")
		}

		return writeExport(cmd.OutOrStdout(), export, flags)
	})
}

func writeExport(stdout io.Writer, export *handlers.Export, flags exportFlags) (err error) {
	w := stdout

	if flags.output != "" {
		f, ferr := os.OpenFile(flags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if ferr != nil {
			return fmt.Errorf("creating file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatExport(w, export, flags.format); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if flags.output != "" {
		fmt.Fprintf(stdout, "Exported %d members and %d relationships to %s\n",
			len(export.Members), len(export.Relationships), flags.output)
	}

	return nil
}

func formatExport(w io.Writer, export *handlers.Export, format string) error {
	switch format {
	case "json":
		return formatJSON(w, export)
	case "csv":
		return formatCSV(w, export)
	case "markdown":
		return formatMarkdown(w, export)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatJSON(w io.Writer, export *handlers.Export) error {
	if export.Members == nil {
		export.Members = []*entities.Person{}
	}
	if export.Relationships == nil {
		export.Relationships = []entities.Relationship{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func formatCSV(w io.Writer, export *handlers.Export) error {
	names := memberNames(export.Members)
	writer := csv.NewWriter(w)

	header := []string{"id", "person_id", "person_name", "type", "related_id", "related_name", "notes"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range export.Relationships {
		row := []string{
			r.ID,
			r.PersonID,
			names[r.PersonID],
			string(r.Type),
			r.RelatedID,
			names[r.RelatedID],
			r.Notes,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, export *handlers.Export) error {
	names := memberNames(export.Members)

	if _, err := fmt.Fprintf(w, "# Family Tree\n\nTotal: %d members, %d relationships\n\n## Members\n\n", len(export.Members), len(export.Relationships)); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "| Name | Born | Living | ID |\n|------|------|--------|----|\n"); err != nil {
		return err
	}
	for _, p := range export.Members {
		born := ""
		if p.BirthDate != nil {
			born = p.BirthDate.Format(entities.BirthDateLayout)
		}
		living := "yes"
		if !p.IsAlive {
			living = "no"
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n", escapeMarkdown(p.DisplayName()), born, living, p.ID); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, "\n## Relationships\n\n| Person | Is | Of | Notes |\n|--------|----|----|-------|\n"); err != nil {
		return err
	}
	for _, r := range export.Relationships {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			escapeMarkdown(nameOr(names, r.PersonID)),
			r.Type.Label(),
			escapeMarkdown(nameOr(names, r.RelatedID)),
			escapeMarkdown(r.Notes),
		); err != nil {
			return err
		}
	}

	return nil
}

func memberNames(members []*entities.Person) map[string]string {
	names := make(map[string]string, len(members))
	for _, p := range members {
		names[p.ID] = p.DisplayName()
	}
	return names
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
