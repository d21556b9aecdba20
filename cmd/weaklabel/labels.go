package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weaklabel/internal/mapping"
)

func newLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the effective label map",
		Long: `Print every record key with the label its spans receive, in visiting
order. Keys absent from the map are labelled by upper-casing.`,
		Args: cobra.NoArgs,
		RunE: runLabels,
	}

	cmd.Flags().Bool("canonical", false, "also print the canonical value rewrites")

	return cmd
}

func runLabels(cmd *cobra.Command, _ []string) error {
	withCanonical, err := cmd.Flags().GetBool("canonical")
	if err != nil {
		return fmt.Errorf("failed to get canonical flag: %w", err)
	}

	f, err := loadFile(cmd)
	if err != nil {
		return err
	}

	labels := mapping.DefaultLabelMap()
	canonical := mapping.DefaultCanonicalMap()

	if f != nil {
		if report := mapping.Validate(f); !report.IsValid() {
			return report.Error()
		}

		labels = f.Labels()
		canonical = f.CanonicalMap()
	}

	w := cmd.OutOrStdout()

	width := 0
	for _, e := range labels {
		width = max(width, len(e.Field))
	}

	for _, e := range labels {
		fmt.Fprintf(w, "%-*s  %s\n", width, e.Field, labelColor.Sprint(e.Label))
	}

	if !withCanonical {
		return nil
	}

	fmt.Fprintln(w)

	for _, e := range canonical.Entries() {
		fmt.Fprintf(w, "%s %q -> %q\n", labelColor.Sprint(e.Label), e.Phrase, e.Canonical)
	}

	return nil
}
