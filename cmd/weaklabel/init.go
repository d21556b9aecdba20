package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"weaklabel/internal/align"
	"weaklabel/internal/mapping"
	"weaklabel/internal/match"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Long: `Write a configuration file with the built-in label map spelled out, ready
to be edited. The syntax follows the extension: .toml for TOML, YAML otherwise.
The default path is weaklabel.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}

	cmd.Flags().Bool("force", false, "overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "weaklabel.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := mapping.WriteFile(starterFile(), path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	return nil
}

func starterFile() *mapping.File {
	threshold := match.DefaultThreshold
	citationPrefix := true

	return &mapping.File{
		Version:        "1",
		Strategy:       match.StrategyFuzzyWindow.String(),
		Threshold:      &threshold,
		CitationPrefix: &citationPrefix,
		PlateFields:    mapping.StringOrArray(align.DefaultPlateFields),
		CitationFields: mapping.StringOrArray(align.DefaultCitationFields),
		GroupKeys:      mapping.StringOrArray(align.DefaultGroupKeys),
		LabelMap:       mapping.DefaultLabelMap(),
	}
}
