// Package main is the weaklabel command line tool.
//
// weaklabel turns structured extraction records into span annotations over
// transcribed Italian text:
//   - align: label a JSONL dataset of documents into training examples
//   - inspect: align one document and explain every missing field
//   - labels: print the effective label map
//   - init: write a starter configuration file
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "weaklabel",
		Short: "Weak-label transcriptions from structured extraction records",
		Long: `weaklabel locates the values of structured extraction records inside the
transcribed text they were extracted from and emits (start, end, label) spans
for training sequence-labelling models.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupColor(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "aligner configuration (.yaml or .toml); built-in defaults when empty")
	root.PersistentFlags().String("log-mode", "dev", "log mode (dev|prod|nop)")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(newAlignCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newInitCmd())

	return root
}
