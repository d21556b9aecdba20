package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"weaklabel/internal/align"
	"weaklabel/internal/batch"
	"weaklabel/internal/dataset"
	"weaklabel/internal/diagnostic"
	"weaklabel/internal/logging"
)

func newAlignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align a JSONL dataset into training examples",
		Long: `Read documents ({"id", "text", "record"} per line), align every record
against its text and write one training example per document. Fields that
could not be aligned are reported in the optional diagnostics sidecar.`,
		Args: cobra.NoArgs,
		RunE: runAlign,
	}

	cmd.Flags().String("in", "-", "input JSONL documents (- for stdin)")
	cmd.Flags().String("out", "-", "output training data (- for stdout)")
	cmd.Flags().String("format", "jsonl", "output format (jsonl|msgpack)")
	cmd.Flags().String("diagnostics", "", "write per-document diagnostics as JSONL to this path")
	cmd.Flags().Int("jobs", 0, "max documents aligned in parallel (0=auto)")

	return cmd
}

func runAlign(cmd *cobra.Command, _ []string) (err error) {
	in, err := cmd.Flags().GetString("in")
	if err != nil {
		return fmt.Errorf("failed to get in flag: %w", err)
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}

	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	diagPath, err := cmd.Flags().GetString("diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	format, err := dataset.ParseFormat(formatName)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	cfg, err := loadConfig(cmd, log)
	if err != nil {
		return err
	}

	aligner, err := align.New(cfg, align.WithLogger(log))
	if err != nil {
		return err
	}

	docs, err := readDocuments(cmd, in)
	if err != nil {
		return err
	}

	items, stats, err := batch.Run(cmd.Context(), docs, aligner, batch.Options{Jobs: jobs, Logger: log})
	if err != nil {
		return err
	}

	w, err := openWriter(cmd, out, format)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, w.Close()) }()

	var dw *dataset.DiagnosticsWriter
	if diagPath != "" {
		if dw, err = dataset.CreateDiagnosticsWriter(diagPath); err != nil {
			return err
		}
		defer func() { err = errors.Join(err, dw.Close()) }()
	}

	for _, it := range items {
		if it.Err != nil {
			continue
		}

		if err := w.Write(dataset.NewExample(it.Result)); err != nil {
			return err
		}

		if dw != nil {
			if err := dw.Write(it.Doc.ID, it.Result); err != nil {
				return err
			}
		}
	}

	printStats(cmd.ErrOrStderr(), stats)

	return nil
}

func readDocuments(cmd *cobra.Command, in string) ([]dataset.Document, error) {
	if in == "-" {
		return dataset.ReadAll(cmd.InOrStdin(), "stdin")
	}

	return dataset.ReadFile(in)
}

func openWriter(cmd *cobra.Command, out string, format dataset.Format) (*dataset.Writer, error) {
	if out == "-" {
		return dataset.NewWriter(cmd.OutOrStdout(), format)
	}

	return dataset.CreateWriter(out, format)
}

func printStats(w io.Writer, s batch.Stats) {
	fmt.Fprintf(w, "%s %d documents, %d spans, %.1f%% complete\n",
		labelColor.Sprint("aligned"), s.Documents-s.Failed, s.Spans, 100*s.Coverage())

	if s.Failed > 0 {
		fmt.Fprintf(w, "%s %d documents\n", errorColor.Sprint("skipped"), s.Failed)
	}

	for r := range diagnostic.ReasonTotal {
		reason := diagnostic.Reason(r)
		if n := s.Reason(reason); n > 0 {
			fmt.Fprintf(w, "  %s %d\n", reasonColor.Sprint(reason), n)
		}
	}
}
