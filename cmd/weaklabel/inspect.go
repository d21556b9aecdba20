package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"weaklabel/internal/align"
	"weaklabel/internal/diagnostic"
	"weaklabel/internal/logging"
	"weaklabel/internal/match"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Align one document and explain the result",
		Long: `Align a single text against a record (JSON or YAML) and print the accepted
spans and, for every field left unaligned, its reason and the closest windows
of the text.`,
		Args: cobra.NoArgs,
		RunE: runInspect,
	}

	cmd.Flags().String("text", "", "transcribed text")
	cmd.Flags().String("record", "", "extraction record as JSON or YAML")
	cmd.Flags().String("record-file", "", "read the record from this file instead")
	cmd.Flags().Float64("near", 60, "minimum score of near-miss windows shown for missing fields")
	cmd.Flags().Int("top", 3, "near-miss windows shown per field")
	cmd.Flags().Float64("ambiguity", 5, "flag spans whose best rival elsewhere in the text scores within this gap")

	return cmd
}

func runInspect(cmd *cobra.Command, _ []string) error {
	text, err := cmd.Flags().GetString("text")
	if err != nil {
		return fmt.Errorf("failed to get text flag: %w", err)
	}

	near, err := cmd.Flags().GetFloat64("near")
	if err != nil {
		return fmt.Errorf("failed to get near flag: %w", err)
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return fmt.Errorf("failed to get top flag: %w", err)
	}

	gap, err := cmd.Flags().GetFloat64("ambiguity")
	if err != nil {
		return fmt.Errorf("failed to get ambiguity flag: %w", err)
	}

	data, err := recordBytes(cmd)
	if err != nil {
		return err
	}

	rec, err := align.ParseRecord(data)
	if err != nil {
		return fmt.Errorf("invalid record: %w", err)
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

	res, err := aligner.Align(text, rec)
	if err != nil {
		return err
	}

	nearMiss := match.FuzzyWindow{
		Threshold: near,
		Options:   match.NormalizeOptions{FoldAccents: cfg.FoldAccents},
	}

	printResult(cmd.OutOrStdout(), res, nearMiss, top, gap)

	return nil
}

func recordBytes(cmd *cobra.Command) ([]byte, error) {
	inline, err := cmd.Flags().GetString("record")
	if err != nil {
		return nil, fmt.Errorf("failed to get record flag: %w", err)
	}

	path, err := cmd.Flags().GetString("record-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get record-file flag: %w", err)
	}

	switch {
	case inline != "" && path != "":
		return nil, errors.New("--record and --record-file are mutually exclusive")
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", path, err)
		}

		return data, nil
	case inline != "":
		return []byte(inline), nil
	default:
		return nil, errors.New("a record is required (--record or --record-file)")
	}
}

func printResult(w io.Writer, res *align.Result, nearMiss match.FuzzyWindow, top int, gap float64) {
	fmt.Fprintf(w, "%s\n\n", res.Text)

	hay := match.NewHaystack(res.Text)
	runes := []rune(res.Text)

	for _, s := range res.Spans {
		fmt.Fprintf(w, "%s %s %q %s\n",
			dimColor.Sprintf("[%d:%d]", s.Start, s.End),
			labelColor.Sprint(s.Label),
			s.Text,
			dimColor.Sprintf("%s score=%.1f", s.Path, s.Score),
		)

		if gap <= 0 {
			continue
		}

		ranked := nearMiss.Rank(hay, match.Needle{Text: s.Query}, 0)
		if !ranked.IsAmbiguous(gap) {
			continue
		}

		rival := ranked.RunnerUp()
		fmt.Fprintf(w, "    %s %s %q %s\n",
			reasonColor.Sprint("ambiguous with"),
			dimColor.Sprintf("[%d:%d]", rival.Start, rival.End),
			string(runes[rival.Start:rival.End]),
			dimColor.Sprintf("score=%.1f", rival.Score),
		)
	}

	if res.Diagnostics.IsEmpty() {
		return
	}

	fmt.Fprintln(w)

	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "%s %s %s %q\n",
			reasonColor.Sprintf("%-16s", d.Reason),
			labelColor.Sprint(d.Label),
			dimColor.Sprint(d.Path),
			d.Value,
		)

		if d.Conflict != nil {
			fmt.Fprintf(w, "    conflicts with %s %q\n", d.Conflict, d.Conflict.Text)
		}

		if d.Reason != diagnostic.NotFound || top <= 0 {
			continue
		}

		for _, c := range nearMiss.Rank(hay, match.Needle{Text: d.Value}, top) {
			fmt.Fprintf(w, "    near %s %q %s\n",
				dimColor.Sprintf("[%d:%d]", c.Start, c.End),
				string(runes[c.Start:c.End]),
				dimColor.Sprintf("score=%.1f", c.Score),
			)
		}
	}
}
