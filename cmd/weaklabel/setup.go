package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weaklabel/internal/align"
	"weaklabel/internal/logging"
	"weaklabel/internal/mapping"
)

var (
	labelColor  = color.New(color.FgGreen, color.Bold)
	reasonColor = color.New(color.FgYellow, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
)

// setupColor applies the --color flag. "auto" keeps fatih/color's own
// terminal detection.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}

	return nil
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("log-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-mode flag: %w", err)
	}

	return logging.New(mode)
}

// loadFile returns the configuration file named by --config, or nil when
// the flag is empty.
func loadFile(cmd *cobra.Command) (*mapping.File, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	if path == "" {
		return nil, nil
	}

	return mapping.LoadFile(path)
}

// loadConfig builds the aligner configuration. Validation warnings are
// logged; errors abort.
func loadConfig(cmd *cobra.Command, log *zap.Logger) (align.Config, error) {
	f, err := loadFile(cmd)
	if err != nil {
		return align.Config{}, err
	}

	if f == nil {
		return align.DefaultConfig(), nil
	}

	for _, w := range mapping.Validate(f).Warnings {
		log.Warn("config warning", zap.String("code", w.Code), zap.String("key", w.Key), zap.String("message", w.Message))
	}

	return align.ConfigFromFile(f)
}
