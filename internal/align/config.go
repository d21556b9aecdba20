package align

import (
	"fmt"

	"weaklabel/internal/common"
	"weaklabel/internal/mapping"
	"weaklabel/internal/match"
)

// Config controls an Aligner. The zero value is usable: unmapped keys are
// labelled by upper-casing, nothing is canonicalized, and nil field lists
// take their defaults. Pass empty non-nil lists to disable them.
type Config struct {
	// LabelMap maps record keys to labels.
	LabelMap mapping.LabelMap
	// IgnoreLabels are labels never searched.
	IgnoreLabels map[string]struct{}
	// IgnoreFields are record paths never searched.
	IgnoreFields []mapping.FieldPath
	// Canonical rewrites values before search.
	Canonical mapping.CanonicalMap
	// Threshold is the minimum fuzzy score in [0, 100]; nil means
	// match.DefaultThreshold.
	Threshold *float64
	// Strategy selects the search algorithm.
	Strategy match.Strategy
	// Mask overrides the strategy's masking default (exact: on, fuzzy: off).
	Mask *bool
	// PlateFields are searched whitespace-insensitively before literally.
	PlateFields []string
	// CitationFields hold legal citation numbers.
	CitationFields []string
	// CitationPrefix searches "<key> <value>" before the bare value.
	CitationPrefix bool
	// GroupKeys are the repeated-group keys, walked last in this order.
	GroupKeys []string
	// FoldAccents strips diacritics before comparison.
	FoldAccents bool
	// MaxTextRunes bounds the text length for fuzzy search (0 = unlimited).
	MaxTextRunes int
}

// Default field lists.
var (
	DefaultPlateFields    = []string{"targa"}
	DefaultCitationFields = []string{"articolo", "comma", "codice"}
	DefaultGroupKeys      = []string{"lista_veicoli", "violazioni"}
)

// DefaultConfig returns the configuration for Italian traffic-violation
// reports: built-in label and canonical tables, fuzzy search, citation
// prefixing.
func DefaultConfig() Config {
	return Config{
		LabelMap:       mapping.DefaultLabelMap(),
		Canonical:      mapping.DefaultCanonicalMap(),
		Threshold:      Score(match.DefaultThreshold),
		Strategy:       match.StrategyFuzzyWindow,
		PlateFields:    clone(DefaultPlateFields),
		CitationFields: clone(DefaultCitationFields),
		CitationPrefix: true,
		GroupKeys:      clone(DefaultGroupKeys),
	}
}

// ConfigFromFile converts a loaded configuration file. The file is
// validated first; validation warnings are ignored.
func ConfigFromFile(f *mapping.File) (Config, error) {
	if report := mapping.Validate(f); !report.IsValid() {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, report.Error())
	}

	cfg := Config{}
	if f.Defaults() {
		cfg = DefaultConfig()
	}

	cfg.LabelMap = f.Labels()
	cfg.Canonical = f.CanonicalMap()
	cfg.FoldAccents = f.FoldAccents
	cfg.MaxTextRunes = f.MaxTextRunes
	cfg.Mask = f.Mask

	strategy, err := match.ParseStrategy(f.Strategy)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.Strategy = strategy

	if f.Threshold != nil {
		cfg.Threshold = Score(*f.Threshold)
	}

	if f.CitationPrefix != nil {
		cfg.CitationPrefix = *f.CitationPrefix
	}

	if f.PlateFields != nil {
		cfg.PlateFields = clone(f.PlateFields)
	}

	if f.CitationFields != nil {
		cfg.CitationFields = clone(f.CitationFields)
	}

	if f.GroupKeys != nil {
		cfg.GroupKeys = clone(f.GroupKeys)
	}

	if !f.IgnoreLabels.IsEmpty() {
		cfg.IgnoreLabels = IgnoreSet(f.IgnoreLabels...)
	}

	paths, err := mapping.ParsePaths(f.IgnoreFields)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.IgnoreFields = paths

	return cfg, nil
}

// IgnoreSet builds an IgnoreLabels set.
func IgnoreSet(labels ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}

	return set
}

// Score returns a pointer to a threshold value.
func Score(v float64) *float64 {
	return &v
}

// MinScore returns the effective threshold.
func (c Config) MinScore() float64 {
	if c.Threshold == nil {
		return match.DefaultThreshold
	}

	return *c.Threshold
}

// Validate reports an unusable configuration.
func (c Config) Validate() error {
	if !common.IsScore(c.MinScore()) {
		return fmt.Errorf("%w: threshold %.1f outside [0, 100]", ErrInvalidConfig, c.MinScore())
	}

	if c.Strategy != match.StrategyFuzzyWindow && c.Strategy != match.StrategyExactContextual {
		return fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, int(c.Strategy))
	}

	if c.MaxTextRunes < 0 {
		return fmt.Errorf("%w: negative max text runes", ErrInvalidConfig)
	}

	return nil
}

// Masking reports whether accepted spans are consumed from the working copy.
func (c Config) Masking() bool {
	if c.Mask != nil {
		return *c.Mask
	}

	return c.Strategy == match.StrategyExactContextual
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.Threshold == nil {
		c.Threshold = Score(match.DefaultThreshold)
	}

	if c.PlateFields == nil {
		c.PlateFields = clone(DefaultPlateFields)
	}

	if c.CitationFields == nil {
		c.CitationFields = clone(DefaultCitationFields)
	}

	if c.GroupKeys == nil {
		c.GroupKeys = clone(DefaultGroupKeys)
	}

	return c
}

// searcher builds the strategy's search implementation.
func (c Config) searcher() match.Searcher {
	opts := match.NormalizeOptions{FoldAccents: c.FoldAccents}

	if c.Strategy == match.StrategyExactContextual {
		return match.ExactContextual{Options: opts}
	}

	return match.FuzzyWindow{
		Threshold:    c.MinScore(),
		Options:      opts,
		MaxTextRunes: c.MaxTextRunes,
	}
}

func (c Config) ignored(label string, path mapping.FieldPath) bool {
	if _, ok := c.IgnoreLabels[label]; ok {
		return true
	}

	for _, p := range c.IgnoreFields {
		if path.Matches(p) {
			return true
		}
	}

	return false
}

func (c Config) isPlate(key string) bool {
	return common.ContainsFold(c.PlateFields, key)
}

func (c Config) isCitation(key string) bool {
	return common.ContainsFold(c.CitationFields, key)
}

func (c Config) isGroup(key string) bool {
	return common.ContainsFold(c.GroupKeys, key)
}

func clone[S ~[]string](s S) []string {
	return append([]string{}, s...)
}
