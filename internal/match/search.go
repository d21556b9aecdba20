package match

import (
	"errors"
	"fmt"
	"strings"

	"weaklabel/internal/common"
)

// Search failures. Callers distinguish them with errors.Is.
var (
	// ErrNotFound means no acceptable occurrence of the value exists.
	ErrNotFound = errors.New("value not found")
	// ErrContextMismatch means the value occurs but no occurrence satisfies
	// the before/after context.
	ErrContextMismatch = errors.New("value found but context does not match")
	// ErrEmptyNeedle means the value is empty after normalization.
	ErrEmptyNeedle = fmt.Errorf("%w: empty after normalization", ErrNotFound)
	// ErrTextTooLong means the haystack exceeds the configured bound.
	ErrTextTooLong = errors.New("text exceeds search bound")
)

// Needle is one concrete search target.
type Needle struct {
	// Text is the value to look for, in raw form.
	Text string
	// Before, when set, must end the text preceding the occurrence.
	Before string
	// After, when set, must start the text following the occurrence.
	After string
	// Compact matches while ignoring whitespace on both sides; used for
	// license plates that lose or gain internal spacing in transcription.
	Compact bool
}

// HasContext reports whether the needle carries context tokens.
func (n Needle) HasContext() bool {
	return strings.TrimSpace(n.Before) != "" || strings.TrimSpace(n.After) != ""
}

// Haystack is the text searched. Work is the (possibly masked) working copy
// matches are located in; Orig is the untouched text, used for context.
// Both must have the same length.
type Haystack struct {
	Work []rune
	Orig []rune
}

// NewHaystack builds an unmasked haystack over text.
func NewHaystack(text string) Haystack {
	r := []rune(text)
	return Haystack{Work: r, Orig: r}
}

func (h Haystack) original() []rune {
	if h.Orig != nil {
		return h.Orig
	}
	return h.Work
}

// maskedCells returns running counts of masked cells, those where Work
// differs from Orig: [s, e) touches a masked cell when out[e] > out[s].
// It returns nil when nothing is masked.
func (h Haystack) maskedCells() []int {
	orig := h.original()

	var out []int

	for i, r := range h.Work {
		if i < len(orig) && r != orig[i] {
			if out == nil {
				out = make([]int, len(h.Work)+1)
			}

			out[i+1] = out[i] + 1

			continue
		}

		if out != nil {
			out[i+1] = out[i]
		}
	}

	return out
}

// clean reports whether [start, end) avoids every masked cell.
func clean(masked []int, start, end int) bool {
	return masked == nil || masked[end] == masked[start]
}

// Searcher locates a needle in a haystack.
type Searcher interface {
	Search(hay Haystack, n Needle) (Candidate, error)
}

// Strategy selects a Searcher implementation.
type Strategy int

const (
	// StrategyFuzzyWindow selects FuzzyWindow.
	StrategyFuzzyWindow Strategy = iota
	// StrategyExactContextual selects ExactContextual.
	StrategyExactContextual
)

const (
	strategyFuzzyName = "fuzzy"
	strategyExactName = "exact"
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyFuzzyWindow:
		return strategyFuzzyName
	case StrategyExactContextual:
		return strategyExactName
	default:
		return common.UnknownStr
	}
}

// ParseStrategy parses a configuration name. The empty string selects fuzzy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", strategyFuzzyName, "fuzzy_window", "fuzzywindow":
		return StrategyFuzzyWindow, nil
	case strategyExactName, "exact_contextual", "exactcontextual":
		return StrategyExactContextual, nil
	default:
		return 0, fmt.Errorf("unknown search strategy %q", s)
	}
}

// needleRunes normalizes the needle text for matching.
func needleRunes(n Needle, opts NormalizeOptions) []rune {
	p := Project([]rune(n.Text), opts)
	if n.Compact {
		p = p.Compact()
	}

	return p.Runes
}

// trimBlank shrinks [start, end) so it neither starts nor ends on a rune that
// normalization discards. The normalized content is unchanged.
func trimBlank(text []rune, start, end int) (int, int) {
	for start < end && isBlank(text[start]) {
		start++
	}

	for end > start && isBlank(text[end-1]) {
		end--
	}

	return start, end
}
