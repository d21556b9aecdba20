package match

import (
	"fmt"
	"math"
)

// DefaultThreshold is the minimum fuzzy score for accepting a window.
const DefaultThreshold = 80.0

// FuzzyWindow is the approximate search path for free-text values.
//
// Every window whose normalized length is within a tolerance of the needle's
// is scored, so the cost is O(len(text)^2) per needle. Inputs are single
// transcribed sentences of a few hundred runes; callers aligning long texts
// should set MaxTextRunes.
type FuzzyWindow struct {
	// Threshold is the minimum accepted score in [0, 100].
	Threshold float64
	// Options controls normalization of needle and windows.
	Options NormalizeOptions
	// MaxTextRunes bounds the haystack length (0 = unlimited).
	MaxTextRunes int
}

// Tolerance returns how far a window length may deviate from a needle of
// the given normalized length.
func Tolerance(needleLen int) int {
	return max(3, int(math.Round(0.3*float64(needleLen))))
}

// Search returns the best-scoring window. Windows are visited by increasing
// start, then increasing end; only a strictly better score replaces the
// current best, so ties resolve to the earliest, shortest window.
// On failure the best window seen (possibly zero) is returned with the error.
func (f FuzzyWindow) Search(hay Haystack, n Needle) (Candidate, error) {
	target := needleRunes(n, f.Options)
	if len(target) == 0 {
		return Candidate{}, ErrEmptyNeedle
	}

	text := hay.Work
	if f.MaxTextRunes > 0 && len(text) > f.MaxTextRunes {
		return Candidate{}, fmt.Errorf("%w: %d > %d runes", ErrTextTooLong, len(text), f.MaxTextRunes)
	}

	tol := Tolerance(len(target))
	minLen := max(1, len(target)-tol)
	maxLen := len(target) + tol

	masked := hay.maskedCells()
	best := Candidate{Score: -1, Query: string(target)}

	for i := range text {
		for j := i + minLen; j <= min(i+maxLen, len(text)); j++ {
			if s, e := trimBlank(text, i, j); !clean(masked, s, e) {
				continue
			}

			window := Project(text[i:j], f.Options)
			if n.Compact {
				window = window.Compact()
			}

			if window.Len() == 0 {
				continue
			}

			score := 100 * similarity(target, window.Runes)
			if score > best.Score {
				best.Start, best.End, best.Score = i, j, score
			}
		}
	}

	if best.Score < f.Threshold {
		if best.Score < 0 {
			best.Score = 0
		}

		return best, fmt.Errorf("%w: best score %.1f below %.1f", ErrNotFound, best.Score, f.Threshold)
	}

	best.Start, best.End = trimBlank(text, best.Start, best.End)

	return best, nil
}

// Rank returns the top best distinct windows at or above the threshold,
// ranked; top <= 0 returns all of them. It is meant for inspection; Search
// does not use it.
func (f FuzzyWindow) Rank(hay Haystack, n Needle, top int) CandidateList {
	target := needleRunes(n, f.Options)
	if len(target) == 0 {
		return nil
	}

	text := hay.Work
	masked := hay.maskedCells()
	tol := Tolerance(len(target))
	minLen := max(1, len(target)-tol)
	maxLen := len(target) + tol

	seen := make(map[[2]int]bool)

	var list CandidateList

	for i := range text {
		for j := i + minLen; j <= min(i+maxLen, len(text)); j++ {
			window := Project(text[i:j], f.Options)
			if n.Compact {
				window = window.Compact()
			}

			if window.Len() == 0 {
				continue
			}

			score := 100 * similarity(target, window.Runes)

			s, e := trimBlank(text, i, j)
			if !clean(masked, s, e) || seen[[2]int{s, e}] {
				continue
			}

			seen[[2]int{s, e}] = true
			list = append(list, Candidate{Start: s, End: e, Score: score, Query: string(target)})
		}
	}

	return list.AboveThreshold(f.Threshold).Rank().Top(top)
}
