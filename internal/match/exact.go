package match

import (
	"strings"
)

// ContextWindow is the default number of original-text runes cut on each
// side of an occurrence when checking context tokens. The cut is normalized
// before comparison.
const ContextWindow = 30

// ExactContextual is the precision search path. Occurrences are literal in
// normalized space (case, punctuation and spacing differences are ignored)
// and, when the needle carries context tokens, disambiguated by the text
// around them.
type ExactContextual struct {
	// Options controls normalization of needle, haystack and context.
	Options NormalizeOptions
	// Window is the context width in runes (0 = ContextWindow).
	Window int
}

// Search returns the first acceptable occurrence:
//   - without context, the first word-anchored occurrence, else the first
//     unanchored one;
//   - with context, the first occurrence (anchored ones preferred) whose
//     surroundings match.
//
// Failures are ErrNotFound when the value is absent and ErrContextMismatch
// when it is present but never in the requested context.
func (e ExactContextual) Search(hay Haystack, n Needle) (Candidate, error) {
	target := needleRunes(n, e.Options)
	if len(target) == 0 {
		return Candidate{}, ErrEmptyNeedle
	}

	proj := Project(hay.Work, e.Options)
	if n.Compact {
		proj = proj.Compact()
	}

	all := e.occurrences(hay, proj, target)
	if len(all) == 0 {
		return Candidate{}, ErrNotFound
	}

	pool := anchoredOnly(hay.Work, all)
	if len(pool) == 0 {
		pool = all
	}

	if !n.HasContext() {
		return pool[0], nil
	}

	before := NormalizeWith(n.Before, e.Options)
	after := NormalizeWith(n.After, e.Options)

	for _, c := range pool {
		if e.contextMatches(hay.original(), c, before, after) {
			return c, nil
		}
	}

	return Candidate{}, ErrContextMismatch
}

// occurrences finds every position of target in the projection, including
// overlapping ones, mapped back to original offsets. Masked runs collapse to
// a single space in the projection, so matches spanning one are dropped.
func (e ExactContextual) occurrences(hay Haystack, proj Projection, target []rune) CandidateList {
	var list CandidateList

	text := hay.Work
	masked := hay.maskedCells()

	for k := 0; k+len(target) <= proj.Len(); k++ {
		if !runesEqual(proj.Runes[k:k+len(target)], target) {
			continue
		}

		start, end := proj.Bounds(k, k+len(target))
		start, end = trimBlank(text, start, end)
		if start >= end || !clean(masked, start, end) {
			continue
		}

		list = append(list, Candidate{Start: start, End: end, Score: 100, Query: string(target)})
	}

	return list
}

// anchoredOnly keeps occurrences not glued to a letter or digit on either side.
func anchoredOnly(text []rune, list CandidateList) CandidateList {
	var out CandidateList

	for _, c := range list {
		if c.Start > 0 && isWordRune(text[c.Start-1]) {
			continue
		}

		if c.End < len(text) && isWordRune(text[c.End]) {
			continue
		}

		out = append(out, c)
	}

	return out
}

func (e ExactContextual) contextMatches(text []rune, c Candidate, before, after string) bool {
	width := e.Window
	if width <= 0 {
		width = ContextWindow
	}

	if before != "" {
		left := NormalizeWith(string(text[max(0, c.Start-width):c.Start]), e.Options)
		if !strings.HasSuffix(left, before) {
			return false
		}
	}

	if after != "" {
		right := NormalizeWith(string(text[c.End:min(len(text), c.End+width)]), e.Options)
		if !strings.HasPrefix(right, after) {
			return false
		}
	}

	return true
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
