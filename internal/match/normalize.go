package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeOptions tunes the comparison form.
type NormalizeOptions struct {
	// FoldAccents strips diacritics per rune ("è" -> "e").
	FoldAccents bool
}

// Projection is the normalized form of a rune sequence. Index[k] is the
// offset, in the source sequence, of the rune that produced Runes[k].
type Projection struct {
	Runes []rune
	Index []int
}

// Normalize returns the comparison form of s.
// The normalization pipeline:
// 1. Case-fold to lower.
// 2. Drop punctuation and symbols, except the hyphen.
// 3. Drop combining marks.
// 4. Collapse whitespace runs to a single space and trim.
func Normalize(s string) string {
	return NormalizeWith(s, NormalizeOptions{})
}

// NormalizeWith is Normalize with explicit options.
func NormalizeWith(s string, opts NormalizeOptions) string {
	return Project([]rune(s), opts).String()
}

// Project normalizes src and keeps track of where every surviving rune came
// from, so that matches found in normalized space map back to src offsets.
func Project(src []rune, opts NormalizeOptions) Projection {
	p := Projection{
		Runes: make([]rune, 0, len(src)),
		Index: make([]int, 0, len(src)),
	}

	var folder transform.Transformer
	if opts.FoldAccents {
		folder = newAccentFolder()
	}

	pendingSpace := -1

	for i, r := range src {
		if unicode.IsSpace(r) {
			if len(p.Runes) > 0 && pendingSpace < 0 {
				pendingSpace = i
			}

			continue
		}

		if IsDropped(r) {
			continue
		}

		r = unicode.ToLower(r)
		if folder != nil {
			r = foldRune(folder, r)
		}

		if pendingSpace >= 0 {
			p.Runes = append(p.Runes, ' ')
			p.Index = append(p.Index, pendingSpace)
			pendingSpace = -1
		}

		p.Runes = append(p.Runes, r)
		p.Index = append(p.Index, i)
	}

	return p
}

// String returns the normalized text.
func (p Projection) String() string {
	return string(p.Runes)
}

// Len returns the number of normalized runes.
func (p Projection) Len() int {
	return len(p.Runes)
}

// Bounds maps the normalized range [k, m) back to a half-open range of
// source offsets. The range must be non-empty.
func (p Projection) Bounds(k, m int) (int, int) {
	return p.Index[k], p.Index[m-1] + 1
}

// Compact returns the projection with all spaces removed.
func (p Projection) Compact() Projection {
	out := Projection{
		Runes: make([]rune, 0, len(p.Runes)),
		Index: make([]int, 0, len(p.Index)),
	}

	for k, r := range p.Runes {
		if r == ' ' {
			continue
		}

		out.Runes = append(out.Runes, r)
		out.Index = append(out.Index, p.Index[k])
	}

	return out
}

// IsDropped reports whether normalization discards r entirely.
// Whitespace is not dropped, it is collapsed.
func IsDropped(r rune) bool {
	if r == '-' {
		return false
	}

	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.Is(unicode.Mn, r)
}

// isBlank reports whether r contributes nothing at the edge of a span.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || IsDropped(r)
}

// isWordRune reports whether r is part of a word for boundary checks.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// StripSpaces removes every whitespace rune from s.
func StripSpaces(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// newAccentFolder builds a fresh transformer; transformers carry state and
// must not be shared between goroutines.
func newAccentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func foldRune(t transform.Transformer, r rune) rune {
	out, _, err := transform.String(t, string(r))
	if err != nil || out == "" {
		return r
	}

	folded, size := utf8.DecodeRuneInString(out)
	if size != len(out) {
		// Folding produced more than one rune; keep offsets one-to-one.
		return r
	}

	return folded
}
