package align

import (
	"strings"

	"weaklabel/internal/match"
)

// variant is one concrete search target derived from a field value.
type variant struct {
	needle match.Needle
	// prefix, when set, is the key word prepended to a citation value; the
	// accepted span is narrowed past it.
	prefix string
	// value is the citation value without the prefix.
	value string
}

// leafValue is what the walker extracts from a searchable value.
type leafValue struct {
	raw    string
	before string
	after  string
}

// variants lists the targets tried for one field, in order:
//   - plate fields: whitespace-free form, then literal;
//   - citation fields with prefixing on: "<key> <value>", then the value;
//   - the raw value when canonicalization rewrote it.
func (a *Aligner) variants(key string, lv leafValue, canonical string) []variant {
	var out []variant

	seen := make(map[variant]bool)
	add := func(v variant) {
		if strings.TrimSpace(v.needle.Text) == "" || seen[v] {
			return
		}

		seen[v] = true
		out = append(out, v)
	}

	forms := []string{canonical}
	if match.Normalize(canonical) != match.Normalize(lv.raw) {
		forms = append(forms, lv.raw)
	}

	for _, text := range forms {
		base := match.Needle{Text: text, Before: lv.before, After: lv.after}

		switch {
		case a.cfg.isPlate(key):
			compact := base
			compact.Compact = true
			add(variant{needle: compact})
			add(variant{needle: base})

		case a.cfg.isCitation(key) && a.cfg.CitationPrefix:
			prefixed := base
			prefixed.Text = key + " " + text
			add(variant{needle: prefixed, prefix: key, value: text})
			add(variant{needle: base})

		default:
			add(variant{needle: base})
		}
	}

	return out
}

// settle narrows a prefixed match onto its value and scores the value part
// alone against the bare value. ok is false when that score is below the
// threshold: the prefix carried the match and the remaining span is not the
// value.
func (a *Aligner) settle(text []rune, c match.Candidate, vr variant) (match.Candidate, bool) {
	start := narrow(text, c.Start, c.End, vr.prefix, a.opts)
	query := match.NormalizeWith(vr.value, a.opts)

	out := match.Candidate{
		Start: start,
		End:   c.End,
		Query: query,
		Score: match.NormalizedRatio(string(text[start:c.End]), vr.value, a.opts),
	}

	return out, start != c.Start && out.Score >= a.cfg.MinScore()
}

// narrow moves start past a leading "<prefix> " in the matched text. The
// span is unchanged when the match does not begin with the prefix word.
func narrow(text []rune, start, end int, prefix string, opts match.NormalizeOptions) int {
	word := match.NormalizeWith(prefix, opts)
	if word == "" {
		return start
	}

	p := match.Project(text[start:end], opts)
	head := []rune(word + " ")

	if p.Len() <= len(head) || !strings.HasPrefix(p.String(), string(head)) {
		return start
	}

	return start + p.Index[len(head)]
}
