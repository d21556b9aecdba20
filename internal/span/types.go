package span

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Span is an entity annotation over the source text.
type Span struct {
	// Start and End delimit the half-open rune range.
	Start int `json:"start" msgpack:"start"`
	End   int `json:"end" msgpack:"end"`
	// Label is the output entity label.
	Label string `json:"label" msgpack:"label"`
	// Text is the matched substring of the original text.
	Text string `json:"text" msgpack:"text"`
	// Field is the record key that produced the span.
	Field string `json:"field" msgpack:"field"`
	// Path locates the field inside the record, e.g. "violazioni[0].articolo".
	Path string `json:"path" msgpack:"path"`
	// Query is the normalized search target that matched.
	Query string `json:"query" msgpack:"query"`
	// Score is the 0-100 match score.
	Score float64 `json:"score" msgpack:"score"`
}

// Entity is the (start, end, label) triple consumed by sequence-labelling trainers.
type Entity struct {
	Start int
	End   int
	Label string
}

// Entity projects the span to its training triple.
func (s Span) Entity() Entity {
	return Entity{Start: s.Start, End: s.End, Label: s.Label}
}

// Len returns the number of runes covered.
func (s Span) Len() int { return s.End - s.Start }

// Valid reports whether 0 <= start < end <= n.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

// Overlaps reports whether the two ranges share at least one rune.
func (s Span) Overlaps(o Span) bool {
	return max(s.Start, o.Start) < min(s.End, o.End)
}

// SameBounds reports whether both spans cover exactly the same range.
func (s Span) SameBounds(o Span) bool {
	return s.Start == o.Start && s.End == o.End
}

// Contains reports whether s is a strict superset of o.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End && !s.SameBounds(o)
}

// String returns "[start:end/LABEL]".
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d/%s]", s.Start, s.End, s.Label)
}

// Tuple returns the entity as a [start, end, label] array.
func (e Entity) Tuple() []any {
	return []any{e.Start, e.End, e.Label}
}

// MarshalJSON encodes the entity as a [start, end, label] array.
func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Tuple())
}

// Sort orders spans by start, then end, then label.
func Sort(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}

		if a.End != b.End {
			return a.End < b.End
		}

		return a.Label < b.Label
	})
}

// Dedup removes spans repeating an earlier (start, end, label) triple,
// keeping the first.
func Dedup(spans []Span) []Span {
	seen := make(map[Entity]bool, len(spans))
	out := spans[:0:0]

	for _, s := range spans {
		if seen[s.Entity()] {
			continue
		}

		seen[s.Entity()] = true
		out = append(out, s)
	}

	return out
}
