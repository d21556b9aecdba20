package align

import (
	"weaklabel/internal/diagnostic"
	"weaklabel/internal/span"
)

// Result is the outcome of aligning one record.
type Result struct {
	// Text is the source text; span offsets index its runes.
	Text string `json:"text" msgpack:"text"`
	// Spans are the accepted spans, sorted by position.
	Spans []span.Span `json:"spans" msgpack:"spans"`
	// Diagnostics describe fields that produced no span, in visiting order.
	Diagnostics diagnostic.List `json:"diagnostics" msgpack:"diagnostics"`
}

// Entities projects the spans to (start, end, label) triples.
func (r *Result) Entities() []span.Entity {
	out := make([]span.Entity, 0, len(r.Spans))
	for _, s := range r.Spans {
		out = append(out, s.Entity())
	}

	return out
}

// Labels returns the labels present in the result, in span order, once each.
func (r *Result) Labels() []string {
	seen := make(map[string]bool, len(r.Spans))

	var out []string

	for _, s := range r.Spans {
		if !seen[s.Label] {
			seen[s.Label] = true
			out = append(out, s.Label)
		}
	}

	return out
}

// Covered returns the matched substring of every span, in order.
func (r *Result) Covered() []string {
	runes := []rune(r.Text)
	out := make([]string, 0, len(r.Spans))

	for _, s := range r.Spans {
		out = append(out, string(runes[s.Start:s.End]))
	}

	return out
}
