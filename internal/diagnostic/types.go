package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"weaklabel/internal/span"
)

// Diagnostic describes one field that produced no span.
type Diagnostic struct {
	// Reason is the most informative failure across the tried variants.
	Reason Reason `json:"reason" msgpack:"reason"`
	// Label is the resolved entity label of the field.
	Label string `json:"label" msgpack:"label"`
	// Field is the record key.
	Field string `json:"field" msgpack:"field"`
	// Path locates the field inside the record.
	Path string `json:"path" msgpack:"path"`
	// Value is the searched value after canonicalization.
	Value string `json:"value" msgpack:"value"`
	// Raw is the value as it appeared in the record, when it differs.
	Raw string `json:"raw,omitempty" msgpack:"raw,omitempty"`
	// Message is the human-readable description.
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
	// BestScore is the highest score seen by a fuzzy search, if any.
	BestScore float64 `json:"best_score,omitempty" msgpack:"best_score,omitempty"`
	// Candidate is the span that was found but refused.
	Candidate *span.Span `json:"candidate,omitempty" msgpack:"candidate,omitempty"`
	// Conflict is the accepted span the candidate collided with.
	Conflict *span.Span `json:"conflict,omitempty" msgpack:"conflict,omitempty"`
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Label != "" {
		prefix = append(prefix, "["+d.Label+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := fmt.Sprintf("[%s] %q", d.Reason, d.Value)
	if d.Message != "" {
		msg += " " + d.Message
	}

	if d.Conflict != nil {
		msg += " conflicts with " + d.Conflict.String()
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

// List holds the diagnostics of one alignment in visitation order.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Merge appends all diagnostics from other.
func (l *List) Merge(other List) {
	*l = append(*l, other...)
}

// IsEmpty reports whether every field produced a span.
func (l List) IsEmpty() bool {
	return len(l) == 0
}

// ByReason returns the diagnostics with the given reason, in order.
func (l List) ByReason(r Reason) List {
	var out List

	for _, d := range l {
		if d.Reason == r {
			out = append(out, d)
		}
	}

	return out
}

// ByLabel returns the diagnostics for the given label, in order.
func (l List) ByLabel(label string) List {
	var out List

	for _, d := range l {
		if d.Label == label {
			out = append(out, d)
		}
	}

	return out
}

// Count returns the number of diagnostics with the given reason.
func (l List) Count(r Reason) int {
	n := 0

	for _, d := range l {
		if d.Reason == r {
			n++
		}
	}

	return n
}

// Counts returns the number of diagnostics per reason, indexed by Reason.
func (l List) Counts() [ReasonTotal]int {
	var out [ReasonTotal]int

	for _, d := range l {
		if d.Reason >= 0 && int(d.Reason) < ReasonTotal {
			out[d.Reason]++
		}
	}

	return out
}

// Err returns a combined error describing every diagnostic, or nil.
func (l List) Err() error {
	if l.IsEmpty() {
		return nil
	}

	errs := make([]error, 0, len(l))
	for _, d := range l {
		errs = append(errs, errors.New(d.String()))
	}

	return errors.Join(errs...)
}

// String returns one diagnostic per line.
func (l List) String() string {
	parts := make([]string, 0, len(l))
	for _, d := range l {
		parts = append(parts, d.String())
	}

	return strings.Join(parts, "\n")
}
