package span

import (
	"weaklabel/internal/common"
)

// Decision is the outcome of offering a span to the registry.
type Decision int

const (
	// Accepted means the span was inserted.
	Accepted Decision = iota
	// RejectedSameLabel means it overlaps an accepted span with the same label.
	RejectedSameLabel
	// RejectedIdentical means an accepted span with another label has the same bounds.
	RejectedIdentical
	// RejectedCrossing means it partially overlaps an accepted span with another label.
	RejectedCrossing
	// RejectedConsumed means masking is on and the range was already consumed.
	RejectedConsumed
	// RejectedOutOfRange means the bounds violate 0 <= start < end <= len(text).
	RejectedOutOfRange
)

// String returns a human-readable decision name.
func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case RejectedSameLabel:
		return "same_label_overlap"
	case RejectedIdentical:
		return "identical_bounds"
	case RejectedCrossing:
		return "crossing_overlap"
	case RejectedConsumed:
		return "consumed"
	case RejectedOutOfRange:
		return "out_of_range"
	default:
		return common.UnknownStr
	}
}

// WorkingCopy is a same-length mutable copy of the source text used only for
// searching. Masked ranges are blanked with spaces so offsets stay valid.
type WorkingCopy struct {
	runes []rune
}

// NewWorkingCopy copies text.
func NewWorkingCopy(text []rune) *WorkingCopy {
	return &WorkingCopy{runes: append([]rune(nil), text...)}
}

// Mask overwrites [start, end) with spaces. Out-of-range parts are ignored.
func (w *WorkingCopy) Mask(start, end int) {
	start = max(start, 0)
	end = min(end, len(w.runes))

	for i := start; i < end; i++ {
		w.runes[i] = ' '
	}
}

// Runes returns the current working text. Callers must not modify it.
func (w *WorkingCopy) Runes() []rune {
	return w.runes
}

// Registry accumulates accepted spans for one text.
type Registry struct {
	text  []rune
	work  *WorkingCopy
	mask  bool
	spans []Span
}

// NewRegistry creates a registry over text. With mask on, accepted ranges are
// consumed from the working copy.
func NewRegistry(text []rune, mask bool) *Registry {
	return &Registry{
		text: text,
		work: NewWorkingCopy(text),
		mask: mask,
	}
}

// Offer applies the overlap policy to c. On rejection the conflicting
// accepted span is returned (nil for out-of-range candidates).
func (r *Registry) Offer(c Span) (Decision, *Span) {
	if !c.Valid(len(r.text)) {
		return RejectedOutOfRange, nil
	}

	for i := range r.spans {
		ex := &r.spans[i]
		if !c.Overlaps(*ex) {
			continue
		}

		if d := r.judge(c, *ex); d != Accepted {
			conflict := *ex
			return d, &conflict
		}
	}

	c.Text = string(r.text[c.Start:c.End])
	r.spans = append(r.spans, c)

	if r.mask {
		r.work.Mask(c.Start, c.End)
	}

	return Accepted, nil
}

// judge decides between a candidate and one overlapping accepted span.
func (r *Registry) judge(c, ex Span) Decision {
	switch {
	case c.Label == ex.Label:
		return RejectedSameLabel
	case r.mask:
		return RejectedConsumed
	case c.SameBounds(ex):
		return RejectedIdentical
	case c.Contains(ex) || ex.Contains(c):
		return Accepted
	default:
		return RejectedCrossing
	}
}

// Work returns the working copy searched by the next field.
func (r *Registry) Work() []rune {
	return r.work.Runes()
}

// Masking reports whether accepted ranges are consumed.
func (r *Registry) Masking() bool {
	return r.mask
}

// Len returns the number of accepted spans.
func (r *Registry) Len() int {
	return len(r.spans)
}

// Spans returns the accepted spans deduplicated and sorted by position.
func (r *Registry) Spans() []Span {
	out := Dedup(append([]Span(nil), r.spans...))
	Sort(out)

	return out
}
