package diagnostic

import (
	"fmt"
)

//go:generate go tool stringer -type=Reason -linecomment -output=reason_string.go

// Reason classifies a field that produced no span. Higher values are more
// informative and win when several search variants fail differently.
type Reason int

const (
	NotFound        Reason = iota // not_found
	ContextMismatch               // context_mismatch
	OverlapRejected               // overlap_rejected
	TextTooLong                   // text_too_long

	// ReasonTotal is the number of defined reasons.
	ReasonTotal = int(iota)
)

// Outranks reports whether r is more informative than o.
func (r Reason) Outranks(o Reason) bool {
	return r > o
}

// MarshalText encodes the reason by name.
func (r Reason) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= ReasonTotal {
		return nil, fmt.Errorf("invalid reason %d", int(r))
	}

	return []byte(r.String()), nil
}

// UnmarshalText decodes a reason name.
func (r *Reason) UnmarshalText(text []byte) error {
	v, err := ParseReason(string(text))
	if err != nil {
		return err
	}

	*r = v

	return nil
}

// ParseReason returns the reason with the given name.
func ParseReason(s string) (Reason, error) {
	for i := range ReasonTotal {
		if Reason(i).String() == s {
			return Reason(i), nil
		}
	}

	return 0, fmt.Errorf("unknown reason %q", s)
}
