package align

import (
	"errors"
)

var (
	// ErrInvalidInput means the text is empty or the record is not a mapping.
	// It is the only failure that aborts an alignment.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig means the aligner configuration is unusable.
	ErrInvalidConfig = errors.New("invalid config")
)
