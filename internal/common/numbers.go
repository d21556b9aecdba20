package common

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// IsInRange checks if a value is within the specified range, both inclusive.
func IsInRange[T number](lo, value, hi T) bool {
	return lo <= value && value <= hi
}

// Score bounds shared by thresholds and match scores.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// IsScore reports whether v is a valid 0-100 score.
func IsScore(v float64) bool {
	return IsInRange(MinScore, v, MaxScore)
}
