package common

import "strings"

// UnknownStr is the String() value of out-of-range enum values.
const UnknownStr = "unknown"

// ContainsFold reports whether list holds s, ignoring case and surrounding space.
func ContainsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}

	return false
}
