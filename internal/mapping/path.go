package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// PathSegment is one step of a record path.
type PathSegment struct {
	// Name is the record key.
	Name string
	// IsList marks a repeated group element.
	IsList bool
	// Index is the element position; -1 matches any element in patterns.
	Index int
}

// FieldPath locates a field inside a record, e.g. "violazioni[0].articolo".
type FieldPath struct {
	Segments []PathSegment
}

// String renders the path. Wildcard list segments render as "name[]".
func (p FieldPath) String() string {
	var b strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteByte('.')
		}

		b.WriteString(seg.Name)

		if seg.IsList {
			b.WriteByte('[')

			if seg.Index >= 0 {
				b.WriteString(strconv.Itoa(seg.Index))
			}

			b.WriteByte(']')
		}
	}

	return b.String()
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Leaf returns the last key of the path.
func (p FieldPath) Leaf() string {
	if p.IsEmpty() {
		return ""
	}

	return p.Segments[len(p.Segments)-1].Name
}

// Child returns a copy of p extended with key.
func (p FieldPath) Child(key string) FieldPath {
	return p.with(PathSegment{Name: key, Index: -1})
}

// Elem returns a copy of p extended with element i of the list key.
func (p FieldPath) Elem(key string, i int) FieldPath {
	return p.with(PathSegment{Name: key, IsList: true, Index: i})
}

func (p FieldPath) with(seg PathSegment) FieldPath {
	segs := make([]PathSegment, len(p.Segments), len(p.Segments)+1)
	copy(segs, p.Segments)

	return FieldPath{Segments: append(segs, seg)}
}

// Matches reports whether the concrete path p is matched by pattern.
// Pattern list segments without an index match every element.
func (p FieldPath) Matches(pattern FieldPath) bool {
	if len(p.Segments) != len(pattern.Segments) {
		return false
	}

	for i, want := range pattern.Segments {
		got := p.Segments[i]
		if got.Name != want.Name || got.IsList != want.IsList {
			return false
		}

		if want.IsList && want.Index >= 0 && got.Index != want.Index {
			return false
		}
	}

	return true
}

// ParsePath parses a field path string into a FieldPath.
// Supports: "targa", "verbale.targa", "violazioni[]", "violazioni[0].articolo".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		seg := PathSegment{Name: part, Index: -1}

		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return FieldPath{}, fmt.Errorf("invalid path %q: unterminated index in %q", path, part)
			}

			seg.Name = part[:open]
			seg.IsList = true

			if idx := part[open+1 : len(part)-1]; idx != "" {
				n, err := strconv.Atoi(idx)
				if err != nil || n < 0 {
					return FieldPath{}, fmt.Errorf("invalid path %q: bad index %q", path, idx)
				}

				seg.Index = n
			}

			if seg.Name == "" {
				return FieldPath{}, fmt.Errorf("invalid path %q: list without field name", path)
			}
		}

		if !isValidKey(seg.Name) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid key %q", path, seg.Name)
		}

		segments = append(segments, seg)
	}

	return FieldPath{Segments: segments}, nil
}

// ParsePaths parses multiple field paths.
func ParsePaths(paths StringOrArray) ([]FieldPath, error) {
	result := make([]FieldPath, 0, len(paths))

	for _, p := range paths {
		fp, err := ParsePath(p)
		if err != nil {
			return nil, err
		}

		result = append(result, fp)
	}

	return result, nil
}

// isValidKey accepts record keys: letters, digits, underscores and hyphens.
func isValidKey(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}

	return true
}
