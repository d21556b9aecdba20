package mapping

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"weaklabel/internal/common"
)

// File is the on-disk aligner configuration (YAML or TOML).
type File struct {
	// Version is the schema version (defaults to "1").
	Version string `yaml:"version" toml:"version"`
	// Strategy is "fuzzy" or "exact".
	Strategy string `yaml:"strategy,omitempty" toml:"strategy,omitempty"`
	// Threshold is the minimum fuzzy score in [0, 100].
	Threshold *float64 `yaml:"threshold,omitempty" toml:"threshold,omitempty"`
	// Mask overrides the strategy's masking default.
	Mask *bool `yaml:"mask,omitempty" toml:"mask,omitempty"`
	// FoldAccents strips diacritics before comparison.
	FoldAccents bool `yaml:"fold_accents,omitempty" toml:"fold_accents,omitempty"`
	// CitationPrefix searches "articolo 6" before "6" for citation fields.
	CitationPrefix *bool `yaml:"citation_prefix,omitempty" toml:"citation_prefix,omitempty"`
	// MaxTextRunes bounds the text length for fuzzy search (0 = unlimited).
	MaxTextRunes int `yaml:"max_text_runes,omitempty" toml:"max_text_runes,omitempty"`
	// PlateFields are keys searched whitespace-insensitively first.
	PlateFields StringOrArray `yaml:"plate_fields,omitempty" toml:"plate_fields,omitempty"`
	// CitationFields are keys whose values are legal citation numbers.
	CitationFields StringOrArray `yaml:"citation_fields,omitempty" toml:"citation_fields,omitempty"`
	// GroupKeys are the repeated-group keys, walked last in this order.
	GroupKeys StringOrArray `yaml:"group_keys,omitempty" toml:"group_keys,omitempty"`
	// IgnoreLabels are labels never searched.
	IgnoreLabels StringOrArray `yaml:"ignore_labels,omitempty" toml:"ignore_labels,omitempty"`
	// IgnoreFields are record paths never searched, e.g. "lista_veicoli[].telaio".
	IgnoreFields StringOrArray `yaml:"ignore_fields,omitempty" toml:"ignore_fields,omitempty"`
	// LabelMap maps record keys to labels, in visiting order.
	LabelMap LabelMap `yaml:"label_map,omitempty" toml:"label_map,omitempty"`
	// Canonical lists value rewrites applied before search.
	Canonical []CanonicalEntry `yaml:"canonical,omitempty" toml:"canonical,omitempty"`
	// UseDefaults merges LabelMap and Canonical over the built-in tables
	// (defaults to true).
	UseDefaults *bool `yaml:"use_defaults,omitempty" toml:"use_defaults,omitempty"`
}

// Defaults reports whether the built-in tables are merged in.
func (f *File) Defaults() bool {
	return f.UseDefaults == nil || *f.UseDefaults
}

// Labels returns the effective label map.
func (f *File) Labels() LabelMap {
	if !f.Defaults() {
		return f.LabelMap.Clone()
	}

	return DefaultLabelMap().Merge(f.LabelMap)
}

// CanonicalMap returns the effective canonical table.
func (f *File) CanonicalMap() CanonicalMap {
	own := NewCanonicalMap(f.Canonical...)
	if !f.Defaults() {
		return own
	}

	return DefaultCanonicalMap().Merge(own)
}

// StringOrArray represents a value that can be either a single string or an array of strings.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if s.IsSingle() {
		return s.First(), nil
	}

	return []string(s), nil
}

// UnmarshalTOML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		if v != "" {
			*s = StringOrArray{v}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case []any:
		arr := make(StringOrArray, 0, len(v))

		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return errors.New("expected array of strings")
			}

			arr = append(arr, str)
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %T", data)
	}
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// IsSingle returns true if the array has exactly one element.
func (s StringOrArray) IsSingle() bool {
	return common.IsSingle(s)
}
