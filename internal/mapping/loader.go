package mapping

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the syntax from the file extension. Unknown extensions are YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// LoadFile loads and parses a YAML or TOML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f *File

	switch FormatOf(path) {
	case FormatTOML:
		f, err = ParseTOML(data)
	default:
		f, err = Parse(data)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// ParseTOML parses TOML data into a File. A label_map table keeps the
// order its keys appear in the document.
func ParseTOML(data []byte) (*File, error) {
	var f File

	meta, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	if meta.IsDefined("label_map") && meta.Type("label_map") == "Hash" {
		var order []string

		for _, key := range meta.Keys() {
			if len(key) == 2 && key[0] == "label_map" {
				order = append(order, key[1])
			}
		}

		f.LabelMap = f.LabelMap.Reorder(order)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	f.Strategy = strings.ToLower(strings.TrimSpace(f.Strategy))

	for i := range f.LabelMap {
		e := &f.LabelMap[i]
		e.Field = strings.TrimSpace(e.Field)
		e.Label = strings.TrimSpace(e.Label)

		if e.Label == "" {
			e.Label = strings.ToUpper(e.Field)
		}
	}
}

// Marshal serializes a File in the given syntax.
func Marshal(f *File, format Format) ([]byte, error) {
	if format != FormatTOML {
		return yaml.Marshal(f)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteFile writes a File to the given path, in the syntax its extension names.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
