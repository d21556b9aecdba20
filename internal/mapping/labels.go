package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelEntry binds a record key to an entity label.
type LabelEntry struct {
	Field string `yaml:"field" toml:"field"`
	Label string `yaml:"label" toml:"label"`
}

// LabelMap is an ordered field-to-label table. Declaration order decides
// the visiting order of fields built from unordered maps.
type LabelMap []LabelEntry

// DefaultLabelMap returns the label table of the traffic-violation reports.
func DefaultLabelMap() LabelMap {
	return LabelMap{
		{"verbale_preavviso", "TIPO_DOCUMENTO"},
		{"data_violazione", "DATA_VIOLAZIONE"},
		{"ora_violazione", "ORA_VIOLAZIONE"},
		{"data_verbalizzazione", "DATA_VERBALIZZAZIONE"},
		{"ora_verbalizzazione", "ORA_VERBALIZZAZIONE"},
		{"luogo_verbalizzazione", "LUOGO_VERBALIZZAZIONE"},
		{"Strada_1", "STRADA_VIOLAZIONE"},
		{"Civico_1", "CIVICO_VIOLAZIONE"},
		{"tipologia", "VEICOLO_TIPOLOGIA"},
		{"nazione", "VEICOLO_NAZIONE"},
		{"targa", "VEICOLO_TARGA"},
		{"tipologia_targa", "VEICOLO_TIPOLOGIA_TARGA"},
		{"marca_modello", "VEICOLO_MARCA_MODELLO"},
		{"colore", "VEICOLO_COLORE"},
		{"telaio", "VEICOLO_TELAIO"},
		{"massa", "VEICOLO_MASSA"},
		{"note_veicolo", "VEICOLO_NOTE"},
		{"contestazione_immediata", "CONTESTAZIONE"},
		{"motivo_mancata_contestazione", "MOTIVO_MANCATA_CONTESTAZIONE"},
		{"codice", "VIOLAZIONE_CODICE"},
		{"articolo", "VIOLAZIONE_ARTICOLO"},
		{"comma", "VIOLAZIONE_COMMA"},
		{"sanzione_accessoria", "VIOLAZIONE_SANZIONE_ACCESSORIA"},
		{"punti", "PUNTI_DECURTATI"},
		{"dichiarazioni", "DICHIARAZIONI"},
		{"tipo_stampa", "TIPO_STAMPA"},
		{"lingua_stampa", "LINGUA_STAMPA"},
		{"stampa_anche_comunicazione", "STAMPA_COMUNICAZIONE"},
	}
}

// Lookup returns the label declared for field. The first declaration wins.
func (m LabelMap) Lookup(field string) (string, bool) {
	if i := m.Index(field); i >= 0 {
		return m[i].Label, true
	}

	return "", false
}

// Label returns the declared label, or the upper-cased key when the field
// is not mapped.
func (m LabelMap) Label(field string) string {
	if label, ok := m.Lookup(field); ok {
		return label
	}

	return strings.ToUpper(field)
}

// Index returns the declaration position of field, or -1.
func (m LabelMap) Index(field string) int {
	for i, e := range m {
		if e.Field == field {
			return i
		}
	}

	return -1
}

// Fields returns the mapped keys in declaration order.
func (m LabelMap) Fields() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Field
	}

	return out
}

// Set replaces the label of field or appends a new entry.
func (m *LabelMap) Set(field, label string) {
	if i := m.Index(field); i >= 0 {
		(*m)[i].Label = label
		return
	}

	*m = append(*m, LabelEntry{Field: field, Label: label})
}

// Merge overlays other on a copy of m. Existing keys keep their position.
func (m LabelMap) Merge(other LabelMap) LabelMap {
	out := m.Clone()
	for _, e := range other {
		out.Set(e.Field, e.Label)
	}

	return out
}

// Clone returns an independent copy.
func (m LabelMap) Clone() LabelMap {
	return append(LabelMap(nil), m...)
}

// Duplicates returns keys declared more than once, in first-seen order.
func (m LabelMap) Duplicates() []string {
	seen := make(map[string]int, len(m))

	var dups []string

	for _, e := range m {
		seen[e.Field]++
		if seen[e.Field] == 2 {
			dups = append(dups, e.Field)
		}
	}

	return dups
}

// Reorder moves the listed fields to the front in the given order. Fields
// not listed keep their relative order after them.
func (m LabelMap) Reorder(order []string) LabelMap {
	out := make(LabelMap, 0, len(m))
	used := make([]bool, len(m))

	for _, f := range order {
		for i, e := range m {
			if !used[i] && e.Field == f {
				out = append(out, e)
				used[i] = true

				break
			}
		}
	}

	for i, e := range m {
		if !used[i] {
			out = append(out, e)
		}
	}

	return out
}

// UnmarshalYAML accepts either a mapping (field: LABEL), whose document
// order is preserved, or a sequence of {field, label} entries.
func (m *LabelMap) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(LabelMap, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			var field, label string

			if err := node.Content[i].Decode(&field); err != nil {
				return fmt.Errorf("invalid label map key: %w", err)
			}

			if err := node.Content[i+1].Decode(&label); err != nil {
				return fmt.Errorf("invalid label for %q: %w", field, err)
			}

			out = append(out, LabelEntry{Field: field, Label: label})
		}

		*m = out

		return nil

	case yaml.SequenceNode:
		var entries []LabelEntry
		if err := node.Decode(&entries); err != nil {
			return err
		}

		*m = entries

		return nil

	default:
		return fmt.Errorf("expected mapping or list for label map, got %v", node.Kind)
	}
}

// MarshalYAML emits the table as an ordered mapping.
func (m LabelMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, e := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Field},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Label},
		)
	}

	return node, nil
}

// UnmarshalTOML accepts a table (field = "LABEL") or an array of
// {field, label} tables. TOML tables decode unordered, so keys are sorted
// here and the loader restores document order from the decoder metadata.
func (m *LabelMap) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		out := make(LabelMap, 0, len(keys))

		for _, k := range keys {
			label, ok := v[k].(string)
			if !ok {
				return fmt.Errorf("label for %q must be a string", k)
			}

			out = append(out, LabelEntry{Field: k, Label: label})
		}

		*m = out

		return nil

	case []map[string]any:
		out := make(LabelMap, 0, len(v))

		for _, item := range v {
			e, err := labelEntryFromTOML(item)
			if err != nil {
				return err
			}

			out = append(out, e)
		}

		*m = out

		return nil

	case []any:
		out := make(LabelMap, 0, len(v))

		for _, raw := range v {
			item, ok := raw.(map[string]any)
			if !ok {
				return errors.New("label map entries must be tables")
			}

			e, err := labelEntryFromTOML(item)
			if err != nil {
				return err
			}

			out = append(out, e)
		}

		*m = out

		return nil

	default:
		return fmt.Errorf("expected table or array for label map, got %T", data)
	}
}

func labelEntryFromTOML(item map[string]any) (LabelEntry, error) {
	field, _ := item["field"].(string)
	label, _ := item["label"].(string)

	if field == "" {
		return LabelEntry{}, errors.New("label map entry without field")
	}

	return LabelEntry{Field: field, Label: label}, nil
}
