package align

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"weaklabel/internal/common"
	"weaklabel/internal/mapping"
)

// Kind is the shape of a record value.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindRecord
	KindList
	KindContextual
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindContextual:
		return "contextual"
	default:
		return common.UnknownStr
	}
}

// Contextual is a value with optional disambiguating neighbours.
type Contextual struct {
	Text   string `json:"text"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Value is one record value.
type Value struct {
	Kind Kind
	// Text is the scalar rendered as text (KindScalar).
	Text string
	// Record is the nested record (KindRecord).
	Record *Record
	// Items are the list elements (KindList).
	Items []Value
	// Context is the contextual value (KindContextual).
	Context Contextual

	raw any
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Scalar returns a scalar value.
func Scalar(s string) Value { return Value{Kind: KindScalar, Text: s, raw: s} }

// Nested returns a record value.
func Nested(r *Record) Value { return Value{Kind: KindRecord, Record: r} }

// List returns a list value.
func List(items ...Value) Value { return Value{Kind: KindList, Items: items} }

// WithContext returns a contextual value.
func WithContext(text, before, after string) Value {
	return Value{Kind: KindContextual, Context: Contextual{Text: text, Before: before, After: after}}
}

// IsBlank reports whether the value carries nothing to search for.
func (v Value) IsBlank() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindScalar:
		return strings.TrimSpace(v.Text) == ""
	case KindContextual:
		return strings.TrimSpace(v.Context.Text) == ""
	case KindRecord:
		return v.Record == nil || v.Record.Len() == 0
	case KindList:
		return len(v.Items) == 0
	default:
		return true
	}
}

// Field is one key/value pair of a record.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered extraction record. Decoding from JSON or YAML keeps
// document key order.
type Record struct {
	Fields []Field
}

// NewRecord builds a record from fields in the given order.
func NewRecord(fields ...Field) *Record {
	return &Record{Fields: fields}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}

	return len(r.Fields)
}

// Keys returns the keys in order.
func (r *Record) Keys() []string {
	out := make([]string, 0, r.Len())
	for _, f := range r.Fields {
		out = append(out, f.Key)
	}

	return out
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return Value{}, false
}

// Set replaces the value of key or appends a new field.
func (r *Record) Set(key string, v Value) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = v
			return
		}
	}

	r.Fields = append(r.Fields, Field{Key: key, Value: v})
}

// ParseRecord decodes a JSON or YAML object.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// UnmarshalYAML decodes a mapping node preserving key order.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	node = resolveNode(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: record must be a mapping, got %s", ErrInvalidInput, nodeKindName(node))
	}

	fields := make([]Field, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("invalid record key at line %d: %w", node.Content[i].Line, err)
		}

		v, err := valueFromNode(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		fields = append(fields, Field{Key: key, Value: v})
	}

	r.Fields = fields

	return nil
}

// UnmarshalJSON decodes a JSON object preserving key order. JSON is read
// through the YAML decoder, which keeps mapping order.
func (r *Record) UnmarshalJSON(data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}

	return r.UnmarshalYAML(&node)
}

// MarshalJSON encodes the record as an object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON encodes the value in its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindScalar:
		if v.raw != nil {
			return json.Marshal(v.raw)
		}

		return json.Marshal(v.Text)
	case KindRecord:
		if v.Record == nil {
			return []byte("{}"), nil
		}

		return v.Record.MarshalJSON()
	case KindList:
		if v.Items == nil {
			return []byte("[]"), nil
		}

		return json.Marshal(v.Items)
	case KindContextual:
		return json.Marshal(v.Context)
	default:
		return nil, fmt.Errorf("unknown value kind %d", int(v.Kind))
	}
}

func resolveNode(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch {
		case node.Kind == yaml.DocumentNode && len(node.Content) > 0:
			node = node.Content[0]
		case node.Kind == yaml.AliasNode && node.Alias != nil:
			node = node.Alias
		default:
			return node
		}
	}

	return node
}

func nodeKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "empty document"
	}
}

func valueFromNode(node *yaml.Node) (Value, error) {
	node = resolveNode(node)

	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return Null(), nil
		}

		var raw any
		if err := node.Decode(&raw); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}

		return scalarOf(raw), nil

	case yaml.MappingNode:
		if isContextualNode(node) {
			var c Contextual
			if err := node.Decode(&c); err != nil {
				return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
			}

			return Value{Kind: KindContextual, Context: c}, nil
		}

		var rec Record
		if err := rec.UnmarshalYAML(node); err != nil {
			return Value{}, err
		}

		return Nested(&rec), nil

	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))

		for i, item := range node.Content {
			v, err := valueFromNode(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}

			items = append(items, v)
		}

		return List(items...), nil

	default:
		return Null(), nil
	}
}

// isContextualNode recognizes {text, before?, after?} mappings.
func isContextualNode(node *yaml.Node) bool {
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}

	return isContextualKeys(keys)
}

func isContextualKeys(keys []string) bool {
	hasText := false

	for _, k := range keys {
		switch k {
		case "text":
			hasText = true
		case "before", "after":
		default:
			return false
		}
	}

	return hasText
}

// scalarOf renders a decoded scalar with Go's shortest formatting.
func scalarOf(raw any) Value {
	var text string

	switch v := raw.(type) {
	case string:
		text = v
	case bool:
		text = strconv.FormatBool(v)
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case uint64:
		text = strconv.FormatUint(v, 10)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		text = v.String()
	default:
		text = fmt.Sprint(v)
	}

	return Value{Kind: KindScalar, Text: text, raw: raw}
}

// FromMap builds a record from a Go map. Keys follow the label map's
// declaration order; unmapped keys come after, sorted.
func FromMap(m map[string]any, labels mapping.LabelMap) (*Record, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := labels.Index(keys[i]), labels.Index(keys[j])

		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	rec := &Record{Fields: make([]Field, 0, len(keys))}

	for _, k := range keys {
		v, err := valueFromGo(m[k], labels)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}

		rec.Fields = append(rec.Fields, Field{Key: k, Value: v})
	}

	return rec, nil
}

func valueFromGo(raw any, labels mapping.LabelMap) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case *Record:
		if v == nil {
			return Null(), nil
		}

		return Nested(v), nil
	case Record:
		return Nested(&v), nil
	case Contextual:
		return Value{Kind: KindContextual, Context: v}, nil
	case map[string]any:
		if isContextualMap(v) {
			c := Contextual{}
			c.Text, _ = v["text"].(string)
			c.Before, _ = v["before"].(string)
			c.After, _ = v["after"].(string)

			return Value{Kind: KindContextual, Context: c}, nil
		}

		rec, err := FromMap(v, labels)
		if err != nil {
			return Value{}, err
		}

		return Nested(rec), nil
	}

	rv := reflect.ValueOf(raw)

	switch rv.Kind() {
	case reflect.String:
		return scalarOf(rv.String()), nil
	case reflect.Bool:
		return scalarOf(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalarOf(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalarOf(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return scalarOf(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		items := make([]Value, 0, rv.Len())

		for i := range rv.Len() {
			item, err := valueFromGo(rv.Index(i).Interface(), labels)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}

			items = append(items, item)
		}

		return List(items...), nil
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}

		if m, ok := stringKeyed(rv); ok {
			return valueFromGo(m, labels)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}

		return valueFromGo(rv.Elem().Interface(), labels)
	}

	return Value{}, fmt.Errorf("%w: unsupported value type %T", ErrInvalidInput, raw)
}

// stringKeyed copies a map with string-kinded keys into a map[string]any.
func stringKeyed(rv reflect.Value) (map[string]any, bool) {
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}

	m := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}

	return m, true
}

func isContextualMap(m map[string]any) bool {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if _, ok := v.(string); !ok && v != nil {
			return false
		}

		keys = append(keys, k)
	}

	return isContextualKeys(keys)
}

// toRecord accepts the record forms Align supports.
func toRecord(record any, labels mapping.LabelMap) (*Record, error) {
	switch r := record.(type) {
	case *Record:
		if r == nil {
			return nil, fmt.Errorf("%w: nil record", ErrInvalidInput)
		}

		return r, nil
	case Record:
		return &r, nil
	case map[string]any:
		if r == nil {
			return nil, fmt.Errorf("%w: nil record", ErrInvalidInput)
		}

		return FromMap(r, labels)
	case nil:
		return nil, fmt.Errorf("%w: nil record", ErrInvalidInput)
	}

	if m, ok := stringKeyed(reflect.ValueOf(record)); ok {
		return FromMap(m, labels)
	}

	return nil, fmt.Errorf("%w: record must be a mapping, got %T", ErrInvalidInput, record)
}
