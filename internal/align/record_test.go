package align

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weaklabel/internal/mapping"
)

func TestParseRecord_KeepsOrder(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"zeta": "1", "alfa": "2", "mezzo": {"b": "x", "a": "y"}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alfa", "mezzo"}, rec.Keys())

	nested, ok := rec.Get("mezzo")
	require.True(t, ok)
	require.Equal(t, KindRecord, nested.Kind)
	assert.Equal(t, []string{"b", "a"}, nested.Record.Keys())
}

func TestParseRecord_Values(t *testing.T) {
	rec, err := ParseRecord([]byte(`{
		"stringa": "AB123CD",
		"intero": 146,
		"decimale": 1.5,
		"booleano": true,
		"nullo": null,
		"lista": ["a", 2],
		"contesto": {"text": "due", "after": "punti"},
		"non_contesto": {"text": "due", "altro": "x"}
	}`))
	require.NoError(t, err)

	tests := []struct {
		key  string
		kind Kind
		text string
	}{
		{"stringa", KindScalar, "AB123CD"},
		{"intero", KindScalar, "146"},
		{"decimale", KindScalar, "1.5"},
		{"booleano", KindScalar, "true"},
		{"nullo", KindNull, ""},
		{"lista", KindList, ""},
		{"contesto", KindContextual, ""},
		{"non_contesto", KindRecord, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := rec.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.kind, v.Kind, v.Kind.String())
			assert.Equal(t, tt.text, v.Text)
		})
	}

	list, _ := rec.Get("lista")
	require.Len(t, list.Items, 2)
	assert.Equal(t, "2", list.Items[1].Text)

	ctx, _ := rec.Get("contesto")
	assert.Equal(t, Contextual{Text: "due", After: "punti"}, ctx.Context)
}

func TestParseRecord_YAML(t *testing.T) {
	rec, err := ParseRecord([]byte("targa: AB123CD\nviolazioni:\n  - articolo: 146\n    comma: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"targa", "violazioni"}, rec.Keys())

	v, _ := rec.Get("violazioni")
	require.Equal(t, KindList, v.Kind)
	require.Len(t, v.Items, 1)
	assert.Equal(t, []string{"articolo", "comma"}, v.Items[0].Record.Keys())
}

func TestParseRecord_NotAMapping(t *testing.T) {
	for _, data := range []string{`["a", "b"]`, `"targa"`, `12`} {
		t.Run(data, func(t *testing.T) {
			_, err := ParseRecord([]byte(data))
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	in := `{"zeta":146,"alfa":"x","ctx":{"text":"due","before":"sono"},"lista":[{"b":null,"a":true}],"vuota":[]}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Equal(t, in, string(out))
}

func TestRecord_Set(t *testing.T) {
	rec := NewRecord(Field{Key: "targa", Value: Scalar("AB123CD")})

	rec.Set("targa", Scalar("EF456GH"))
	rec.Set("colore", Scalar("rosso"))

	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, []string{"targa", "colore"}, rec.Keys())

	v, ok := rec.Get("targa")
	require.True(t, ok)
	assert.Equal(t, "EF456GH", v.Text)

	_, ok = rec.Get("telaio")
	assert.False(t, ok)

	var empty *Record
	assert.Equal(t, 0, empty.Len())
}

func TestValue_IsBlank(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		blank bool
	}{
		{"null", Null(), true},
		{"empty scalar", Scalar(""), true},
		{"spaces", Scalar(" \t "), true},
		{"scalar", Scalar("x"), false},
		{"empty context", WithContext(" ", "a", "b"), true},
		{"context", WithContext("due", "", "punti"), false},
		{"nil record", Nested(nil), true},
		{"empty record", Nested(NewRecord()), true},
		{"record", Nested(NewRecord(Field{Key: "a", Value: Null()})), false},
		{"empty list", List(), true},
		{"list", List(Null()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blank, tt.value.IsBlank())
		})
	}
}

func TestFromMap_Order(t *testing.T) {
	m := map[string]any{
		"zzz":   "1",
		"punti": 2,
		"aaa":   "3",
		"targa": "AB123CD",
	}

	rec, err := FromMap(m, mapping.DefaultLabelMap())
	require.NoError(t, err)

	assert.Equal(t, []string{"targa", "punti", "aaa", "zzz"}, rec.Keys())

	v, _ := rec.Get("punti")
	assert.Equal(t, "2", v.Text)
}

func TestFromMap_Values(t *testing.T) {
	type plate string

	m := map[string]any{
		"ctx":     map[string]any{"text": "due", "after": "punti"},
		"nested":  map[string]any{"targa": plate("AB123CD")},
		"list":    []string{"a", "b"},
		"numbers": map[string]int{"uno": 1},
		"pointer": (*string)(nil),
		"float":   float32(2.5),
	}

	rec, err := FromMap(m, nil)
	require.NoError(t, err)

	ctx, _ := rec.Get("ctx")
	assert.Equal(t, KindContextual, ctx.Kind)
	assert.Equal(t, "punti", ctx.Context.After)

	nested, _ := rec.Get("nested")
	require.Equal(t, KindRecord, nested.Kind)
	targa, _ := nested.Record.Get("targa")
	assert.Equal(t, "AB123CD", targa.Text)

	list, _ := rec.Get("list")
	assert.Len(t, list.Items, 2)

	numbers, _ := rec.Get("numbers")
	require.Equal(t, KindRecord, numbers.Kind)
	uno, _ := numbers.Record.Get("uno")
	assert.Equal(t, "1", uno.Text)

	pointer, _ := rec.Get("pointer")
	assert.Equal(t, KindNull, pointer.Kind)

	float, _ := rec.Get("float")
	assert.Equal(t, "2.5", float.Text)
}

func TestFromMap_Unsupported(t *testing.T) {
	_, err := FromMap(map[string]any{"canale": make(chan int)}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "canale")
}
