package align

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weaklabel/internal/diagnostic"
	"weaklabel/internal/mapping"
	"weaklabel/internal/match"
	"weaklabel/internal/span"
)

func mustParse(t *testing.T, js string) *Record {
	t.Helper()

	rec, err := ParseRecord([]byte(js))
	require.NoError(t, err)

	return rec
}

func boolPtr(b bool) *bool { return &b }

func TestAlign_ScenarioA_Plate(t *testing.T) {
	res, err := Align("la targa è AB123CD", map[string]any{"targa": "AB123CD"}, Config{})
	require.NoError(t, err)

	require.Len(t, res.Spans, 1, spew.Sdump(res))
	assert.Equal(t, []span.Entity{{Start: 11, End: 18, Label: "TARGA"}}, res.Entities())
	assert.Equal(t, "AB123CD", res.Spans[0].Text)
	assert.Empty(t, res.Diagnostics)
}

func TestAlign_ScenarioB_Canonical(t *testing.T) {
	cfg := Config{
		Canonical: mapping.NewCanonicalMap(mapping.CanonicalEntry{Label: "PUNTI", Phrase: "2", Canonical: "due"}),
	}

	res, err := Align("due punti da decurtare", map[string]any{"punti": "2"}, cfg)
	require.NoError(t, err)

	require.Len(t, res.Spans, 1, spew.Sdump(res))
	s := res.Spans[0]
	assert.Equal(t, span.Entity{Start: 0, End: 3, Label: "PUNTI"}, s.Entity())
	assert.Equal(t, "due", s.Text)
	assert.Equal(t, "due", s.Query)
	assert.Empty(t, res.Diagnostics)
}

func TestAlign_ScenarioC_SpacedPlate(t *testing.T) {
	for _, strategy := range []match.Strategy{match.StrategyFuzzyWindow, match.StrategyExactContextual} {
		t.Run(strategy.String(), func(t *testing.T) {
			res, err := Align("targa AB123 CD", map[string]any{"targa": "AB123CD"}, Config{Strategy: strategy})
			require.NoError(t, err)

			require.Len(t, res.Spans, 1, spew.Sdump(res))
			assert.Equal(t, span.Entity{Start: 6, End: 14, Label: "TARGA"}, res.Spans[0].Entity())
			assert.Equal(t, "AB123 CD", res.Spans[0].Text)
			assert.Equal(t, "ab123cd", res.Spans[0].Query)
		})
	}
}

func TestAlign_ScenarioD_SharedValue(t *testing.T) {
	rec := `{"punti": "uno", "civico_1": "uno"}`

	t.Run("fuzzy keeps the first and rejects the second", func(t *testing.T) {
		res, err := Align("civico uno", mustParse(t, rec), Config{})
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 7, End: 10, Label: "PUNTI"}}, res.Entities())

		require.Len(t, res.Diagnostics, 1)
		d := res.Diagnostics[0]
		assert.Equal(t, diagnostic.OverlapRejected, d.Reason)
		assert.Equal(t, "CIVICO_1", d.Label)
		require.NotNil(t, d.Candidate)
		require.NotNil(t, d.Conflict)
		assert.Equal(t, "PUNTI", d.Conflict.Label)
		assert.True(t, d.Candidate.SameBounds(*d.Conflict))
	})

	t.Run("exact masks the first and misses the second", func(t *testing.T) {
		cfg := Config{Strategy: match.StrategyExactContextual}

		res, err := Align("civico uno", mustParse(t, rec), cfg)
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 7, End: 10, Label: "PUNTI"}}, res.Entities())

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diagnostic.NotFound, res.Diagnostics[0].Reason)
		assert.Equal(t, "CIVICO_1", res.Diagnostics[0].Label)
	})
}

func TestAlign_ScenarioE_BlankValues(t *testing.T) {
	rec := mustParse(t, `{"targa": null, "colore": "", "punti": "   ", "violazioni": []}`)

	res, err := Align("la targa è AB123CD", rec, Config{})
	require.NoError(t, err)

	assert.Empty(t, res.Spans)
	assert.Empty(t, res.Diagnostics, "blank values are skipped, not reported")
}

func TestAlign_NotFoundIsReported(t *testing.T) {
	res, err := Align("la targa è AB123CD", map[string]any{"colore": "rosso"}, Config{})
	require.NoError(t, err)

	assert.Empty(t, res.Spans)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, diagnostic.NotFound, d.Reason)
	assert.Equal(t, "COLORE", d.Label)
	assert.Equal(t, "colore", d.Path)
	assert.Equal(t, "rosso", d.Value)
	assert.Empty(t, d.Raw)
}

func TestAlign_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		record any
	}{
		{"empty text", "", map[string]any{"targa": "x"}},
		{"blank text", " \t\n", map[string]any{"targa": "x"}},
		{"nil record", "testo", nil},
		{"nil record pointer", "testo", (*Record)(nil)},
		{"list record", "testo", []any{"x"}},
		{"string record", "testo", "targa"},
		{"unsupported value", "testo", map[string]any{"targa": struct{}{}}},
		{"int keyed map", "testo", map[int]string{1: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Align(tt.text, tt.record, Config{})
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, res)
		})
	}
}

func TestAlign_InvalidConfig(t *testing.T) {
	_, err := Align("testo", map[string]any{}, Config{Threshold: Score(120)})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{Strategy: match.Strategy(9)})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAlign_Context(t *testing.T) {
	text := "due auto e due punti decurtati"
	cfg := Config{Strategy: match.StrategyExactContextual}

	tests := []struct {
		name     string
		value    Value
		expected []span.Entity
		reason   diagnostic.Reason
	}{
		{
			name:     "context picks the second occurrence",
			value:    WithContext("due", "", "punti"),
			expected: []span.Entity{{Start: 11, End: 14, Label: "PUNTI"}},
		},
		{
			name:     "before token",
			value:    WithContext("due", "auto e", ""),
			expected: []span.Entity{{Start: 11, End: 14, Label: "PUNTI"}},
		},
		{
			name:   "context mismatch",
			value:  WithContext("due", "", "metri"),
			reason: diagnostic.ContextMismatch,
		},
		{
			name:   "absent value",
			value:  WithContext("tre", "", "punti"),
			reason: diagnostic.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Align(text, NewRecord(Field{Key: "punti", Value: tt.value}), cfg)
			require.NoError(t, err)

			if tt.expected != nil {
				assert.Equal(t, tt.expected, res.Entities())
				assert.Empty(t, res.Diagnostics)

				return
			}

			assert.Empty(t, res.Spans)
			require.Len(t, res.Diagnostics, 1)
			assert.Equal(t, tt.reason, res.Diagnostics[0].Reason)
		})
	}
}

func TestAlign_ContextFromJSON(t *testing.T) {
	rec := mustParse(t, `{"punti": {"text": "due", "after": "punti"}}`)

	res, err := Align("due auto e due punti decurtati", rec, Config{Strategy: match.StrategyExactContextual})
	require.NoError(t, err)

	assert.Equal(t, []span.Entity{{Start: 11, End: 14, Label: "PUNTI"}}, res.Entities())
}

func TestAlign_Nesting(t *testing.T) {
	text := "abito in via roma 5 oggi"
	noMask := Config{Strategy: match.StrategyExactContextual, Mask: boolPtr(false)}

	t.Run("nested spans with different labels are kept", func(t *testing.T) {
		rec := mustParse(t, `{"strada": "via roma", "indirizzo": "in via roma 5"}`)

		res, err := Align(text, rec, noMask)
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{
			{Start: 6, End: 19, Label: "INDIRIZZO"},
			{Start: 9, End: 17, Label: "STRADA"},
		}, res.Entities())
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("crossing spans are rejected", func(t *testing.T) {
		rec := mustParse(t, `{"strada": "via roma", "civico": "roma 5"}`)

		res, err := Align(text, rec, noMask)
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 9, End: 17, Label: "STRADA"}}, res.Entities())
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diagnostic.OverlapRejected, res.Diagnostics[0].Reason)
		assert.Equal(t, span.RejectedCrossing.String(), res.Diagnostics[0].Message)
	})

	t.Run("masking consumes the nested text", func(t *testing.T) {
		rec := mustParse(t, `{"strada": "via roma", "indirizzo": "in via roma 5"}`)

		res, err := Align(text, rec, Config{Strategy: match.StrategyExactContextual})
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 9, End: 17, Label: "STRADA"}}, res.Entities())
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diagnostic.NotFound, res.Diagnostics[0].Reason)
	})
}

func TestAlign_CitationPrefix(t *testing.T) {
	text := "sosta in via roma 6 articolo 6"
	rec := map[string]any{"articolo": "6"}

	t.Run("prefixed search narrowed to the value", func(t *testing.T) {
		cfg := Config{Strategy: match.StrategyExactContextual, CitationPrefix: true}

		res, err := Align(text, rec, cfg)
		require.NoError(t, err)

		require.Len(t, res.Spans, 1, spew.Sdump(res))
		assert.Equal(t, span.Entity{Start: 29, End: 30, Label: "ARTICOLO"}, res.Spans[0].Entity())
		assert.Equal(t, "6", res.Spans[0].Text)
		assert.Equal(t, "6", res.Spans[0].Query)
	})

	t.Run("bare value takes the first number", func(t *testing.T) {
		cfg := Config{Strategy: match.StrategyExactContextual}

		res, err := Align(text, rec, cfg)
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 18, End: 19, Label: "ARTICOLO"}}, res.Entities())
	})

	t.Run("falls back to the bare value", func(t *testing.T) {
		cfg := Config{Strategy: match.StrategyExactContextual, CitationPrefix: true}

		res, err := Align("art. 6 del codice", rec, cfg)
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 5, End: 6, Label: "ARTICOLO"}}, res.Entities())
	})
}

func TestAlign_CitationPrefixRescoresValuePart(t *testing.T) {
	rec := mustParse(t, `{"violazioni": [{"articolo": "186"}]}`)

	t.Run("near miss on the prefix is not narrowed into another number", func(t *testing.T) {
		res, err := Align("violazione articolo 185 del codice della strada", rec, DefaultConfig())
		require.NoError(t, err)

		assert.Empty(t, res.Spans, spew.Sdump(res))
		require.Len(t, res.Diagnostics, 1)

		d := res.Diagnostics[0]
		assert.Equal(t, diagnostic.NotFound, d.Reason)
		assert.Equal(t, "186", d.Value)
		assert.Equal(t, "violazioni[0].articolo", d.Path)
		assert.Less(t, d.BestScore, match.DefaultThreshold)

		assertInvariants(t, res, match.DefaultThreshold)
	})

	t.Run("matching value is narrowed", func(t *testing.T) {
		res, err := Align("violazione articolo 186 del codice della strada", rec, DefaultConfig())
		require.NoError(t, err)

		assert.Equal(t, []span.Entity{{Start: 20, End: 23, Label: "VIOLAZIONE_ARTICOLO"}}, res.Entities())
		require.Len(t, res.Spans, 1)
		assert.Equal(t, "186", res.Spans[0].Query)
		assert.Empty(t, res.Diagnostics)

		assertInvariants(t, res, match.DefaultThreshold)
	})
}

func TestAlign_MaskedRunsDoNotHideLaterOccurrences(t *testing.T) {
	rec := mustParse(t, `{"Strada_1": "roma", "note": "via 5"}`)

	res, err := Align("in via roma 5, poi via 5", rec, Config{Strategy: match.StrategyExactContextual})
	require.NoError(t, err)

	assert.Equal(t, []span.Entity{
		{Start: 7, End: 11, Label: "STRADA_1"},
		{Start: 19, End: 24, Label: "NOTE"},
	}, res.Entities(), spew.Sdump(res))
	assert.Empty(t, res.Diagnostics)

	assertInvariants(t, res, match.DefaultThreshold)
}

func TestAlign_StringMapRecord(t *testing.T) {
	res, err := Align("la targa è AB123CD", map[string]string{"targa": "AB123CD"}, Config{})
	require.NoError(t, err)

	assert.Equal(t, []span.Entity{{Start: 11, End: 18, Label: "TARGA"}}, res.Entities())
}

func TestAlign_CanonicalFallsBackToRaw(t *testing.T) {
	cfg := Config{
		Strategy:  match.StrategyExactContextual,
		Canonical: mapping.NewCanonicalMap(mapping.CanonicalEntry{Label: "PUNTI", Phrase: "2", Canonical: "due"}),
	}

	res, err := Align("decurtati 2 punti", map[string]any{"punti": "2"}, cfg)
	require.NoError(t, err)

	assert.Equal(t, []span.Entity{{Start: 10, End: 11, Label: "PUNTI"}}, res.Entities())
	assert.Empty(t, res.Diagnostics)

	res, err = Align("nessun numero qui", map[string]any{"punti": "2"}, cfg)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "due", res.Diagnostics[0].Value)
	assert.Equal(t, "2", res.Diagnostics[0].Raw)
}

func TestAlign_GroupsWalkedLast(t *testing.T) {
	rec := mustParse(t, `{
		"violazioni": [{"articolo": "6"}],
		"punti": "6",
		"lista_veicoli": [{"targa": "AB123CD"}]
	}`)
	cfg := Config{Strategy: match.StrategyExactContextual, Mask: boolPtr(false), CitationPrefix: true}

	res, err := Align("targa AB123CD punti 6", rec, cfg)
	require.NoError(t, err)

	assert.Equal(t, []span.Entity{
		{Start: 6, End: 13, Label: "TARGA"},
		{Start: 20, End: 21, Label: "PUNTI"},
	}, res.Entities())

	require.Len(t, res.Diagnostics, 1, spew.Sdump(res.Diagnostics))
	d := res.Diagnostics[0]
	assert.Equal(t, diagnostic.OverlapRejected, d.Reason, "overlap outranks the not-found prefixed variant")
	assert.Equal(t, "violazioni[0].articolo", d.Path)
	assert.Equal(t, "ARTICOLO", d.Label)
	require.NotNil(t, d.Conflict)
	assert.Equal(t, "PUNTI", d.Conflict.Label)

	targa := res.Spans[0]
	assert.Equal(t, "lista_veicoli[0].targa", targa.Path)
	assert.Equal(t, "targa", targa.Field)
}

func TestAlign_NestedRecordsAndLists(t *testing.T) {
	rec := mustParse(t, `{
		"verbale": {"colore": "rosso"},
		"dichiarazioni": ["nessuna", "niente"],
		"targa": "AB123CD"
	}`)

	res, err := Align("targa AB123CD rosso nessuna", rec, Config{})
	require.NoError(t, err)

	paths := make([]string, 0, len(res.Spans))
	for _, s := range res.Spans {
		paths = append(paths, s.Path)
	}

	assert.Equal(t, []string{"targa", "verbale.colore", "dichiarazioni[0]"}, paths)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "dichiarazioni[1]", res.Diagnostics[0].Path)
}

func TestAlign_Ignore(t *testing.T) {
	rec := mustParse(t, `{"targa": "AB123CD", "lista_veicoli": [{"colore": "blu"}, {"colore": "verde"}]}`)

	ignoreSecond, err := mapping.ParsePath("lista_veicoli[1].colore")
	require.NoError(t, err)

	cfg := Config{
		IgnoreLabels: IgnoreSet("TARGA"),
		IgnoreFields: []mapping.FieldPath{ignoreSecond},
	}

	res, err := Align("auto blu con targa AB123CD", rec, cfg)
	require.NoError(t, err)

	assert.Equal(t, []span.Entity{{Start: 5, End: 8, Label: "COLORE"}}, res.Entities())
	assert.Empty(t, res.Diagnostics)
}

func TestAlign_TextTooLong(t *testing.T) {
	res, err := Align("la targa è AB123CD", map[string]any{"targa": "AB123CD"}, Config{MaxTextRunes: 5})
	require.NoError(t, err)

	assert.Empty(t, res.Spans)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostic.TextTooLong, res.Diagnostics[0].Reason)
}

func TestAlign_DefaultConfig(t *testing.T) {
	rec := mustParse(t, `{
		"punti": "2",
		"lista_veicoli": [{"targa": "AB123 CD", "colore": "grigio"}],
		"violazioni": [{"articolo": "146", "comma": "3"}]
	}`)

	text := "veicolo grigio targa AB 123 CD in violazione dell'articolo 146 comma 3, decurtati due punti"

	res, err := Align(text, rec, DefaultConfig())
	require.NoError(t, err)

	byLabel := map[string]string{}
	for _, s := range res.Spans {
		byLabel[s.Label] = s.Text
	}

	assert.Equal(t, "due", byLabel["PUNTI_DECURTATI"], spew.Sdump(res))
	assert.Equal(t, "grigio", byLabel["VEICOLO_COLORE"])
	assert.Equal(t, "AB 123 CD", byLabel["VEICOLO_TARGA"])
	assert.Equal(t, "146", byLabel["VIOLAZIONE_ARTICOLO"])
	assert.Equal(t, "3", byLabel["VIOLAZIONE_COMMA"])

	assertInvariants(t, res, match.DefaultThreshold)
}

func TestAlign_Invariants(t *testing.T) {
	rec := mustParse(t, `{
		"verbale_preavviso": "verbale",
		"Strada_1": "via roma",
		"Civico_1": "5",
		"punti": "5",
		"lista_veicoli": [
			{"targa": "AB123CD", "colore": "rosso"},
			{"targa": "EF456GH", "colore": "rosso"}
		],
		"violazioni": [{"articolo": "7", "comma": "1"}, {"articolo": "7", "comma": "2"}]
	}`)

	text := "verbale in via roma 5, auto rossa targa AB123CD e moto rossa targa EF 456 GH, " +
		"articolo 7 comma 1 e articolo 7 comma 2, cinque punti"

	for _, strategy := range []match.Strategy{match.StrategyFuzzyWindow, match.StrategyExactContextual} {
		t.Run(strategy.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = strategy

			a, err := New(cfg)
			require.NoError(t, err)

			first, err := a.Align(text, rec)
			require.NoError(t, err)

			second, err := a.Align(text, rec)
			require.NoError(t, err)

			require.Equal(t, first, second, "alignment must be deterministic:\n%s\n%s", spew.Sdump(first), spew.Sdump(second))

			assert.NotEmpty(t, first.Spans)
			assertInvariants(t, first, cfg.MinScore())
		})
	}
}

func assertInvariants(t *testing.T, res *Result, threshold float64) {
	t.Helper()

	runes := []rune(res.Text)

	for i, s := range res.Spans {
		require.True(t, s.Valid(len(runes)), "span %s out of bounds", s)
		assert.Equal(t, string(runes[s.Start:s.End]), s.Text)

		norm := match.Normalize(s.Text)
		score := max(match.Ratio(norm, s.Query), match.Ratio(match.StripSpaces(norm), s.Query))
		assert.GreaterOrEqual(t, score, threshold, "span %s text %q query %q", s, s.Text, s.Query)

		for _, o := range res.Spans[i+1:] {
			if s.Label == o.Label {
				assert.False(t, s.Overlaps(o), "same-label overlap %s %s", s, o)
			} else {
				assert.False(t, s.SameBounds(o), "identical bounds %s %s", s, o)
			}
		}
	}
}
