package diagnostic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weaklabel/internal/span"
)

func TestReasonString(t *testing.T) {
	tests := []struct {
		reason   Reason
		expected string
	}{
		{NotFound, "not_found"},
		{ContextMismatch, "context_mismatch"},
		{OverlapRejected, "overlap_rejected"},
		{TextTooLong, "text_too_long"},
		{Reason(42), "Reason(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}

func TestReasonOutranks(t *testing.T) {
	assert.True(t, TextTooLong.Outranks(OverlapRejected))
	assert.True(t, OverlapRejected.Outranks(ContextMismatch))
	assert.True(t, ContextMismatch.Outranks(NotFound))
	assert.False(t, NotFound.Outranks(NotFound))
}

func TestReasonText(t *testing.T) {
	for i := range ReasonTotal {
		r := Reason(i)

		text, err := r.MarshalText()
		require.NoError(t, err)

		var back Reason
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, r, back)
	}

	_, err := Reason(-1).MarshalText()
	require.Error(t, err)

	var r Reason
	require.Error(t, r.UnmarshalText([]byte("missing")))
}

func TestDiagnosticJSON(t *testing.T) {
	d := Diagnostic{
		Reason:    OverlapRejected,
		Label:     "CIVICO",
		Field:     "civico",
		Path:      "civico",
		Value:     "5",
		Candidate: &span.Span{Start: 10, End: 11, Label: "CIVICO"},
		Conflict:  &span.Span{Start: 10, End: 11, Label: "PUNTI"},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "overlap_rejected", got["reason"])
	assert.Contains(t, got, "conflict")
	assert.NotContains(t, got, "raw")
}

func TestList(t *testing.T) {
	var l List
	assert.True(t, l.IsEmpty())
	require.NoError(t, l.Err())

	l.Add(Diagnostic{Reason: NotFound, Label: "TARGA", Path: "targa", Value: "AB123CD"})
	l.Add(Diagnostic{Reason: OverlapRejected, Label: "CIVICO", Path: "civico", Value: "5",
		Conflict: &span.Span{Start: 10, End: 11, Label: "PUNTI"}})
	l.Merge(List{{Reason: NotFound, Label: "CIVICO", Path: "lista_veicoli[0].civico", Value: "7"}})

	assert.False(t, l.IsEmpty())
	assert.Equal(t, 2, l.Count(NotFound))
	assert.Len(t, l.ByReason(OverlapRejected), 1)
	assert.Len(t, l.ByLabel("CIVICO"), 2)
	assert.Equal(t, [ReasonTotal]int{2, 0, 1, 0}, l.Counts())

	assert.Equal(t, `[TARGA] targa: [not_found] "AB123CD"`, l[0].String())
	assert.Equal(t, `[CIVICO] civico: [overlap_rejected] "5" conflicts with [10:11/PUNTI]`, l[1].String())

	require.Error(t, l.Err())
	assert.Contains(t, l.String(), "lista_veicoli[0].civico")
}
