package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}

	return out
}

func TestValidate(t *testing.T) {
	high := 120.0
	ok := 80.0

	tests := []struct {
		name     string
		file     *File
		errors   []string
		warnings []string
	}{
		{
			name:   "nil",
			file:   nil,
			errors: []string{"config_is_nil"},
		},
		{
			name: "valid",
			file: &File{Version: "1", Strategy: "exact", Threshold: &ok},
		},
		{
			name:   "bad version and strategy",
			file:   &File{Version: "2", Strategy: "regex"},
			errors: []string{"unsupported_version", "unknown_strategy"},
		},
		{
			name:   "threshold out of range",
			file:   &File{Version: "1", Threshold: &high},
			errors: []string{"threshold_out_of_range"},
		},
		{
			name: "duplicate label key",
			file: &File{Version: "1", LabelMap: LabelMap{
				{Field: "targa", Label: "A"},
				{Field: "targa", Label: "B"},
			}},
			errors: []string{"duplicate_label_key"},
		},
		{
			name: "canonical entries",
			file: &File{Version: "1", Canonical: []CanonicalEntry{
				{Label: "PUNTI", Phrase: " ... ", Canonical: "due"},
				{Label: "PUNTI", Phrase: "3", Canonical: ""},
			}},
			errors:   []string{"empty_canonical_phrase"},
			warnings: []string{"empty_canonical_target"},
		},
		{
			name:   "invalid ignore field",
			file:   &File{Version: "1", IgnoreFields: StringOrArray{"violazioni[x]"}},
			errors: []string{"invalid_ignore_field"},
		},
		{
			name:     "labelled group key",
			file:     &File{Version: "1", GroupKeys: StringOrArray{"targa"}},
			warnings: []string{"group_key_labelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.file)
			require.NotNil(t, res)

			assert.ElementsMatch(t, tt.errors, codes(res.Errors))
			assert.ElementsMatch(t, tt.warnings, codes(res.Warnings))

			if len(tt.errors) == 0 {
				assert.True(t, res.IsValid())
				assert.NoError(t, res.Error())
			} else {
				assert.Error(t, res.Error())
			}
		})
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{Code: "unknown_strategy", Message: "bad", Key: "strategy"}
	assert.Equal(t, "strategy: [unknown_strategy] bad", i.String())
	assert.Equal(t, "bad", Issue{Message: "bad"}.String())
}
