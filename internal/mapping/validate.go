package mapping

import (
	"errors"
	"fmt"
	"strings"

	"weaklabel/internal/common"
	"weaklabel/internal/match"
)

// Issue is one configuration problem.
type Issue struct {
	// Code is a unique identifier for this type of problem.
	Code string
	// Message is the human-readable description.
	Message string
	// Key names the offending configuration key (if any).
	Key string
}

// String returns a formatted issue string.
func (i Issue) String() string {
	msg := i.Message
	if i.Code != "" {
		msg = fmt.Sprintf("[%s] %s", i.Code, msg)
	}

	if i.Key != "" {
		return i.Key + ": " + msg
	}

	return msg
}

// Report collects configuration problems. Errors make a config unusable;
// warnings do not.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// AddError adds an error issue.
func (r *Report) AddError(code, message, key string) {
	r.Errors = append(r.Errors, Issue{Code: code, Message: message, Key: key})
}

// AddWarning adds a warning issue.
func (r *Report) AddWarning(code, message, key string) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Message: message, Key: key})
}

// IsValid returns true if there are no errors.
func (r *Report) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error from all error issues, or nil if valid.
func (r *Report) Error() error {
	if r.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// Validate checks a loaded configuration.
func Validate(f *File) *Report {
	res := &Report{}
	if f == nil {
		res.AddError("config_is_nil", "config file is nil", "")
		return res
	}

	if f.Version != "1" {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported version %q", f.Version), "version")
	}

	if _, err := match.ParseStrategy(f.Strategy); err != nil {
		res.AddError("unknown_strategy", err.Error(), "strategy")
	}

	if f.Threshold != nil && !common.IsScore(*f.Threshold) {
		res.AddError("threshold_out_of_range",
			fmt.Sprintf("threshold %.1f outside [0, 100]", *f.Threshold), "threshold")
	}

	if f.MaxTextRunes < 0 {
		res.AddError("negative_max_text_runes", "max_text_runes must not be negative", "max_text_runes")
	}

	for _, dup := range f.LabelMap.Duplicates() {
		res.AddError("duplicate_label_key", fmt.Sprintf("field %q mapped more than once", dup), "label_map")
	}

	for _, e := range f.LabelMap {
		if e.Field == "" {
			res.AddError("empty_label_key", "label map entry without field", "label_map")
		}
	}

	for i, e := range f.Canonical {
		key := fmt.Sprintf("canonical[%d]", i)

		if match.Normalize(e.Phrase) == "" {
			res.AddError("empty_canonical_phrase", "canonical entry with empty phrase", key)
		}

		if e.Label == "" {
			res.AddError("empty_canonical_label", "canonical entry without label", key)
		}

		if strings.TrimSpace(e.Canonical) == "" {
			res.AddWarning("empty_canonical_target",
				fmt.Sprintf("phrase %q rewrites to an empty value and will never match", e.Phrase), key)
		}
	}

	for _, p := range f.IgnoreFields {
		if _, err := ParsePath(p); err != nil {
			res.AddError("invalid_ignore_field", err.Error(), "ignore_fields")
		}
	}

	labels := f.Labels()
	for _, key := range f.GroupKeys {
		if _, ok := labels.Lookup(key); ok {
			res.AddWarning("group_key_labelled",
				fmt.Sprintf("group key %q also has a label; it is walked as a group", key), "group_keys")
		}
	}

	return res
}
