package mapping

import (
	"maps"
	"sort"
	"strconv"

	"weaklabel/internal/match"
)

// CanonicalKey identifies a canonical entry. Phrase is stored normalized.
type CanonicalKey struct {
	Label  string
	Phrase string
}

// CanonicalEntry is the file form of one canonical rewrite.
type CanonicalEntry struct {
	Label     string `yaml:"label" toml:"label"`
	Phrase    string `yaml:"phrase" toml:"phrase"`
	Canonical string `yaml:"canonical" toml:"canonical"`
}

// CanonicalMap rewrites field values before search. Lookups normalize the
// value, so "Due", "due." and " due " share an entry.
type CanonicalMap map[CanonicalKey]string

// NewCanonicalMap builds a table from entries. Later entries win.
func NewCanonicalMap(entries ...CanonicalEntry) CanonicalMap {
	m := make(CanonicalMap, len(entries))
	for _, e := range entries {
		m.Set(e.Label, e.Phrase, e.Canonical)
	}

	return m
}

// Set adds or replaces the rewrite of phrase under label.
func (m CanonicalMap) Set(label, phrase, canonical string) {
	m[CanonicalKey{Label: label, Phrase: match.Normalize(phrase)}] = canonical
}

// Lookup returns the canonical text for value under label.
func (m CanonicalMap) Lookup(label, value string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}

	c, ok := m[CanonicalKey{Label: label, Phrase: match.Normalize(value)}]

	return c, ok
}

// Apply returns the canonical text for value, or value unchanged.
func (m CanonicalMap) Apply(label, value string) string {
	if c, ok := m.Lookup(label, value); ok {
		return c
	}

	return value
}

// Clone returns an independent copy.
func (m CanonicalMap) Clone() CanonicalMap {
	out := make(CanonicalMap, len(m))
	maps.Copy(out, m)

	return out
}

// Merge returns a copy of m overlaid with other.
func (m CanonicalMap) Merge(other CanonicalMap) CanonicalMap {
	out := m.Clone()
	maps.Copy(out, other)

	return out
}

// Entries lists the table sorted by label, then phrase.
func (m CanonicalMap) Entries() []CanonicalEntry {
	out := make([]CanonicalEntry, 0, len(m))
	for k, v := range m {
		out = append(out, CanonicalEntry{Label: k.Label, Phrase: k.Phrase, Canonical: v})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}

		return out[i].Phrase < out[j].Phrase
	})

	return out
}

// italianNumbers are the spoken forms transcription produces for the numbers
// found in reports: points, house numbers, article and paragraph citations.
var italianNumbers = map[int]string{
	1: "uno", 2: "due", 3: "tre", 4: "quattro", 5: "cinque",
	6: "sei", 7: "sette", 8: "otto", 9: "nove", 10: "dieci",
	11: "undici", 12: "dodici", 13: "tredici", 14: "quattordici", 15: "quindici",
	16: "sedici", 17: "diciassette", 18: "diciotto", 19: "diciannove", 20: "venti",
	24: "ventiquattro", 45: "quarantacinque", 77: "settantasette", 98: "novantotto",
	158: "centocinquantotto", 185: "centottantacinque", 198: "centonovantotto",
}

// ItalianNumberWords maps digit values to their spoken Italian form for
// every given label, e.g. ("PUNTI", "2") -> "due".
func ItalianNumberWords(labels ...string) CanonicalMap {
	m := make(CanonicalMap, len(labels)*len(italianNumbers))

	for _, label := range labels {
		for n, word := range italianNumbers {
			m.Set(label, strconv.Itoa(n), word)
		}
	}

	return m
}

// NumberLabels are the labels whose values are usually spoken numbers.
func NumberLabels() []string {
	return []string{
		"PUNTI_DECURTATI", "VIOLAZIONE_ARTICOLO", "VIOLAZIONE_COMMA", "CIVICO_VIOLAZIONE",
		"PUNTI", "ARTICOLO", "COMMA", "CIVICO_1",
	}
}

// phraseCorrections map a record value to the phrase transcription
// produces for it. Every entry reads record value -> transcript form, like
// the number words.
var phraseCorrections = []CanonicalEntry{
	{Label: "CONTESTAZIONE", Phrase: "mancata contestazione", Canonical: "non è stato possibile contestare"},
	{Label: "VIOLAZIONE_SANZIONE_ACCESSORIA", Phrase: "senza sanzione accessoria", Canonical: "non è stata applicata alcuna sanzione accessoria"},
	{Label: "VIOLAZIONE_SANZIONE_ACCESSORIA", Phrase: "con sanzione accessoria", Canonical: "applico una sanzione accessoria"},
	{Label: "VIOLAZIONE_COMMA", Phrase: "1a(1-12)", Canonical: "uno a uno dodici"},
	{Label: "VEICOLO_TIPOLOGIA", Phrase: "motoveicolo", Canonical: "molto veicolo"},
	{Label: "TIPO_STAMPA", Phrase: "bluetooth", Canonical: "blu tutte"},
	{Label: "TIPO_STAMPA", Phrase: "wifi", Canonical: "vuoi fai"},
}

// DefaultCanonicalMap returns spoken numbers for NumberLabels plus the
// known phrase corrections.
func DefaultCanonicalMap() CanonicalMap {
	m := ItalianNumberWords(NumberLabels()...)
	for _, e := range phraseCorrections {
		m.Set(e.Label, e.Phrase, e.Canonical)
	}

	return m
}
