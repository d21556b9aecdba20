// Package match provides text normalization, Levenshtein similarity and the
// two candidate search strategies used to place field values in a sentence.
//
// Key functions:
//   - Normalize / Project: canonical comparison form of a string, with a map
//     from every normalized rune back to its original offset
//   - Levenshtein / Ratio: rune-aware edit distance and 0-100 similarity
//   - FuzzyWindow: approximate, scored search over length-bounded windows
//   - ExactContextual: literal, word-anchored search with optional context
//
// All offsets are rune offsets into the original text.
package match
