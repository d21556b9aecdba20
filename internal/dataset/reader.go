// Package dataset reads documents to align and writes training examples.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"weaklabel/internal/align"
)

// maxLineBytes bounds one JSONL line.
const maxLineBytes = 16 * 1024 * 1024

// ErrMalformed marks a line that is not a valid document.
var ErrMalformed = errors.New("malformed document")

// Document is one transcription with its extraction record.
type Document struct {
	// ID identifies the document; it defaults to the line number.
	ID     string
	Text   string
	Record *align.Record
	// Err is set, and Record nil, when the record is present but unusable
	// (null or not a mapping). It wraps align.ErrInvalidInput and is
	// reported for this document only.
	Err error
}

// LineError is a decoding failure at a known input line.
type LineError struct {
	Name string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type documentLine struct {
	ID     json.RawMessage `json:"id"`
	Text   *string         `json:"text"`
	Record json.RawMessage `json:"record"`
}

// Reader yields documents from JSONL input, one object per line:
//
//	{"id": "42", "text": "...", "record": {...}}
//
// Blank lines are skipped. Record key order is preserved.
type Reader struct {
	sc   *bufio.Scanner
	name string
	line int
}

// NewReader reads from r; name prefixes error messages.
func NewReader(r io.Reader, name string) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &Reader{sc: sc, name: name}
}

// Next returns the next document, or io.EOF when the input is exhausted.
func (r *Reader) Next() (Document, error) {
	for r.sc.Scan() {
		r.line++

		line := bytes.TrimSpace(r.sc.Bytes())
		if len(line) == 0 {
			continue
		}

		doc, err := decodeLine(line, r.line)
		if err != nil {
			return Document{}, &LineError{Name: r.name, Line: r.line, Err: err}
		}

		return doc, nil
	}

	if err := r.sc.Err(); err != nil {
		return Document{}, &LineError{Name: r.name, Line: r.line + 1, Err: err}
	}

	return Document{}, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

func decodeLine(line []byte, n int) (Document, error) {
	var dl documentLine
	if err := json.Unmarshal(line, &dl); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if dl.Text == nil {
		return Document{}, fmt.Errorf("%w: missing text", ErrMalformed)
	}

	if len(dl.Record) == 0 {
		return Document{}, fmt.Errorf("%w: missing record", ErrMalformed)
	}

	id, err := documentID(dl.ID, n)
	if err != nil {
		return Document{}, err
	}

	doc := Document{ID: id, Text: *dl.Text}

	if string(dl.Record) == "null" {
		doc.Err = fmt.Errorf("%w: null record", align.ErrInvalidInput)
		return doc, nil
	}

	rec, err := align.ParseRecord(dl.Record)
	switch {
	case errors.Is(err, align.ErrInvalidInput):
		doc.Err = fmt.Errorf("record: %w", err)
	case err != nil:
		return Document{}, fmt.Errorf("%w: record: %w", ErrMalformed, err)
	default:
		doc.Record = rec
	}

	return doc, nil
}

// documentID accepts string and number ids.
func documentID(raw json.RawMessage, line int) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return strconv.Itoa(line), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	return "", fmt.Errorf("%w: id must be a string or a number", ErrMalformed)
}

// ReadAll reads every document from r.
func ReadAll(r io.Reader, name string) ([]Document, error) {
	rd := NewReader(r, name)

	var docs []Document

	for {
		doc, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}

		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}
}

// ReadFile reads every document from the JSONL file at path.
func ReadFile(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open documents %s: %w", path, err)
	}
	defer f.Close()

	return ReadAll(f, path)
}
