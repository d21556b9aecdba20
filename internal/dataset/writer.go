package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"weaklabel/internal/align"
	"weaklabel/internal/diagnostic"
	"weaklabel/internal/span"
)

// Format is a training data encoding.
type Format string

const (
	// FormatJSONL writes one JSON array per line.
	FormatJSONL Format = "jsonl"
	// FormatMsgpack writes a stream of msgpack arrays.
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSONL, "json":
		return FormatJSONL, nil
	case FormatMsgpack, "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Example is one training example in the shape sequence-labelling
// trainers consume: [text, {"entities": [[start, end, label], ...]}].
type Example struct {
	Text     string
	Entities []span.Entity
}

// NewExample builds the example for an alignment result.
func NewExample(res *align.Result) Example {
	return Example{Text: res.Text, Entities: res.Entities()}
}

type annotations struct {
	Entities []span.Entity `json:"entities"`
}

// MarshalJSON encodes the example as a two-element array.
func (e Example) MarshalJSON() ([]byte, error) {
	ents := e.Entities
	if ents == nil {
		ents = []span.Entity{}
	}

	return json.Marshal([]any{e.Text, annotations{Entities: ents}})
}

// UnmarshalJSON decodes the two-element array form.
func (e *Example) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}

	if len(parts) != 2 {
		return fmt.Errorf("example must have 2 elements, got %d", len(parts))
	}

	if err := json.Unmarshal(parts[0], &e.Text); err != nil {
		return fmt.Errorf("example text: %w", err)
	}

	var ann struct {
		Entities [][]json.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal(parts[1], &ann); err != nil {
		return fmt.Errorf("example annotations: %w", err)
	}

	e.Entities = make([]span.Entity, 0, len(ann.Entities))

	for i, raw := range ann.Entities {
		if len(raw) != 3 {
			return fmt.Errorf("entity %d: want [start, end, label]", i)
		}

		var ent span.Entity

		err := errors.Join(
			json.Unmarshal(raw[0], &ent.Start),
			json.Unmarshal(raw[1], &ent.End),
			json.Unmarshal(raw[2], &ent.Label),
		)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}

		e.Entities = append(e.Entities, ent)
	}

	return nil
}

var (
	_ msgpack.CustomEncoder = Example{}
	_ msgpack.CustomDecoder = (*Example)(nil)
)

// EncodeMsgpack encodes the same array shape as MarshalJSON.
func (e Example) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}

	if err := enc.EncodeString(e.Text); err != nil {
		return err
	}

	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}

	if err := enc.EncodeString("entities"); err != nil {
		return err
	}

	if err := enc.EncodeArrayLen(len(e.Entities)); err != nil {
		return err
	}

	for _, ent := range e.Entities {
		err := errors.Join(
			enc.EncodeArrayLen(3),
			enc.EncodeInt(int64(ent.Start)),
			enc.EncodeInt(int64(ent.End)),
			enc.EncodeString(ent.Label),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// DecodeMsgpack decodes the array shape written by EncodeMsgpack.
func (e *Example) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}

	if n != 2 {
		return fmt.Errorf("example must have 2 elements, got %d", n)
	}

	if e.Text, err = dec.DecodeString(); err != nil {
		return err
	}

	keys, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}

	e.Entities = nil

	for range keys {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}

		if key != "entities" {
			if err := dec.Skip(); err != nil {
				return err
			}

			continue
		}

		if e.Entities, err = decodeEntities(dec); err != nil {
			return err
		}
	}

	return nil
}

func decodeEntities(dec *msgpack.Decoder) ([]span.Entity, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}

	out := make([]span.Entity, 0, max(n, 0))

	for i := range max(n, 0) {
		size, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}

		if size != 3 {
			return nil, fmt.Errorf("entity %d: want [start, end, label]", i)
		}

		var ent span.Entity

		if ent.Start, err = dec.DecodeInt(); err != nil {
			return nil, err
		}

		if ent.End, err = dec.DecodeInt(); err != nil {
			return nil, err
		}

		if ent.Label, err = dec.DecodeString(); err != nil {
			return nil, err
		}

		out = append(out, ent)
	}

	return out, nil
}

// Writer writes training examples in one format.
type Writer struct {
	buf    *bufio.Writer
	closer io.Closer
	format Format
	json   *json.Encoder
	mp     *msgpack.Encoder
	count  int
}

// NewWriter writes examples to w. Call Flush (or Close) when done.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	buf := bufio.NewWriter(w)
	out := &Writer{buf: buf, format: format}

	if format == FormatMsgpack {
		out.mp = msgpack.NewEncoder(buf)
	} else {
		out.json = json.NewEncoder(buf)
		out.json.SetEscapeHTML(false)
	}

	return out, nil
}

// CreateWriter creates (or truncates) the file at path.
func CreateWriter(path string, format Format) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w, err := NewWriter(f, format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w.closer = f

	return w, nil
}

// Write appends one example.
func (w *Writer) Write(ex Example) error {
	var err error
	if w.mp != nil {
		err = w.mp.Encode(ex)
	} else {
		err = w.json.Encode(ex)
	}

	if err != nil {
		return fmt.Errorf("failed to write example %d: %w", w.count, err)
	}

	w.count++

	return nil
}

// Count returns the number of examples written.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Close flushes and closes the file opened by CreateWriter.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}

	return err
}

// DiagnosticsRecord is one line of the diagnostics sidecar.
type DiagnosticsRecord struct {
	ID          string          `json:"id" msgpack:"id"`
	Text        string          `json:"text" msgpack:"text"`
	Diagnostics diagnostic.List `json:"diagnostics" msgpack:"diagnostics"`
}

// DiagnosticsWriter writes one JSONL line per document with diagnostics.
type DiagnosticsWriter struct {
	buf    *bufio.Writer
	closer io.Closer
	enc    *json.Encoder
}

// NewDiagnosticsWriter writes the sidecar to w.
func NewDiagnosticsWriter(w io.Writer) *DiagnosticsWriter {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &DiagnosticsWriter{buf: buf, enc: enc}
}

// CreateDiagnosticsWriter creates (or truncates) the sidecar file at path.
func CreateDiagnosticsWriter(path string) (*DiagnosticsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := NewDiagnosticsWriter(f)
	w.closer = f

	return w, nil
}

// Write records the diagnostics of one document. Documents without
// diagnostics are skipped.
func (w *DiagnosticsWriter) Write(id string, res *align.Result) error {
	if res == nil || res.Diagnostics.IsEmpty() {
		return nil
	}

	rec := DiagnosticsRecord{ID: id, Text: res.Text, Diagnostics: res.Diagnostics}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write diagnostics for %s: %w", id, err)
	}

	return nil
}

// Close flushes and closes the sidecar.
func (w *DiagnosticsWriter) Close() error {
	err := w.buf.Flush()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}

	return err
}
