// Package source discovers raw source files and decodes them into tables.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/incidentmerge/internal/mapper"
	"golang.org/x/text/encoding/charmap"
)

// ErrUndecodable is returned when a file cannot be read under any supported encoding
var ErrUndecodable = errors.New("source not decodable")

// Supported encodings, tried in order
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is one decoded source file
type Table struct {
	Source   string     `json:"source"`
	Encoding string     `json:"encoding"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns data row i keyed by column name. Empty cells are omitted and
// short rows simply lack their trailing columns.
func (t *Table) Row(i int) mapper.Row {
	cells := t.Rows[i]
	row := make(mapper.Row, len(t.Header))
	for c, name := range t.Header {
		if c >= len(cells) || cells[c] == "" {
			continue
		}
		row[name] = cells[c]
	}
	return row
}

// Each calls fn for every data row with its 0-based position
func (t *Table) Each(fn func(index int, row mapper.Row)) {
	for i := range t.Rows {
		fn(i, t.Row(i))
	}
}

// Decode parses raw file bytes as CSV, trying UTF-8 first and falling back
// to Latin-1. Failure under both yields an error wrapping ErrUndecodable.
func Decode(source string, data []byte) (*Table, error) {
	var firstErr error

	if utf8.Valid(data) {
		t, err := parseCSV(bytes.TrimPrefix(data, utf8BOM))
		if err == nil {
			t.Source, t.Encoding = source, EncodingUTF8
			return t, nil
		}
		firstErr = err
	} else {
		firstErr = errors.New("invalid utf-8")
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err == nil {
		t, perr := parseCSV(decoded)
		if perr == nil {
			t.Source, t.Encoding = source, EncodingLatin1
			return t, nil
		}
		err = perr
	}

	return nil, fmt.Errorf("%w: %s: utf-8: %v; latin-1: %v", ErrUndecodable, source, firstErr, err)
}

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	// Empty lines are skipped by the reader; a row of empty cells is kept
	// so later rows keep their positions.
	t := &Table{Header: header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows), err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
