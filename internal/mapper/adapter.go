// Package mapper converts source-native rows into canonical records.
package mapper

import (
	"strings"

	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/parse"
	"github.com/ppiankov/incidentmerge/internal/states"
	"go.uber.org/zap"
)

// Row is one source-native row keyed by the source's own column names.
// Absent cells are either missing from the map or empty.
type Row map[string]string

// Adapter maps rows of one source family into canonical fields
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter understands the given source
	CanHandle(source string) bool

	// Fill populates rec from the row read through f
	Fill(f *FieldReader, rec *model.Record)
}

// Mapper dispatches rows to the adapter registered for their source
type Mapper struct {
	adapters []Adapter
	generic  Adapter
	logger   *zap.Logger
}

// NewMapper creates a mapper with the built-in source adapters
func NewMapper(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Mapper{
		adapters: make([]Adapter, 0, 4),
		generic:  &GenericAdapter{},
		logger:   logger,
	}

	m.Register(&ViolenceProjectAdapter{})
	m.Register(&MotherJonesAdapter{})
	m.Register(&StanfordMSAAdapter{})
	m.Register(&GVAAdapter{})

	return m
}

// Register registers a new adapter
func (m *Mapper) Register(adapter Adapter) {
	m.adapters = append(m.adapters, adapter)
}

// FindAdapter returns the adapter for a source, falling back to the generic one
func (m *Mapper) FindAdapter(source string) Adapter {
	for _, adapter := range m.adapters {
		if adapter.CanHandle(source) {
			return adapter
		}
	}
	return m.generic
}

// Map converts one row into a canonical record carrying exactly one
// provenance entry. It never fails: bad cells degrade to field defaults.
func (m *Mapper) Map(source string, rowIndex int, row Row) *model.Record {
	rec := &model.Record{}
	f := &FieldReader{
		row:    row,
		source: source,
		index:  rowIndex,
		logger: m.logger,
	}

	m.FindAdapter(source).Fill(f, rec)

	rec.Sources = []model.Provenance{{Source: source, RowIndex: rowIndex}}
	return rec
}

// FieldReader reads typed cells from a row, logging unusable values at debug
type FieldReader struct {
	row    Row
	source string
	index  int
	logger *zap.Logger
}

// Text returns the trimmed cell value, "" when absent
func (f *FieldReader) Text(column string) string {
	return strings.TrimSpace(f.row[column])
}

// Raw returns the untrimmed cell value
func (f *FieldReader) Raw(column string) string {
	return f.row[column]
}

// Date returns the cell as an ISO date, "" when absent or unparseable
func (f *FieldReader) Date(column string) string {
	raw := f.Text(column)
	v, ok := parse.Date(raw)
	if !ok && raw != "" {
		f.fieldFailure(column, raw)
	}
	return v
}

// Int returns the cell truncated to a non-negative integer, 0 when unusable
func (f *FieldReader) Int(column string) int {
	raw := f.Text(column)
	v, ok := parse.Int(raw)
	if !ok && raw != "" {
		f.fieldFailure(column, raw)
	}
	return v
}

// Coord returns the cell as decimal degrees, nil when unusable
func (f *FieldReader) Coord(column string) *float64 {
	raw := f.Text(column)
	v, ok := parse.Float(raw)
	if !ok {
		if raw != "" {
			f.fieldFailure(column, raw)
		}
		return nil
	}
	return &v
}

// State returns the cell normalized to a full state name
func (f *FieldReader) State(column string) string {
	return states.DisplayName(f.Text(column))
}

func (f *FieldReader) fieldFailure(column, value string) {
	f.logger.Debug("field parse failure",
		zap.String("source", f.source),
		zap.Int("row", f.index),
		zap.String("field", column),
		zap.String("value", value),
	)
}

// GenericAdapter is the fallback for unknown sources; it contributes provenance only
type GenericAdapter struct{}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(source string) bool {
	return true
}

// Fill leaves every field at its default
func (a *GenericAdapter) Fill(f *FieldReader, rec *model.Record) {}
