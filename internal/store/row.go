// Package store persists the final master incident table.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ppiankov/incidentmerge/internal/model"
)

// ErrUnknownDriver is returned for an unsupported output driver
var ErrUnknownDriver = errors.New("unknown output driver")

// CreatedAtLayout formats created_at as a naive UTC ISO timestamp
const CreatedAtLayout = "2006-01-02T15:04:05.000000"

// Columns is the fixed output column order
var Columns = []string{
	"master_id", "fingerprint", "date", "city", "state",
	"latitude", "longitude", "fatalities", "injuries",
	"shooter_name", "shooter_age",
	"sources", "merged_from", "notes", "created_at",
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store writes master rows. A write replaces any previous content.
type Store interface {
	Write(ctx context.Context, rows []Row) error
	Location() string
	Close() error
}

// Row is one persisted master record
type Row struct {
	MasterID    int
	Fingerprint string
	Date        string
	City        string
	State       string
	Latitude    *float64
	Longitude   *float64
	Fatalities  int
	Injuries    int
	ShooterName string
	ShooterAge  int
	Sources     string // JSON array of {source, row_index}
	MergedFrom  string // JSON array of provenance-group arrays
	Notes       string
	CreatedAt   string
}

// BuildRows numbers records from 1 in output order and serializes provenance
func BuildRows(records []*model.Record, createdAt time.Time) ([]Row, error) {
	stamp := createdAt.UTC().Format(CreatedAtLayout)
	rows := make([]Row, 0, len(records))

	for i, rec := range records {
		sources, err := marshalJSON(rec.Sources, []model.Provenance{})
		if err != nil {
			return nil, fmt.Errorf("record %d sources: %w", i+1, err)
		}
		mergedFrom, err := marshalJSON(rec.MergedFrom, []model.ProvenanceGroup{})
		if err != nil {
			return nil, fmt.Errorf("record %d merged_from: %w", i+1, err)
		}

		rows = append(rows, Row{
			MasterID:    i + 1,
			Fingerprint: rec.Fingerprint,
			Date:        rec.Date,
			City:        rec.City,
			State:       rec.State,
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			Fatalities:  rec.Fatalities,
			Injuries:    rec.Injuries,
			ShooterName: rec.ShooterName,
			ShooterAge:  rec.ShooterAge,
			Sources:     sources,
			MergedFrom:  mergedFrom,
			Notes:       rec.NotesText(),
			CreatedAt:   stamp,
		})
	}
	return rows, nil
}

func marshalJSON[T any](v []T, empty []T) (string, error) {
	if v == nil {
		v = empty
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Values renders the row as text cells in Columns order; absent values are ""
func (r Row) Values() []string {
	return []string{
		strconv.Itoa(r.MasterID),
		r.Fingerprint,
		r.Date,
		r.City,
		r.State,
		formatCoord(r.Latitude),
		formatCoord(r.Longitude),
		strconv.Itoa(r.Fatalities),
		strconv.Itoa(r.Injuries),
		r.ShooterName,
		strconv.Itoa(r.ShooterAge),
		r.Sources,
		r.MergedFrom,
		r.Notes,
		r.CreatedAt,
	}
}

// args returns the row as SQL parameters in Columns order
func (r Row) args() []any {
	return []any{
		r.MasterID, r.Fingerprint, r.Date, r.City, r.State,
		r.Latitude, r.Longitude, r.Fatalities, r.Injuries,
		r.ShooterName, r.ShooterAge,
		r.Sources, r.MergedFrom, r.Notes, r.CreatedAt,
	}
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Open returns the store selected by cfg.Driver
func Open(ctx context.Context, cfg model.OutputConfig) (Store, error) {
	switch cfg.Driver {
	case "", "csv":
		return NewCSVStore(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path, cfg.Table)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, cfg.DSN, cfg.Table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func validateTable(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}
