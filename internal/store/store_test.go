package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/incidentmerge/internal/model"
)

func ptr(v float64) *float64 { return &v }

func sampleRecords() []*model.Record {
	return []*model.Record{
		{
			Date:        "2017-10-01",
			City:        "Las Vegas",
			State:       "NV",
			Latitude:    ptr(36.0955),
			Longitude:   ptr(-115.1711),
			Fatalities:  60,
			Injuries:    411,
			ShooterName: "Stephen Paddock",
			ShooterAge:  64,
			Notes:       []string{"a", "b"},
			Sources:     []model.Provenance{{Source: "motherjones", RowIndex: 3}, {Source: "gva", RowIndex: 0}},
			Fingerprint: "abc",
			MergedFrom: []model.ProvenanceGroup{
				{{Source: "motherjones", RowIndex: 3}},
				{{Source: "gva", RowIndex: 0}},
			},
		},
		{
			Date:        "2019-08-03",
			City:        "El Paso",
			State:       "Texas",
			Fatalities:  23,
			Sources:     []model.Provenance{{Source: "gva", RowIndex: 5}},
			Fingerprint: "def",
		},
	}
}

func TestBuildRows(t *testing.T) {
	created := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)
	rows, err := BuildRows(sampleRecords(), created)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].MasterID)
	assert.Equal(t, 2, rows[1].MasterID)
	assert.Equal(t, `[{"source":"motherjones","row_index":3},{"source":"gva","row_index":0}]`, rows[0].Sources)
	assert.Equal(t, `[[{"source":"motherjones","row_index":3}],[{"source":"gva","row_index":0}]]`, rows[0].MergedFrom)
	assert.Equal(t, "a | b", rows[0].Notes)
	assert.Equal(t, "2024-03-09T12:30:00.000000", rows[0].CreatedAt)
	assert.Equal(t, rows[0].CreatedAt, rows[1].CreatedAt)

	assert.Equal(t, "[]", rows[1].MergedFrom)
	assert.Equal(t, "", rows[1].Notes)
}

func TestRowValuesAbsentFields(t *testing.T) {
	rows, err := BuildRows(sampleRecords(), time.Now())
	require.NoError(t, err)

	vals := rows[1].Values()
	require.Len(t, vals, len(Columns))
	assert.Equal(t, "", vals[5], "latitude")
	assert.Equal(t, "", vals[6], "longitude")
	assert.Equal(t, "0", vals[8], "injuries")
	assert.Equal(t, "", vals[9], "shooter_name")

	vals = rows[0].Values()
	assert.Equal(t, "36.0955", vals[5])
	assert.Equal(t, "-115.1711", vals[6])
}

func TestCSVStoreWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "master.csv")
	s := NewCSVStore(path)
	defer func() { _ = s.Close() }()

	rows, err := BuildRows(sampleRecords(), time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Columns, got[0])
	assert.Equal(t, "1", got[1][0])
	assert.Equal(t, "Las Vegas", got[1][3])
	assert.Equal(t, "El Paso", got[2][3])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestCSVStoreCancelledLeavesPreviousOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	rows, err := BuildRows(sampleRecords(), time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, NewCSVStore(path).Write(ctx, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))
}

func TestSQLiteStoreReplacesContent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "master.db")

	s, err := OpenSQLite(ctx, path, "master_incidents")
	require.NoError(t, err)

	rows, err := BuildRows(sampleRecords(), time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, rows))
	require.NoError(t, s.Write(ctx, rows[:1]))
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM master_incidents").Scan(&count))
	assert.Equal(t, 1, count)

	var city string
	var lat sql.NullFloat64
	var fatalities int
	require.NoError(t, db.QueryRow("SELECT city, latitude, fatalities FROM master_incidents WHERE master_id = 1").
		Scan(&city, &lat, &fatalities))
	assert.Equal(t, "Las Vegas", city)
	assert.True(t, lat.Valid)
	assert.InDelta(t, 36.0955, lat.Float64, 1e-9)
	assert.Equal(t, 60, fatalities)
}

func TestSQLiteStoreNullCoordinates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "master.db")

	s, err := OpenSQLite(ctx, path, "incidents")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	rows, err := BuildRows(sampleRecords()[1:], time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, rows))

	var lat sql.NullFloat64
	require.NoError(t, s.db.QueryRow("SELECT latitude FROM incidents").Scan(&lat))
	assert.False(t, lat.Valid)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), model.OutputConfig{Driver: "parquet"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpenRejectsBadTableName(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"), "drop table; --")
	assert.Error(t, err)
}

func TestSQLiteLocation(t *testing.T) {
	s, err := Open(context.Background(), model.OutputConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "m.db"),
		Table:  "master_incidents",
	})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.Contains(t, s.Location(), "#master_incidents")
}
