package store

import (
	"fmt"
	"strings"
)

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	master_id INTEGER PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	date TEXT,
	city TEXT,
	state TEXT,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	fatalities INTEGER NOT NULL DEFAULT 0,
	injuries INTEGER NOT NULL DEFAULT 0,
	shooter_name TEXT,
	shooter_age INTEGER NOT NULL DEFAULT 0,
	sources TEXT NOT NULL,
	merged_from TEXT NOT NULL,
	notes TEXT,
	created_at TEXT NOT NULL
)`, table)
}

// insertSQL builds a parameterized insert; placeholder renders the n-th (1-based) parameter
func insertSQL(table string, placeholder func(n int) string) string {
	params := make([]string, len(Columns))
	for i := range Columns {
		params[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(Columns, ", "), strings.Join(params, ", "))
}
