package model

import "strings"

// NotesSeparator joins the distinct notes of a merged record
const NotesSeparator = " | "

// Provenance identifies the source file and data row a record was mapped from
type Provenance struct {
	Source   string `json:"source"`    // Source name derived from the file name
	RowIndex int    `json:"row_index"` // 0-based data row position within the source file
}

// ProvenanceGroup is the provenance list of one record consumed by a merge
type ProvenanceGroup []Provenance

// Record is the canonical incident shape every source row is mapped into.
//
// Zero counts are ambiguous: a 0 may be a confirmed zero or missing source data.
// Nothing downstream should treat it as confirmed.
type Record struct {
	Date        string   `json:"date,omitempty"`      // ISO calendar date, empty when absent
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`     // Full proper-case state name
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Fatalities  int      `json:"fatalities"`
	Injuries    int      `json:"injuries"`
	TotalKilled *int     `json:"total_killed,omitempty"` // Alternate fatality tally, gva only
	ShooterName string   `json:"shooter_name,omitempty"`
	ShooterAge  int      `json:"shooter_age"`
	Notes       []string `json:"notes,omitempty"` // Distinct non-empty notes in first-seen order

	Sources     []Provenance      `json:"sources"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	MergedFrom  []ProvenanceGroup `json:"merged_from,omitempty"`
}

// HasCoords reports whether both coordinates are present
func (r *Record) HasCoords() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// NotesText renders the notes the way they are persisted
func (r *Record) NotesText() string {
	return strings.Join(r.Notes, NotesSeparator)
}

// Clone returns a deep copy so merges never alias the input slices
func (r *Record) Clone() *Record {
	c := *r
	if r.Latitude != nil {
		v := *r.Latitude
		c.Latitude = &v
	}
	if r.Longitude != nil {
		v := *r.Longitude
		c.Longitude = &v
	}
	if r.TotalKilled != nil {
		v := *r.TotalKilled
		c.TotalKilled = &v
	}
	c.Notes = append([]string(nil), r.Notes...)
	c.Sources = append([]Provenance(nil), r.Sources...)
	if r.MergedFrom != nil {
		c.MergedFrom = make([]ProvenanceGroup, len(r.MergedFrom))
		for i, g := range r.MergedFrom {
			c.MergedFrom[i] = append(ProvenanceGroup(nil), g...)
		}
	}
	return &c
}
