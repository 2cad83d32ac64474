// Package merge reconciles duplicate incident records: first by exact
// fingerprint bucket, then by a single greedy fuzzy pass.
package merge

import (
	"github.com/ppiankov/incidentmerge/internal/model"
)

// Group accumulates the records merged into one surviving record.
//
// Reconciliation rules:
//   - descriptive fields: first non-empty value wins
//   - fatalities, injuries, total killed: maximum, never a sum
//   - notes: distinct non-empty strings in first-seen order
//   - sources: concatenated, never deduplicated
type Group struct {
	rec   *model.Record
	notes map[string]bool
}

// NewGroup starts a group seeded with a copy of rec. A seed that has not
// been merged before opens merged_from with its own provenance.
func NewGroup(seed *model.Record) *Group {
	rec := seed.Clone()
	if len(rec.MergedFrom) == 0 {
		rec.MergedFrom = []model.ProvenanceGroup{append(model.ProvenanceGroup(nil), rec.Sources...)}
	}

	g := &Group{rec: rec, notes: make(map[string]bool)}
	notes := rec.Notes
	rec.Notes = nil
	g.addNotes(notes)
	return g
}

// Absorb folds other into the group, extending merged_from with groups
func (g *Group) Absorb(other *model.Record, groups []model.ProvenanceGroup) {
	r := g.rec

	if r.Date == "" {
		r.Date = other.Date
	}
	if r.City == "" {
		r.City = other.City
	}
	if r.State == "" {
		r.State = other.State
	}
	if r.Latitude == nil && other.Latitude != nil {
		v := *other.Latitude
		r.Latitude = &v
	}
	if r.Longitude == nil && other.Longitude != nil {
		v := *other.Longitude
		r.Longitude = &v
	}
	if r.ShooterName == "" {
		r.ShooterName = other.ShooterName
	}
	if r.ShooterAge == 0 {
		r.ShooterAge = other.ShooterAge
	}

	r.Fatalities = max(r.Fatalities, other.Fatalities)
	r.Injuries = max(r.Injuries, other.Injuries)
	if other.TotalKilled != nil {
		v := *other.TotalKilled
		if r.TotalKilled != nil {
			v = max(v, *r.TotalKilled)
		}
		r.TotalKilled = &v
	}

	g.addNotes(other.Notes)

	r.Sources = append(r.Sources, other.Sources...)
	for _, pg := range groups {
		r.MergedFrom = append(r.MergedFrom, append(model.ProvenanceGroup(nil), pg...))
	}
}

// Size returns the number of provenance entries held by the group
func (g *Group) Size() int {
	return len(g.rec.Sources)
}

// Record returns the reconciled record
func (g *Group) Record() *model.Record {
	return g.rec
}

func (g *Group) addNotes(notes []string) {
	for _, n := range notes {
		if n == "" || g.notes[n] {
			continue
		}
		g.notes[n] = true
		g.rec.Notes = append(g.rec.Notes, n)
	}
}

// ownGroups returns the provenance groups a record brings into a fuzzy merge
func ownGroups(rec *model.Record) []model.ProvenanceGroup {
	if len(rec.MergedFrom) > 0 {
		return rec.MergedFrom
	}
	return []model.ProvenanceGroup{rec.Sources}
}
