package merge

import (
	"github.com/ppiankov/incidentmerge/internal/fingerprint"
	"github.com/ppiankov/incidentmerge/internal/model"
)

// MergeBuckets collapses records sharing a fingerprint into one record per
// bucket, emitted in first-seen fingerprint order. Records without a
// fingerprint get one assigned; nothing else on the inputs is modified.
func MergeBuckets(records []*model.Record) []*model.Record {
	order := make([]string, 0, len(records))
	groups := make(map[string]*Group, len(records))

	for _, rec := range records {
		fp := fingerprint.Ensure(rec)

		g, ok := groups[fp]
		if !ok {
			groups[fp] = NewGroup(rec)
			order = append(order, fp)
			continue
		}
		g.Absorb(rec, []model.ProvenanceGroup{rec.Sources})
	}

	out := make([]*model.Record, 0, len(order))
	for _, fp := range order {
		out = append(out, groups[fp].Record())
	}
	return out
}
