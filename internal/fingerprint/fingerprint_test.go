package fingerprint

import (
	"testing"

	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFatalityBucket_Boundaries(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{1, "1-3"},
		{3, "1-3"},
		{4, "4-7"},
		{7, "4-7"},
		{8, "8-15"},
		{15, "8-15"},
		{16, "15+"},
		{500, "15+"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FatalityBucket(tc.in), "fatalities %d", tc.in)
	}
}

func TestOf_Deterministic(t *testing.T) {
	rec := &model.Record{Date: "2019-08-03", State: "Texas", Fatalities: 22}

	first := Of(rec)
	assert.Equal(t, first, Of(rec))
	assert.Len(t, first, 64)
}

func TestOf_IgnoresNonKeyFields(t *testing.T) {
	a := &model.Record{Date: "2019-08-03", State: "Texas", Fatalities: 22, City: "El Paso", ShooterName: "Patrick Crusius"}
	b := &model.Record{Date: "2019-08-03", State: "TX", Fatalities: 23, City: "EL PASO", Injuries: 26}

	assert.Equal(t, Key(a), Key(b))
	assert.Equal(t, Of(a), Of(b))
}

func TestOf_DistinguishesBuckets(t *testing.T) {
	a := &model.Record{Date: "2019-08-03", State: "Texas", Fatalities: 7}
	b := &model.Record{Date: "2019-08-03", State: "Texas", Fatalities: 8}
	c := &model.Record{Date: "2019-08-04", State: "Texas", Fatalities: 7}

	assert.NotEqual(t, Of(a), Of(b))
	assert.NotEqual(t, Of(a), Of(c))
}

func TestKey_AbsentFields(t *testing.T) {
	assert.Equal(t, "||0", Key(&model.Record{}))
}

func TestEnsure_SetsOnce(t *testing.T) {
	rec := &model.Record{Date: "2019-08-03", State: "Texas", Fatalities: 22}
	fp := Ensure(rec)
	assert.Equal(t, Of(rec), fp)

	rec.Fatalities = 1
	assert.Equal(t, fp, Ensure(rec))
}
