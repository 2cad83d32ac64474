package similarity

import (
	"testing"

	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/stretchr/testify/assert"
)

func coord(v float64) *float64 { return &v }

func TestEvaluate_NameOverridesCasualties(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2015-06-17", State: "South Carolina", Fatalities: 5, ShooterName: "John Allen Smith"}
	b := &model.Record{Date: "2015-06-17", State: "SC", Fatalities: 50, ShooterName: "John A. Smith"}

	d := e.Evaluate(a, b)
	assert.True(t, d.Merge)
	assert.Equal(t, BranchNameOverride, d.Branch)
	assert.False(t, d.Signals.CasualtiesClose)
	assert.True(t, d.Signals.NameMatch)
	assert.True(t, d.Signals.StateMatch)
}

func TestEvaluate_CityOverlap(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2017-10-01", State: "Nevada", City: "Las Vegas", Fatalities: 3}
	b := &model.Record{Date: "2017-10-01", State: "Nevada", City: "Las Vegas Strip", Fatalities: 4}

	d := e.Evaluate(a, b)
	assert.True(t, d.Merge)
	assert.Equal(t, BranchCorroborated, d.Branch)
	assert.True(t, d.Signals.CityOverlap)
	assert.True(t, d.Signals.CasualtiesClose)
}

func TestEvaluate_DifferentStatesWithoutNamesNeverMerge(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2019-08-03", State: "Texas", City: "El Paso", Fatalities: 22, Injuries: 24}
	b := &model.Record{Date: "2019-08-03", State: "Ohio", City: "El Paso", Fatalities: 22, Injuries: 24}

	d := e.Evaluate(a, b)
	assert.False(t, d.Merge)
	assert.False(t, d.Signals.StateMatch)
	assert.Equal(t, BranchNone, d.Branch)
}

func TestEvaluate_MissingDateNeverMerges(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{State: "Texas", City: "El Paso", Fatalities: 22, ShooterName: "Patrick Crusius"}
	b := &model.Record{Date: "2019-08-03", State: "Texas", City: "El Paso", Fatalities: 22, ShooterName: "Patrick Crusius"}

	assert.False(t, e.Match(a, b))
	assert.False(t, e.Match(b, a))
	assert.False(t, e.Match(a, a))
}

func TestEvaluate_DateTolerance(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2019-08-03", State: "Texas", City: "El Paso", Fatalities: 22}
	nextDay := &model.Record{Date: "2019-08-04", State: "Texas", City: "El Paso", Fatalities: 22}
	twoDays := &model.Record{Date: "2019-08-05", State: "Texas", City: "El Paso", Fatalities: 22}

	d := e.Evaluate(a, nextDay)
	assert.True(t, d.Merge)
	assert.Equal(t, 1, d.Signals.DayDiff)

	d = e.Evaluate(a, twoDays)
	assert.False(t, d.Merge)
	assert.False(t, d.Signals.DateMatch)
}

func TestEvaluate_CoordsCorroborate(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2017-10-01", State: "Nevada", City: "Paradise", Fatalities: 58,
		Latitude: coord(36.0950), Longitude: coord(-115.1710)}
	b := &model.Record{Date: "2017-10-01", State: "Nevada", City: "Las Vegas", Fatalities: 59,
		Latitude: coord(36.1699), Longitude: coord(-115.1398)}

	d := e.Evaluate(a, b)
	assert.True(t, d.Merge)
	assert.False(t, d.Signals.CityOverlap)
	assert.True(t, d.Signals.CoordsClose)
	assert.Less(t, d.Signals.DistanceMiles, 10.0)
}

func TestEvaluate_MissingCoordsNotClose(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2017-10-01", State: "Nevada", Fatalities: 58, Latitude: coord(36.0950)}
	b := &model.Record{Date: "2017-10-01", State: "Nevada", Fatalities: 58,
		Latitude: coord(36.0950), Longitude: coord(-115.1710)}

	d := e.Evaluate(a, b)
	assert.False(t, d.Signals.CoordsClose)
	assert.Equal(t, -1.0, d.Signals.DistanceMiles)
	assert.False(t, d.Merge)
}

func TestEvaluate_Symmetric(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2017-10-01", State: "NV", City: "Las Vegas", Fatalities: 58, Injuries: 0,
		ShooterName: "Stephen Paddock", Latitude: coord(36.0950), Longitude: coord(-115.1710)}
	b := &model.Record{Date: "2017-10-02", State: "Nevada", City: "Las Vegas Strip", Fatalities: 60, Injuries: 422,
		ShooterName: "Stephen C. Paddock", Latitude: coord(36.1), Longitude: coord(-115.2)}

	assert.Equal(t, e.Evaluate(a, b), e.Evaluate(b, a))
}

func TestCasualtiesClose(t *testing.T) {
	cases := []struct {
		name string
		a, b model.Record
		want bool
	}{
		{"equal", model.Record{Fatalities: 5, Injuries: 10}, model.Record{Fatalities: 5, Injuries: 10}, true},
		{"within tolerance", model.Record{Fatalities: 5, Injuries: 10}, model.Record{Fatalities: 7, Injuries: 15}, true},
		{"fatalities too far", model.Record{Fatalities: 5, Injuries: 10}, model.Record{Fatalities: 8, Injuries: 10}, false},
		{"injuries too far", model.Record{Fatalities: 5, Injuries: 10}, model.Record{Fatalities: 5, Injuries: 16}, false},
		{"missing injuries tolerated", model.Record{Fatalities: 5, Injuries: 0}, model.Record{Fatalities: 5, Injuries: 400}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CasualtiesClose(&tc.a, &tc.b))
		})
	}
}

func TestCityOverlap(t *testing.T) {
	assert.True(t, CityOverlap("Winston-Salem", "salem"))
	assert.True(t, CityOverlap("Fort Worth, TX", "FORT"))
	assert.False(t, CityOverlap("Dayton", "Dallas"))
	assert.False(t, CityOverlap("", "Dallas"))
	assert.False(t, CityOverlap("", ""))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("", ""))
	assert.Equal(t, 100.0, Ratio("texas", "texas"))
	assert.Equal(t, 0.0, Ratio("tx", "oh"))
	assert.InDelta(t, 94.74, Ratio("california", "californa"), 0.01)
	assert.InDelta(t, 82.76, Ratio("john allen smith", "john a. smith"), 0.01)
	assert.InDelta(t, 78.26, Ratio("william smith", "bill smith"), 0.01)
	assert.InDelta(t, 70.0, Ratio("dale warren", "dale wong"), 1e-9)
	assert.InDelta(t, 50.0, Ratio("ab", "ba"), 1e-9)
}

func TestNameMatch(t *testing.T) {
	ok, _ := nameMatch("Seung-Hui Cho", "Seung Hui Cho")
	assert.True(t, ok)

	ok, _ = nameMatch("Omar Mateen", "omar mateen")
	assert.True(t, ok)

	ok, _ = nameMatch("Adam Lanza", "Lanza")
	assert.True(t, ok, "containment")

	ok, _ = nameMatch("Adam Lanza", "Dylann Roof")
	assert.False(t, ok)

	ok, _ = nameMatch("", "Dylann Roof")
	assert.False(t, ok)

	ok, r := nameMatch("William Smith", "Bill Smith")
	assert.True(t, ok, "ratio %.1f above threshold", r)

	// exactly at the threshold, one shared part, no containment
	ok, r = nameMatch("Dale Warren", "Dale Wong")
	assert.InDelta(t, NameRatioThreshold, r, 1e-9)
	assert.False(t, ok)
}

func TestEvaluate_NameOverrideOnNicknameVariant(t *testing.T) {
	e := NewEvaluator()
	a := &model.Record{Date: "2021-03-16", State: "Georgia", Fatalities: 2, ShooterName: "William Smith"}
	b := &model.Record{Date: "2021-03-16", State: "GA", Fatalities: 40, ShooterName: "Bill Smith"}

	d := e.Evaluate(a, b)
	assert.True(t, d.Merge)
	assert.Equal(t, BranchNameOverride, d.Branch)
	assert.True(t, d.Signals.NameMatch)
	assert.False(t, d.Signals.CasualtiesClose)
}

func TestHaversineMiles(t *testing.T) {
	assert.InDelta(t, 0.0, HaversineMiles(36.1, -115.1, 36.1, -115.1), 1e-9)
	// Los Angeles to San Francisco
	assert.InDelta(t, 347.0, HaversineMiles(34.0522, -118.2437, 37.7749, -122.4194), 3.0)
}
