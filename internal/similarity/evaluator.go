// Package similarity decides whether two bucket-merged records describe the
// same incident. The policy is fixed; every decision carries the signals that
// produced it so a merge can be explained after the fact.
package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/parse"
	"github.com/ppiankov/incidentmerge/internal/states"
)

// Fixed matching policy for incident records
const (
	MaxDayDiff          = 1
	StateRatioThreshold = 80.0
	NameRatioThreshold  = 70.0
	MaxFatalityDiff     = 2
	MaxInjuryDiff       = 5
	MaxDistanceMiles    = 30.0
	EarthRadiusMiles    = 3956.0
	MinSharedNameParts  = 2
)

// Branch names the decision rule that fired
type Branch string

const (
	BranchNone         Branch = ""
	BranchCorroborated Branch = "casualties_and_location" // state + casualties + (city | coords | name)
	BranchNameOverride Branch = "name_override"           // state + matching perpetrator name
)

// Signals holds every computed signal plus the raw measurements behind them
type Signals struct {
	DateMatch       bool    `json:"date_match"`
	CityOverlap     bool    `json:"city_overlap"`
	StateMatch      bool    `json:"state_match"`
	CasualtiesClose bool    `json:"casualties_close"`
	CoordsClose     bool    `json:"coords_close"`
	NameMatch       bool    `json:"name_match"`
	DayDiff         int     `json:"day_diff"`
	StateRatio      float64 `json:"state_ratio"`
	NameRatio       float64 `json:"name_ratio,omitempty"`
	DistanceMiles   float64 `json:"distance_miles,omitempty"` // -1 when coordinates are unusable
}

// Decision is the outcome of comparing two records
type Decision struct {
	Merge   bool    `json:"merge"`
	Branch  Branch  `json:"branch,omitempty"`
	Signals Signals `json:"signals"`
}

// Evaluator compares records. It is stateless and safe for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a new evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Match reports whether a and b should merge
func (e *Evaluator) Match(a, b *model.Record) bool {
	return e.Evaluate(a, b).Merge
}

// Evaluate computes all signals for a and b and applies the decision rule.
// A missing date on either side is never waived: the pair cannot merge.
func (e *Evaluator) Evaluate(a, b *model.Record) Decision {
	var s Signals
	s.DistanceMiles = -1

	s.DateMatch, s.DayDiff = dateMatch(a.Date, b.Date)
	if !s.DateMatch {
		return Decision{Signals: s}
	}

	s.CityOverlap = CityOverlap(a.City, b.City)
	s.StateMatch, s.StateRatio = stateMatch(a.State, b.State)
	s.CasualtiesClose = CasualtiesClose(a, b)
	s.CoordsClose, s.DistanceMiles = coordsClose(a, b)
	s.NameMatch, s.NameRatio = nameMatch(a.ShooterName, b.ShooterName)

	d := Decision{Signals: s}
	switch {
	case s.StateMatch && s.CasualtiesClose && (s.CityOverlap || s.CoordsClose || s.NameMatch):
		d.Merge, d.Branch = true, BranchCorroborated
	case s.StateMatch && s.NameMatch:
		d.Merge, d.Branch = true, BranchNameOverride
	}
	return d
}

// Ratio returns the 0-100 insert/delete (Indel) similarity of a and b:
// 100 * 2 * LCS / (len(a) + len(b)), counted in runes.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*edlib.LCS(a, b)) / float64(total)
}

func dateMatch(a, b string) (bool, int) {
	if a == "" || b == "" {
		return false, -1
	}
	if a == b {
		return true, 0
	}
	days, ok := parse.DaysBetween(a, b)
	if !ok {
		return false, -1
	}
	return days <= MaxDayDiff, days
}

// CityOverlap reports whether two city strings share any token
func CityOverlap(a, b string) bool {
	tokens := cityTokens(a)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range strings.Fields(normalizeCity(b)) {
		if tokens[tok] {
			return true
		}
	}
	return false
}

var cityReplacer = strings.NewReplacer("-", " ", ",", " ")

func normalizeCity(s string) string {
	return cityReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func cityTokens(s string) map[string]bool {
	fields := strings.Fields(normalizeCity(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func stateMatch(a, b string) (bool, float64) {
	ka, kb := states.MatchKey(a), states.MatchKey(b)
	if ka == kb {
		return true, 100
	}
	r := Ratio(ka, kb)
	return r > StateRatioThreshold, r
}

// CasualtiesClose compares fatality and injury counts. A zero injury count on
// either side is treated as missing data rather than a disagreement.
func CasualtiesClose(a, b *model.Record) bool {
	fatalClose := absInt(a.Fatalities-b.Fatalities) <= MaxFatalityDiff
	injuryClose := absInt(a.Injuries-b.Injuries) <= MaxInjuryDiff || min(a.Injuries, b.Injuries) == 0
	return fatalClose && injuryClose
}

func coordsClose(a, b *model.Record) (bool, float64) {
	if !a.HasCoords() || !b.HasCoords() {
		return false, -1
	}
	miles := HaversineMiles(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
	if math.IsNaN(miles) {
		return false, -1
	}
	return miles <= MaxDistanceMiles, miles
}

// HaversineMiles returns the great-circle distance in miles between two points
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1, rlat2 := radians(lat1), radians(lat2)
	dlat := rlat2 - rlat1
	dlon := radians(lon2) - radians(lon1)

	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	return EarthRadiusMiles * 2 * math.Asin(math.Sqrt(math.Min(h, 1)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func nameMatch(a, b string) (bool, float64) {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return false, 0
	}

	r := Ratio(na, nb)
	if r > NameRatioThreshold {
		return true, r
	}
	if sharedParts(na, nb) >= MinSharedNameParts {
		return true, r
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true, r
	}
	return false, r
}

func sharedParts(a, b string) int {
	seen := make(map[string]bool)
	for _, p := range strings.Fields(a) {
		seen[p] = true
	}
	shared := 0
	counted := make(map[string]bool)
	for _, p := range strings.Fields(b) {
		if seen[p] && !counted[p] {
			counted[p] = true
			shared++
		}
	}
	return shared
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
