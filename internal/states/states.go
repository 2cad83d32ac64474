// Package states holds the fixed US state table used to normalize
// state names for display and for matching.
package states

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var byAbbrev = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
	"DC": "District of Columbia",
}

// byLowerName maps a lowercase full name to its lowercase abbreviation
var byLowerName = func() map[string]string {
	m := make(map[string]string, len(byAbbrev))
	for abbrev, name := range byAbbrev {
		m[strings.ToLower(name)] = strings.ToLower(abbrev)
	}
	return m
}()

// Len returns the number of entries in the table
func Len() int {
	return len(byAbbrev)
}

// DisplayName normalizes a state abbreviation to its full proper-case name.
// Unrecognized input is title-cased; empty input stays empty.
func DisplayName(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if name, ok := byAbbrev[strings.ToUpper(s)]; ok {
		return name
	}
	return cases.Title(language.English).String(s)
}

// MatchKey normalizes a state for comparison: full names become lowercase
// abbreviations, anything else is lowercased as-is.
func MatchKey(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	if abbrev, ok := byLowerName[s]; ok {
		return abbrev
	}
	return s
}
