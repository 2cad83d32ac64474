package mapper

import (
	"regexp"
	"strings"

	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/states"
)

// Source names, derived from lowercase file base names
const (
	SourceViolenceProject = "violence_project"
	SourceMotherJones     = "motherjones"
	SourceStanfordMSA     = "stanford_msa"
	SourceGVA             = "gva"
)

// leadingName matches a capitalized two- or three-token name opening a summary,
// e.g. "James Holmes" or "Stephen C. Paddock".
var leadingName = regexp.MustCompile(`^([A-Z][a-z]+ (?:[A-Z]\. )?[A-Z][a-z]+)`)

// ViolenceProjectAdapter maps The Violence Project mass shooter database
type ViolenceProjectAdapter struct{}

// Name returns the adapter name
func (a *ViolenceProjectAdapter) Name() string { return SourceViolenceProject }

// CanHandle matches the violence_project source
func (a *ViolenceProjectAdapter) CanHandle(source string) bool {
	return source == SourceViolenceProject
}

// Fill reads the split shooter name fields and the age column
func (a *ViolenceProjectAdapter) Fill(f *FieldReader, rec *model.Record) {
	rec.Date = f.Date("Full Date")
	rec.City = f.Text("City")
	rec.State = f.State("State")
	rec.Latitude = f.Coord("Latitude")
	rec.Longitude = f.Coord("Longitude")
	rec.Fatalities = f.Int("Number Killed")
	rec.Injuries = f.Int("Total Injured")
	rec.ShooterName = JoinName(f.Text("Shooter First Name"), f.Text("Shooter Last Name"))
	rec.ShooterAge = f.Int("Age")
}

// MotherJonesAdapter maps the Mother Jones mass shootings dataset
type MotherJonesAdapter struct{}

// Name returns the adapter name
func (a *MotherJonesAdapter) Name() string { return SourceMotherJones }

// CanHandle matches the motherjones source
func (a *MotherJonesAdapter) CanHandle(source string) bool {
	return source == SourceMotherJones
}

// Fill splits the combined location and takes the shooter name from the
// opening of the summary, which is also kept as a note
func (a *MotherJonesAdapter) Fill(f *FieldReader, rec *model.Record) {
	rec.Date = f.Date("date")
	rec.City, rec.State = SplitLocation(f.Raw("location"))
	rec.Fatalities = f.Int("fatalities")
	rec.Injuries = f.Int("injured")
	rec.ShooterAge = f.Int("age_of_shooter")

	summary := f.Text("summary")
	if summary != "" {
		rec.ShooterName = ExtractLeadingName(summary)
		if rec.ShooterName == "" {
			f.fieldFailure("summary", summary)
		}
		rec.Notes = []string{summary}
	}
}

// StanfordMSAAdapter maps the Stanford Mass Shootings in America dataset
type StanfordMSAAdapter struct{}

// Name returns the adapter name
func (a *StanfordMSAAdapter) Name() string { return SourceStanfordMSA }

// CanHandle matches the stanford_msa source
func (a *StanfordMSAAdapter) CanHandle(source string) bool {
	return source == SourceStanfordMSA
}

// Fill reads civilian casualty counts; the dataset carries no shooter age
func (a *StanfordMSAAdapter) Fill(f *FieldReader, rec *model.Record) {
	rec.Date = f.Date("Date")
	rec.City = f.Text("City")
	rec.State = f.State("State")
	rec.Latitude = f.Coord("Latitude")
	rec.Longitude = f.Coord("Longitude")
	rec.Fatalities = f.Int("Number of Civilian Fatalities")
	rec.Injuries = f.Int("Number of Civilian Injured")
	rec.ShooterName = f.Text("Shooter Name")
}

// GVAAdapter maps Gun Violence Archive incident exports
type GVAAdapter struct{}

// Name returns the adapter name
func (a *GVAAdapter) Name() string { return SourceGVA }

// CanHandle matches the gva source
func (a *GVAAdapter) CanHandle(source string) bool {
	return source == SourceGVA
}

// Fill keeps the street address as a note and the alternate killed count
// as TotalKilled
func (a *GVAAdapter) Fill(f *FieldReader, rec *model.Record) {
	rec.Date = f.Date("incident_date")
	rec.City = f.Text("city_or_county")
	rec.State = f.State("state")
	rec.Latitude = f.Coord("latitude")
	rec.Longitude = f.Coord("longitude")
	rec.Fatalities = f.Int("victims_killed")
	rec.Injuries = f.Int("victims_injured")

	if addr := f.Text("address"); addr != "" {
		rec.Notes = []string{"Address: " + addr}
	}

	killed := f.Int("killed")
	rec.TotalKilled = &killed
}

// JoinName assembles a name from first/last parts, "" when both are empty
func JoinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// SplitLocation splits "City, State" on the first ", ". Without the separator
// the whole string is the city and the state is empty.
func SplitLocation(location string) (city, state string) {
	if c, s, ok := strings.Cut(location, ", "); ok {
		return strings.TrimSpace(c), states.DisplayName(s)
	}
	return strings.TrimSpace(location), ""
}

// ExtractLeadingName pulls a perpetrator name from the start of a narrative.
// It returns "" when the narrative does not open with a name.
func ExtractLeadingName(narrative string) string {
	m := leadingName.FindStringSubmatch(narrative)
	if m == nil {
		return ""
	}
	return m[1]
}
