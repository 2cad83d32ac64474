// Package fingerprint derives the coarse bucket key used for exact deduplication.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/states"
)

// Fatality bucket labels
const (
	BucketNone   = "0"
	BucketSmall  = "1-3"
	BucketMedium = "4-7"
	BucketLarge  = "8-15"
	BucketMass   = "15+"
)

const keyDelimiter = "|"

// FatalityBucket maps a fatality count to its ordinal range label
func FatalityBucket(fatalities int) string {
	switch {
	case fatalities <= 0:
		return BucketNone
	case fatalities <= 3:
		return BucketSmall
	case fatalities <= 7:
		return BucketMedium
	case fatalities <= 15:
		return BucketLarge
	default:
		return BucketMass
	}
}

// Key returns the unhashed bucket key "date|state|bucket"
func Key(rec *model.Record) string {
	return rec.Date + keyDelimiter + states.MatchKey(rec.State) + keyDelimiter + FatalityBucket(rec.Fatalities)
}

// Of returns the hex SHA-256 fingerprint of a record
func Of(rec *model.Record) string {
	sum := sha256.Sum256([]byte(Key(rec)))
	return hex.EncodeToString(sum[:])
}

// Ensure sets rec.Fingerprint if it has not been set yet and returns it
func Ensure(rec *model.Record) string {
	if rec.Fingerprint == "" {
		rec.Fingerprint = Of(rec)
	}
	return rec.Fingerprint
}
