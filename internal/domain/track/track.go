// Package track provides the Track domain entity.
package track

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned when a catalog search yields no match for an identity.
var ErrNotFound = errors.New("track not found in catalog")

// Identity describes the searchable identity of a song and, once resolved,
// its catalog identifiers. An empty field means the value is absent.
type Identity struct {
	Name   string `json:"name"`   // Track name
	Artist string `json:"artist"` // Main artist name
	Album  string `json:"album"`  // Album name
	Year   string `json:"year"`   // Release year
	ID     string `json:"id"`     // Catalog track ID
	Href   string `json:"href"`   // Catalog API endpoint for the track
}

// Track pairs an identity with the audio features attached after lookup.
type Track struct {
	Identity
	Features *AudioFeatures // nil until the feature lookup step
}

// HasFeatures reports whether audio features have been attached.
func (t *Track) HasFeatures() bool {
	return t.Features != nil
}

// WithFeatures returns a copy of the track carrying the given features.
func (t Track) WithFeatures(f AudioFeatures) Track {
	t.Features = &f
	return t
}

// YearFromReleaseDate derives a year from a full release date string by
// taking its trailing four characters (e.g. "17/06/1975" -> "1975").
func YearFromReleaseDate(releaseDate string) string {
	if len(releaseDate) <= 4 {
		return releaseDate
	}
	return releaseDate[len(releaseDate)-4:]
}

// ReleaseYear returns the year part of a catalog release date, which may be
// "YYYY", "YYYY-MM" or "YYYY-MM-DD".
func ReleaseYear(releaseDate string) string {
	if len(releaseDate) <= 4 {
		return releaseDate
	}
	return releaseDate[:4]
}

// Query builds the catalog search query from the available fields, in the
// order name, artist, album, year. Absent fields are omitted.
func (i Identity) Query() string {
	fields := []struct {
		key   string
		value string
	}{
		{"track", i.Name},
		{"artist", i.Artist},
		{"album", i.Album},
		{"year", i.Year},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		parts = append(parts, f.key+":"+f.value)
	}
	return strings.Join(parts, " ")
}

// EncodedQuery returns Query percent-encoded, with spaces as %20.
func (i Identity) EncodedQuery() string {
	return strings.ReplaceAll(url.QueryEscape(i.Query()), "+", "%20")
}
