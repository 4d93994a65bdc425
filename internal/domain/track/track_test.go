package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Query(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		query    string
		encoded  string
	}{
		{
			name:     "name and artist",
			identity: Identity{Name: "Foo", Artist: "Bar"},
			query:    "track:Foo artist:Bar",
			encoded:  "track%3AFoo%20artist%3ABar",
		},
		{
			name:     "all fields keep fixed order",
			identity: Identity{Year: "1975", Album: "Sweet Baby James", Artist: "James Taylor", Name: "Fire and Rain"},
			query:    "track:Fire and Rain artist:James Taylor album:Sweet Baby James year:1975",
			encoded:  "track%3AFire%20and%20Rain%20artist%3AJames%20Taylor%20album%3ASweet%20Baby%20James%20year%3A1975",
		},
		{
			name:     "album only",
			identity: Identity{Album: "Bookends"},
			query:    "album:Bookends",
			encoded:  "album%3ABookends",
		},
		{
			name:     "catalog ids are not part of the query",
			identity: Identity{Name: "If", ID: "abc", Href: "https://api.spotify.com/v1/tracks/abc"},
			query:    "track:If",
			encoded:  "track%3AIf",
		},
		{
			name:     "empty identity",
			identity: Identity{},
			query:    "",
			encoded:  "",
		},
		{
			name:     "reserved characters",
			identity: Identity{Name: "Rock & Roll", Artist: "AC/DC"},
			query:    "track:Rock & Roll artist:AC/DC",
			encoded:  "track%3ARock%20%26%20Roll%20artist%3AAC%2FDC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.query, tt.identity.Query())
			assert.Equal(t, tt.encoded, tt.identity.EncodedQuery())
		})
	}
}

func TestYearFromReleaseDate(t *testing.T) {
	assert.Equal(t, "1975", YearFromReleaseDate("17/06/1975"))
	assert.Equal(t, "1975", YearFromReleaseDate("1975"))
	assert.Equal(t, "", YearFromReleaseDate(""))
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1970-02-01", "1970"},
		{"1970-02", "1970"},
		{"1970", "1970"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReleaseYear(tt.input))
		})
	}
}

func TestTrack_WithFeatures(t *testing.T) {
	original := Track{Identity: Identity{ID: "id-1"}}
	assert.False(t, original.HasFeatures())

	enriched := original.WithFeatures(AudioFeatures{ID: "id-1"})
	assert.True(t, enriched.HasFeatures())
	assert.False(t, original.HasFeatures(), "original track must not be mutated")
	assert.Equal(t, "id-1", enriched.Features.ID)
}

func TestFeatureVector_Values(t *testing.T) {
	v := FeatureVector{
		Acousticness:     0.1,
		Danceability:     0.2,
		Energy:           0.3,
		Instrumentalness: 0.4,
		Liveness:         0.5,
		Speechiness:      0.6,
		Valence:          0.7,
		Loudness:         -8,
	}

	values := v.Values()
	assert.Equal(t, [Dimensions]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, -8}, values)
	assert.Equal(t, v, FeatureVectorFromValues(values))
}

func TestFeatureVector_Distance(t *testing.T) {
	a := FeatureVector{}
	b := FeatureVector{Acousticness: 3, Loudness: 4}

	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 5.0, b.Distance(a), 1e-9)
	assert.Zero(t, b.Distance(b))
}
