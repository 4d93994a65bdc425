package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/playlistbuilder/internal/domain/track"
)

func tracksWithIDs(ids ...string) []track.Track {
	tracks := make([]track.Track, len(ids))
	for i, id := range ids {
		tracks[i] = track.Track{Identity: track.Identity{ID: id}}
	}
	return tracks
}

func idsOf(tracks []track.Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

func TestExcludeTracksFilter_Check(t *testing.T) {
	f := NewExcludeTracksFilter(tracksWithIDs("in-1", "in-2", ""))

	tests := []struct {
		name         string
		id           string
		wantAccepted bool
		wantCode     string
	}{
		{name: "input track", id: "in-1", wantAccepted: false, wantCode: "input_track"},
		{name: "other input track", id: "in-2", wantAccepted: false, wantCode: "input_track"},
		{name: "new track", id: "rec-1", wantAccepted: true},
		{name: "empty id is not excluded", id: "", wantAccepted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.Check(track.Track{Identity: track.Identity{ID: tt.id}})
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			assert.Equal(t, tt.wantCode, result.Code)
		})
	}
}

func TestDuplicateTrackFilter_Check(t *testing.T) {
	f := NewDuplicateTrackFilter()

	assert.True(t, f.Check(track.Track{Identity: track.Identity{ID: "a"}}).Accepted)
	assert.True(t, f.Check(track.Track{Identity: track.Identity{ID: "b"}}).Accepted)

	result := f.Check(track.Track{Identity: track.Identity{ID: "a"}})
	assert.False(t, result.Accepted)
	assert.Equal(t, "duplicate_track", result.Code)
}

func TestChain_Apply(t *testing.T) {
	tests := []struct {
		name     string
		filters  func() []Filter
		input    []string
		expected []string
	}{
		{
			name:     "no filters keeps everything",
			filters:  func() []Filter { return nil },
			input:    []string{"a", "b", "a"},
			expected: []string{"a", "b", "a"},
		},
		{
			name: "exclude input tracks only",
			filters: func() []Filter {
				return []Filter{NewExcludeTracksFilter(tracksWithIDs("b"))}
			},
			input:    []string{"a", "b", "c", "a"},
			expected: []string{"a", "c", "a"},
		},
		{
			name: "exclude and dedupe",
			filters: func() []Filter {
				return []Filter{
					NewExcludeTracksFilter(tracksWithIDs("b")),
					NewDuplicateTrackFilter(),
				}
			},
			input:    []string{"a", "b", "c", "a", "c", "d"},
			expected: []string{"a", "c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(tt.filters()...)
			result := chain.Apply(context.Background(), tracksWithIDs(tt.input...))
			assert.Equal(t, tt.expected, idsOf(result))
		})
	}
}

func TestChain_ExecuteStopsAtFirstRejection(t *testing.T) {
	dedupe := NewDuplicateTrackFilter()
	chain := NewChain(NewExcludeTracksFilter(tracksWithIDs("x")), dedupe)

	result := chain.Execute(track.Track{Identity: track.Identity{ID: "x"}})
	assert.Equal(t, Reject("input_track"), result)

	// The rejected track never reached the duplicate filter.
	assert.True(t, dedupe.Check(track.Track{Identity: track.Identity{ID: "x"}}).Accepted)
	assert.Len(t, chain.Filters(), 2)
}
