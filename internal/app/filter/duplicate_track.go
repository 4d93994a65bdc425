package filter

import (
	"github.com/osa030/playlistbuilder/internal/domain/track"
)

// ExcludeTracksFilter rejects tracks whose catalog ID belongs to a fixed set,
// typically the input tracks of a build.
type ExcludeTracksFilter struct {
	ids map[string]bool
}

// NewExcludeTracksFilter creates a filter excluding the IDs of the given tracks.
func NewExcludeTracksFilter(tracks []track.Track) *ExcludeTracksFilter {
	ids := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids[t.ID] = true
		}
	}
	return &ExcludeTracksFilter{ids: ids}
}

// Name returns the filter name.
func (f *ExcludeTracksFilter) Name() string {
	return "exclude_tracks_filter"
}

// Check rejects tracks already present in the excluded set.
func (f *ExcludeTracksFilter) Check(t track.Track) Result {
	if f.ids[t.ID] {
		return Reject("input_track")
	}
	return Accept()
}

// DuplicateTrackFilter rejects a track whose ID it has already accepted.
// It is stateful: use a fresh instance per track list.
type DuplicateTrackFilter struct {
	seen map[string]bool
}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter() *DuplicateTrackFilter {
	return &DuplicateTrackFilter{
		seen: make(map[string]bool),
	}
}

// Name returns the filter name.
func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

// Check rejects repeated track IDs.
func (f *DuplicateTrackFilter) Check(t track.Track) Result {
	if f.seen[t.ID] {
		return Reject("duplicate_track")
	}
	f.seen[t.ID] = true
	return Accept()
}
