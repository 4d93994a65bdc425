// Package profile computes the average audio profile of a track set and picks
// the tracks closest to it.
package profile

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/osa030/playlistbuilder/internal/domain/track"
)

var (
	// ErrNoTracks is returned when averaging an empty track list.
	ErrNoTracks = errors.New("no tracks to build a profile from")
	// ErrMissingFeatures is returned when a track has no audio features attached.
	ErrMissingFeatures = errors.New("track has no audio features")
)

// Average returns the per-dimension arithmetic mean of the tracks' feature vectors.
func Average(tracks []track.Track) (track.FeatureVector, error) {
	if len(tracks) == 0 {
		return track.FeatureVector{}, ErrNoTracks
	}

	var sum [track.Dimensions]float64
	for _, t := range tracks {
		if !t.HasFeatures() {
			return track.FeatureVector{}, errors.Wrapf(ErrMissingFeatures, "track %q", t.ID)
		}
		for i, v := range t.Features.Values() {
			sum[i] += v
		}
	}

	n := float64(len(tracks))
	for i := range sum {
		sum[i] /= n
	}
	return track.FeatureVectorFromValues(sum), nil
}

// scoredTrack pairs a track with its distance to the target profile.
type scoredTrack struct {
	track    track.Track
	distance float64
}

// SelectSeeds returns up to limit tracks ordered by ascending Euclidean distance
// to target. Ties keep their input order. The list is always sorted, also when
// it is no longer than limit.
func SelectSeeds(tracks []track.Track, target track.FeatureVector, limit int) ([]track.Track, error) {
	if limit <= 0 {
		return []track.Track{}, nil
	}

	scored := make([]scoredTrack, 0, len(tracks))
	for _, t := range tracks {
		if !t.HasFeatures() {
			return nil, errors.Wrapf(ErrMissingFeatures, "track %q", t.ID)
		}
		scored = append(scored, scoredTrack{
			track:    t,
			distance: t.Features.Distance(target),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].distance < scored[j].distance
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	seeds := make([]track.Track, len(scored))
	for i, s := range scored {
		seeds[i] = s.track
	}
	return seeds, nil
}
