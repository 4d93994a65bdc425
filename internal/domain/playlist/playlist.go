// Package playlist provides the Playlist domain entity.
package playlist

import "github.com/osa030/playlistbuilder/internal/domain/track"

// Playlist is the ordered result of a build run.
type Playlist struct {
	Tracks []track.Track // Recommended tracks, in catalog order
}

// TrackIDs returns all track IDs in the playlist.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Identities returns the identity of every track, in order.
func (p *Playlist) Identities() []track.Identity {
	identities := make([]track.Identity, len(p.Tracks))
	for i, t := range p.Tracks {
		identities[i] = t.Identity
	}
	return identities
}

// Truncate caps the playlist to at most limit tracks.
func (p *Playlist) Truncate(limit int) {
	if limit < 0 {
		limit = 0
	}
	if len(p.Tracks) > limit {
		p.Tracks = p.Tracks[:limit]
	}
}
