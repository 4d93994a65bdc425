// Package filter provides the filter chain applied to recommended tracks.
package filter

import (
	"github.com/osa030/playlistbuilder/internal/domain/track"
)

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "input_track", "duplicate_track"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for recommendation filters.
type Filter interface {
	// Name returns the filter name.
	Name() string
	// Check decides whether the track stays in the result.
	Check(t track.Track) Result
}
