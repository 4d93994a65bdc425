package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/osa030/playlistbuilder/internal/domain/track"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{
		filters: make([]Filter, 0, len(filters)),
	}
	for _, f := range filters {
		c.Add(f)
	}
	return c
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the track.
func (c *Chain) Execute(t track.Track) Result {
	for _, f := range c.filters {
		result := f.Check(t)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply returns the tracks accepted by every filter, preserving order.
func (c *Chain) Apply(ctx context.Context, tracks []track.Track) []track.Track {
	logger := zerolog.Ctx(ctx)
	kept := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		result := c.Execute(t)
		if !result.Accepted {
			logger.Debug().Msgf("track filtered: id=%s name=%q code=%s", t.ID, t.Name, result.Code)
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
