// Package builder runs the playlist pipeline: resolve the input songs, profile
// their audio features, pick seeds and turn recommendations into a playlist.
package builder

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/playlistbuilder/internal/app/filter"
	"github.com/osa030/playlistbuilder/internal/app/profile"
	"github.com/osa030/playlistbuilder/internal/domain/playlist"
	"github.com/osa030/playlistbuilder/internal/domain/track"
)

const (
	DefaultSeedLimit = 5
	DefaultLimit     = 10
)

// CatalogClient is the catalog interface needed by the builder.
type CatalogClient interface {
	SearchTrack(ctx context.Context, identity track.Identity) (track.Track, error)
	GetAudioFeatures(ctx context.Context, tracks []track.Track) ([]track.Track, error)
	GetRecommendations(ctx context.Context, target track.FeatureVector, seedIDs []string, limit int, useCache bool) ([]track.Track, error)
}

// Config represents builder configuration.
type Config struct {
	SeedLimit             int  // seeds sent with the recommendation request
	DefaultLimit          int  // playlist length when the request has none
	DedupeRecommendations bool // also drop repeated IDs within the recommendations
}

// Builder builds playlists from a catalog.
type Builder struct {
	catalog CatalogClient
	config  Config
}

// New creates a new Builder. Zero config values fall back to the defaults.
func New(catalog CatalogClient, config Config) *Builder {
	if config.SeedLimit <= 0 {
		config.SeedLimit = DefaultSeedLimit
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = DefaultLimit
	}
	return &Builder{
		catalog: catalog,
		config:  config,
	}
}

// Run builds a playlist for the request.
// Input songs missing from the catalog are skipped; any other failure aborts the run.
func (b *Builder) Run(ctx context.Context, req Request) ([]track.Track, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	limit := req.Limit
	if limit == 0 {
		limit = b.config.DefaultLimit
	}

	resolved, err := b.resolve(ctx, req.Tracks)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, errors.Wrap(profile.ErrNoTracks, "none of the input tracks was found")
	}

	enriched, err := b.catalog.GetAudioFeatures(ctx, resolved)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get audio features")
	}
	logger.Debug().Msgf("enriched tracks: count=%d", len(enriched))

	target, err := profile.Average(enriched)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build target profile")
	}
	logger.Debug().Msgf("target profile: %+v", target)

	seeds, err := profile.SelectSeeds(enriched, target, b.config.SeedLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select seeds")
	}
	seedList := playlist.Playlist{Tracks: seeds}
	seedIDs := seedList.TrackIDs()
	logger.Debug().Msgf("selected seeds: ids=%v", seedIDs)

	recommended, err := b.catalog.GetRecommendations(ctx, target, seedIDs, limit, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recommendations")
	}
	logger.Debug().Msgf("recommended tracks: count=%d", len(recommended))

	chain := filter.NewChain(filter.NewExcludeTracksFilter(enriched))
	if b.config.DedupeRecommendations {
		chain.Add(filter.NewDuplicateTrackFilter())
	}

	result := &playlist.Playlist{Tracks: chain.Apply(ctx, recommended)}
	result.Truncate(limit)
	logger.Debug().Msgf("playlist built: tracks=%d limit=%d", len(result.Tracks), limit)

	return result.Tracks, nil
}

// resolve looks up every input in order, skipping those not in the catalog.
func (b *Builder) resolve(ctx context.Context, inputs []TrackInput) ([]track.Track, error) {
	logger := zerolog.Ctx(ctx)
	resolved := make([]track.Track, 0, len(inputs))

	for i, in := range inputs {
		identity := in.Identity()
		t, err := b.catalog.SearchTrack(ctx, identity)
		if errors.Is(err, track.ErrNotFound) {
			logger.Debug().Msgf("track not found, skipping: index=%d query=%q", i, identity.Query())
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve track (index %d)", i)
		}

		logger.Debug().Msgf("resolved track: index=%d id=%s name=%q artist=%q", i, t.ID, t.Name, t.Artist)
		resolved = append(resolved, t)
	}

	logger.Debug().Msgf("resolved tracks: found=%d requested=%d", len(resolved), len(inputs))
	return resolved, nil
}
