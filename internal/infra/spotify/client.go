// Package spotify provides a client for the Spotify API.
package spotify

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/osa030/playlistbuilder/internal/domain/track"
	"github.com/osa030/playlistbuilder/internal/infra/httpcache"
)

var (
	// ErrAuth marks failures to obtain an access token.
	ErrAuth = errors.New("spotify authentication failed")
	// ErrRemote marks failed or malformed API responses.
	ErrRemote = errors.New("spotify request failed")
)

const (
	defaultTimeout = 10 * time.Second

	// maxTracksPerRequest is the API limit for batched audio features.
	maxTracksPerRequest = 100
)

// Client is a Spotify API client.
type Client struct {
	client *spotify.Client
	market string
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string        // defaults to the Spotify accounts endpoint
	BaseURL      string        // API base URL ending in "/", defaults to the Web API
	Market       string        // optional ISO 3166-1 alpha-2 market
	Timeout      time.Duration // per HTTP request
	RequestDelay time.Duration // pause after each response not served from the cache

	Store        httpcache.Store // optional response and token cache
	CacheTTL     time.Duration
	MatchHeaders []string
}

func (cfg Config) timeout() time.Duration {
	if cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}

// New authenticates and creates a new Spotify client.
// All calls of the client share one HTTP client and token.
func New(ctx context.Context, cfg Config) (*Client, error) {
	token, err := Authenticate(ctx, cfg)
	if err != nil {
		return nil, err
	}

	transport := httpcache.NewTransport(http.DefaultTransport, cfg.Store)
	transport.TTL = cfg.CacheTTL
	transport.Delay = cfg.RequestDelay
	if cfg.MatchHeaders != nil {
		transport.MatchHeaders = cfg.MatchHeaders
	}

	httpClient := &http.Client{
		Timeout: cfg.timeout(),
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   transport,
		},
	}

	opts := []spotify.ClientOption{spotify.WithRetry(false)}
	if cfg.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: spotify.New(httpClient, opts...),
		market: cfg.Market,
	}, nil
}

// SearchTrack resolves an identity to the best matching catalog track.
// Returns track.ErrNotFound when nothing matches or the identity is empty.
func (c *Client) SearchTrack(ctx context.Context, identity track.Identity) (track.Track, error) {
	query := identity.Query()
	if query == "" {
		return track.Track{}, errors.Wrap(track.ErrNotFound, "empty search query")
	}

	zerolog.Ctx(ctx).Debug().Msgf("searching track: query=%q", query)

	result, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, c.options(1)...)
	if err != nil {
		return track.Track{}, remoteError(err, "failed to search")
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return track.Track{}, errors.Wrapf(track.ErrNotFound, "query %q", query)
	}

	t := result.Tracks.Tracks[0]
	return track.Track{Identity: convertIdentity(t.SimpleTrack, t.Album)}, nil
}

// GetAudioFeatures returns copies of the tracks with their audio features attached.
// Feature records are matched to tracks by ID. A track without a record is an error.
func (c *Client) GetAudioFeatures(ctx context.Context, tracks []track.Track) ([]track.Track, error) {
	if len(tracks) == 0 {
		return []track.Track{}, nil
	}

	// Request each ID once
	ids := make([]spotify.ID, 0, len(tracks))
	seen := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			return nil, errors.Newf("track %q has no catalog ID", t.Name)
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ids = append(ids, spotify.ID(t.ID))
	}

	byID := make(map[string]*spotify.AudioFeatures, len(ids))
	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		zerolog.Ctx(ctx).Debug().Msgf("getting audio features: tracks=%d", len(batch))

		features, err := c.client.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return nil, remoteError(err, "failed to get audio features")
		}
		if len(features) != len(batch) {
			return nil, errors.Mark(
				errors.Newf("audio features count mismatch: requested %d, got %d", len(batch), len(features)),
				ErrRemote)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			byID[string(f.ID)] = f
		}
	}

	enriched := make([]track.Track, len(tracks))
	for i, t := range tracks {
		f, ok := byID[t.ID]
		if !ok {
			return nil, errors.Mark(errors.Newf("no audio features for track %s", t.ID), ErrRemote)
		}
		enriched[i] = t.WithFeatures(convertFeatures(f))
	}

	return enriched, nil
}

// GetRecommendations requests up to limit tracks seeded by seedIDs and steered
// toward the target profile. When useCache is false the response cache is
// neither read nor written for this call.
func (c *Client) GetRecommendations(ctx context.Context, target track.FeatureVector, seedIDs []string, limit int, useCache bool) ([]track.Track, error) {
	if len(seedIDs) == 0 {
		return nil, errors.New("at least one seed track is required")
	}

	seeds := spotify.Seeds{Tracks: make([]spotify.ID, len(seedIDs))}
	for i, id := range seedIDs {
		seeds.Tracks[i] = spotify.ID(id)
	}

	attrs := spotify.NewTrackAttributes().
		TargetAcousticness(target.Acousticness).
		TargetDanceability(target.Danceability).
		TargetEnergy(target.Energy).
		TargetInstrumentalness(target.Instrumentalness).
		TargetLiveness(target.Liveness).
		TargetSpeechiness(target.Speechiness).
		TargetValence(target.Valence).
		TargetLoudness(target.Loudness)

	if !useCache {
		ctx = httpcache.Bypass(ctx)
	}

	zerolog.Ctx(ctx).Debug().Msgf("getting recommendations: seeds=%d limit=%d cache=%t", len(seedIDs), limit, useCache)

	recs, err := c.client.GetRecommendations(ctx, seeds, attrs, c.options(limit)...)
	if err != nil {
		return nil, remoteError(err, "failed to get recommendations")
	}

	tracks := make([]track.Track, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		tracks = append(tracks, track.Track{Identity: convertIdentity(t, t.Album)})
	}

	return tracks, nil
}

// options returns the request options shared by catalog calls.
func (c *Client) options(limit int) []spotify.RequestOption {
	opts := []spotify.RequestOption{spotify.Limit(limit)}
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	return opts
}

// convertIdentity converts a Spotify track to its canonical identity.
func convertIdentity(t spotify.SimpleTrack, album spotify.SimpleAlbum) track.Identity {
	var artist string
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}

	return track.Identity{
		Name:   t.Name,
		Artist: artist,
		Album:  album.Name,
		Year:   track.ReleaseYear(album.ReleaseDate),
		ID:     string(t.ID),
		Href:   t.Endpoint,
	}
}

// convertFeatures converts Spotify audio features to the domain type.
func convertFeatures(f *spotify.AudioFeatures) track.AudioFeatures {
	return track.AudioFeatures{
		FeatureVector: track.FeatureVector{
			Acousticness:     float64(f.Acousticness),
			Danceability:     float64(f.Danceability),
			Energy:           float64(f.Energy),
			Instrumentalness: float64(f.Instrumentalness),
			Liveness:         float64(f.Liveness),
			Speechiness:      float64(f.Speechiness),
			Valence:          float64(f.Valence),
			Loudness:         float64(f.Loudness),
		},
		Duration:      time.Duration(f.Duration) * time.Millisecond,
		Key:           int(f.Key),
		Mode:          int(f.Mode),
		Tempo:         float64(f.Tempo),
		TimeSignature: int(f.TimeSignature),
		ID:            string(f.ID),
		URI:           string(f.URI),
		TrackHref:     f.TrackURL,
		AnalysisURL:   f.AnalysisURL,
	}
}

// remoteError wraps an API error and marks it as ErrRemote.
func remoteError(err error, msg string) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		err = errors.Wrapf(err, "status %d", apiErr.Status)
	}
	return errors.Mark(errors.Wrap(err, msg), ErrRemote)
}
