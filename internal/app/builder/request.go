package builder

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/playlistbuilder/internal/domain/playlist"
	"github.com/osa030/playlistbuilder/internal/domain/track"
)

// ErrInput marks an invalid invocation payload.
var ErrInput = errors.New("invalid input")

// TrackInput is one input song as given by the caller. All fields are optional.
type TrackInput struct {
	Name        string `json:"name,omitempty" mapstructure:"name"`
	Artist      string `json:"artist,omitempty" mapstructure:"artist"`
	Album       string `json:"album,omitempty" mapstructure:"album"`
	Year        string `json:"year,omitempty" mapstructure:"year"`
	ReleaseDate string `json:"releaseDate,omitempty" mapstructure:"releaseDate"` // used when Year is empty
}

// Identity returns the searchable identity of the input.
func (in TrackInput) Identity() track.Identity {
	year := in.Year
	if year == "" && in.ReleaseDate != "" {
		year = track.YearFromReleaseDate(in.ReleaseDate)
	}
	return track.Identity{
		Name:   in.Name,
		Artist: in.Artist,
		Album:  in.Album,
		Year:   year,
	}
}

// Request is a playlist build request.
type Request struct {
	Tracks []TrackInput `json:"tracks" mapstructure:"tracks" validate:"required,min=1"`
	Limit  int          `json:"limit,omitempty" mapstructure:"limit" validate:"gte=0,lte=100"` // 0 selects the default limit
}

// Validate validates the request. Failures are marked ErrInput.
func (r *Request) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return errors.Mark(errors.Wrap(err, "request validation failed"), ErrInput)
	}
	return nil
}

// ParseRequest decodes and validates a JSON payload.
// Numbers are accepted where strings are expected, so "year": 1999 is valid.
func ParseRequest(data []byte) (*Request, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Mark(errors.New("empty payload"), ErrInput)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse payload"), ErrInput)
	}

	var req Request
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create payload decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode payload"), ErrInput)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Response is the build result written to the caller.
type Response struct {
	Tracks []track.Identity `json:"tracks"`
}

// NewResponse creates a response listing the identities of the tracks.
func NewResponse(tracks []track.Track) Response {
	p := playlist.Playlist{Tracks: tracks}
	return Response{Tracks: p.Identities()}
}
