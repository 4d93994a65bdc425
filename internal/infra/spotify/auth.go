package spotify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/playlistbuilder/internal/infra/httpcache"
)

// tokenMargin is subtracted from the token lifetime when caching it.
const tokenMargin = time.Minute

// Authenticate obtains an app access token with the client credentials grant.
// When cfg.Store is set, a still valid token from an earlier run is reused
// and a freshly issued one is stored. Failures are marked ErrAuth.
func Authenticate(ctx context.Context, cfg Config) (*oauth2.Token, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.Mark(errors.New("client ID and client secret are required"), ErrAuth)
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	logger := zerolog.Ctx(ctx)
	key := tokenKey(cfg.ClientID, cfg.ClientSecret, tokenURL)

	if cfg.Store != nil {
		if token := loadToken(cfg.Store, key); token != nil {
			logger.Debug().Msg("using cached access token")
			return token, nil
		}
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	httpClient := &http.Client{Timeout: cfg.timeout()}
	token, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, httpClient))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to obtain access token"), ErrAuth)
	}
	if token.AccessToken == "" {
		return nil, errors.Mark(errors.New("token response has no access token"), ErrAuth)
	}

	logger.Debug().Msgf("obtained access token: expires=%s", token.Expiry.Format(time.RFC3339))

	if cfg.Store != nil {
		if err := saveToken(cfg.Store, key, token); err != nil {
			logger.Warn().Err(err).Msg("failed to cache access token")
		}
	}

	return token, nil
}

// tokenKey derives the store key of a token from the credentials it was issued for.
func tokenKey(clientID, clientSecret, tokenURL string) string {
	sum := sha256.Sum256([]byte(clientID + "\x00" + clientSecret + "\x00" + tokenURL))
	return "token:" + hex.EncodeToString(sum[:])
}

// loadToken returns the cached token, or nil when none is usable.
func loadToken(store httpcache.Store, key string) *oauth2.Token {
	data, ok, err := store.Get(key)
	if err != nil || !ok {
		return nil
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil
	}
	if !token.Valid() {
		return nil
	}
	return &token
}

// saveToken stores a token until shortly before it expires.
// Tokens without an expiry are not stored.
func saveToken(store httpcache.Store, key string, token *oauth2.Token) error {
	if token.Expiry.IsZero() {
		return nil
	}
	ttl := time.Until(token.Expiry) - tokenMargin
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "failed to encode token")
	}
	return store.Set(key, data, ttl)
}
