package httpcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// HeaderFromCache is set to "1" on responses served from the cache.
const HeaderFromCache = "X-From-Cache"

const (
	// DefaultTTL is how long a response stays cached.
	DefaultTTL = time.Hour
	// DefaultDelay is the pause after every response not served from the cache.
	DefaultDelay = 100 * time.Millisecond

	keyPrefix = "http:"
)

// DefaultMatchHeaders are the request headers that take part in the cache key.
var DefaultMatchHeaders = []string{"Accept", "Content-Type"}

type contextKey int

const bypassKey contextKey = iota

// Bypass returns a context whose requests neither read from nor write to the cache.
func Bypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey, true)
}

// IsBypassed reports whether the context disables the cache.
func IsBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey).(bool)
	return v
}

// IsFromCache reports whether the response was served from the cache.
func IsFromCache(resp *http.Response) bool {
	return resp != nil && resp.Header.Get(HeaderFromCache) == "1"
}

// cachedResponse is the stored form of a response.
type cachedResponse struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// Transport caches successful GET responses in a Store and throttles every
// request that reaches the network.
type Transport struct {
	Base         http.RoundTripper // nil means http.DefaultTransport
	Store        Store             // nil disables caching, throttling still applies
	TTL          time.Duration     // <= 0 means DefaultTTL
	Delay        time.Duration     // pause after each network response, 0 disables
	MatchHeaders []string          // request headers included in the key

	sleep func(ctx context.Context, d time.Duration) error
}

// NewTransport creates a Transport with default TTL, delay and matched headers.
func NewTransport(base http.RoundTripper, store Store) *Transport {
	return &Transport{
		Base:         base,
		Store:        store,
		TTL:          DefaultTTL,
		Delay:        DefaultDelay,
		MatchHeaders: DefaultMatchHeaders,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := zerolog.Ctx(ctx)

	cacheable := t.Store != nil && req.Method == http.MethodGet && !IsBypassed(ctx)

	var key string
	if cacheable {
		key = t.Key(req)
		resp, ok, err := t.lookup(key, req)
		if err != nil {
			log.Warn().Err(err).Msg("cache lookup failed, fetching from network")
		} else if ok {
			log.Debug().Msgf("cache hit: %s %s", req.Method, req.URL.Path)
			return resp, nil
		}
		log.Debug().Msgf("cache miss: %s %s", req.Method, req.URL.Path)
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if cacheable && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		resp, err = t.save(ctx, key, resp)
		if err != nil {
			return nil, err
		}
	}

	if err := t.wait(ctx); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// Key returns the cache key for a request: method, URL with sorted query
// parameters and the matched headers.
func (t *Transport) Key(req *http.Request) string {
	u := *req.URL
	u.RawQuery = u.Query().Encode()
	u.Fragment = ""

	var b strings.Builder
	b.WriteString(req.Method)
	b.WriteString(" ")
	b.WriteString(u.String())
	for _, h := range t.MatchHeaders {
		b.WriteString("\n")
		b.WriteString(http.CanonicalHeaderKey(h))
		b.WriteString(": ")
		b.WriteString(req.Header.Get(h))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) ttl() time.Duration {
	if t.TTL <= 0 {
		return DefaultTTL
	}
	return t.TTL
}

// lookup returns the cached response for key, if any.
func (t *Transport) lookup(key string, req *http.Request) (*http.Response, bool, error) {
	data, ok, err := t.Store.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode cached response")
	}

	header := cached.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(HeaderFromCache, "1")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.StatusCode, http.StatusText(cached.StatusCode)),
		StatusCode:    cached.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}, true, nil
}

// save stores the response and returns it with a fresh body.
func (t *Transport) save(ctx context.Context, key string, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	data, err := json.Marshal(cachedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response for cache")
	}

	if err := t.Store.Set(key, data, t.ttl()); err != nil {
		// A cache write failure does not fail the request.
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to store response in cache")
	}
	return resp, nil
}

// wait blocks for the configured delay.
func (t *Transport) wait(ctx context.Context) error {
	if t.Delay <= 0 {
		return nil
	}
	if t.sleep != nil {
		return t.sleep(ctx, t.Delay)
	}
	return sleepWithContext(ctx, t.Delay)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "request canceled")
	case <-timer.C:
		return nil
	}
}
