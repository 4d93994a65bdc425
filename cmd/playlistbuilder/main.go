// Package main provides the playlist builder CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playlistbuilder/internal/app/builder"
	"github.com/osa030/playlistbuilder/internal/infra/config"
	"github.com/osa030/playlistbuilder/internal/infra/httpcache"
	"github.com/osa030/playlistbuilder/internal/infra/logger"
	"github.com/osa030/playlistbuilder/internal/infra/spotify"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitInput  = 2
	exitAuth   = 3
	exitRemote = 4
)

var (
	app        = kingpin.New("playlistbuilder", "Build a playlist of recommendations from a few songs")
	configPath = app.Flag("config", "Path to config file").Default("config/playlistbuilder.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
	noCache    = app.Flag("no-cache", "Disable the response cache for this run").Bool()
	cacheDir   = app.Flag("cache-dir", "Response cache directory (overrides config)").String()

	// build command (default)
	buildCmd     = app.Command("build", "Build a playlist from a JSON payload (default)").Default()
	buildPayload = buildCmd.Arg("payload", "JSON payload; read from stdin when omitted or \"-\"").Strings()

	// auth command
	authCmd = app.Command("auth", "Check the client credentials and cache the access token")

	// purge-cache command
	purgeCacheCmd = app.Command("purge-cache", "Remove every cached response and token")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(exitFailed)
	}

	// Load config
	zlog.Debug().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Msgf("Failed to load config: %v", err)
		os.Exit(exitFailed)
	}
	if *cacheDir != "" {
		cfg.Cache.Dir = *cacheDir
	}
	if *noCache {
		cfg.DisableCache()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case authCmd.FullCommand():
		err = authenticate(ctx, cfg, os.Stdout)
	case purgeCacheCmd.FullCommand():
		err = purgeCache(cfg)
	default:
		err = build(ctx, cfg, *buildPayload, os.Stdin, os.Stdout)
	}

	if err != nil {
		zlog.Error().Msgf("%s failed: %v", command, err)
		stop()
		os.Exit(exitCode(err))
	}
}

// build runs one playlist build and writes the JSON result to out.
// Nothing is written to out on failure.
func build(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, out io.Writer) error {
	payload, err := readPayload(args, stdin)
	if err != nil {
		return err
	}

	req, err := builder.ParseRequest(payload)
	if err != nil {
		return err
	}

	ctx, runID := logger.WithRun(ctx)
	zlog.Ctx(ctx).Debug().Msgf("starting build: run_id=%s tracks=%d limit=%d", runID, len(req.Tracks), req.Limit)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := spotify.New(ctx, spotifyConfig(cfg, store))
	if err != nil {
		return errors.Wrap(err, "failed to create Spotify client")
	}

	b := builder.New(client, builder.Config{
		SeedLimit:             cfg.Pipeline.SeedLimit,
		DefaultLimit:          cfg.Pipeline.DefaultLimit,
		DedupeRecommendations: cfg.Pipeline.DedupeRecommendations,
	})

	tracks, err := b.Run(ctx, *req)
	if err != nil {
		return err
	}

	zlog.Ctx(ctx).Info().Msgf("playlist built: tracks=%d", len(tracks))
	return writeResponse(out, builder.NewResponse(tracks))
}

// authenticate obtains an access token, storing it in the cache when enabled.
func authenticate(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	token, err := spotify.Authenticate(ctx, spotifyConfig(cfg, store))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Authorization successful: token_type=%s expires=%s\n",
		token.Type(), token.Expiry.Local().Format(time.RFC3339))
	return nil
}

// openStore opens the cache store when the cache is enabled.
// The returned store is nil otherwise.
func openStore(cfg *config.Config) (httpcache.Store, func(), error) {
	if !cfg.CacheEnabled() {
		return nil, func() {}, nil
	}
	store, err := httpcache.OpenBadger(cfg.Cache.Dir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// spotifyConfig converts the loaded configuration for the Spotify client.
func spotifyConfig(cfg *config.Config, store httpcache.Store) spotify.Config {
	return spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
		BaseURL:      cfg.Spotify.APIURL,
		Market:       cfg.Spotify.Market,
		Timeout:      cfg.Timeout(),
		RequestDelay: cfg.RequestDelay(),
		Store:        store,
		CacheTTL:     cfg.CacheTTL(),
		MatchHeaders: cfg.Cache.MatchHeaders,
	}
}

// purgeCache removes every entry from the configured cache directory.
func purgeCache(cfg *config.Config) error {
	store, err := httpcache.OpenBadger(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Purge(); err != nil {
		return err
	}
	zlog.Info().Msgf("Cache purged: dir=%s", cfg.Cache.Dir)
	return nil
}

// readPayload joins the positional arguments with spaces, or reads stdin
// when there are none or the only one is "-".
func readPayload(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read payload from stdin")
		}
		return data, nil
	}
	return []byte(strings.Join(args, " ")), nil
}

func writeResponse(out io.Writer, resp builder.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "failed to encode response")
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(err, "failed to write response")
	}
	return nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, builder.ErrInput):
		return exitInput
	case errors.Is(err, spotify.ErrAuth):
		return exitAuth
	case errors.Is(err, spotify.ErrRemote):
		return exitRemote
	default:
		return exitFailed
	}
}
