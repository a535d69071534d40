package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coolbeans/lexnav/pkg/cache"
	"github.com/coolbeans/lexnav/pkg/config"
	"github.com/coolbeans/lexnav/pkg/eurlex"
	"github.com/coolbeans/lexnav/pkg/extract"
	"github.com/coolbeans/lexnav/pkg/library"
	"github.com/coolbeans/lexnav/pkg/logger"
	"github.com/coolbeans/lexnav/pkg/metrics"
	"github.com/coolbeans/lexnav/pkg/reader"
	"github.com/coolbeans/lexnav/pkg/search"
	"github.com/coolbeans/lexnav/pkg/summarize"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	logLevel    string
	pretty      bool
	showMetrics bool
}

// app holds the components wired from configuration for one invocation.
type app struct {
	config  *config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
	store   cache.Store
	client  *eurlex.EURLexClient
	loader  *library.Loader
	reader  *reader.Reader
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	var loader *config.Loader
	if flags.configPath != "" {
		loader = config.NewLoaderWithPath(flags.configPath)
	} else {
		defaultLoader, err := config.NewLoader()
		if err != nil {
			return nil, err
		}
		loader = defaultLoader
	}
	return loader.Load()
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.pretty {
		cfg.Log.Pretty = true
	}

	zlog := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	application := &app{
		config:  cfg,
		logger:  zlog,
		metrics: metrics.New(),
	}

	application.store = newStore(ctx, cfg, zlog)

	application.client = eurlex.NewEURLexClient(eurlex.EURLexClientConfig{
		RateLimit:       cfg.EURLex.RateLimit,
		CacheTTL:        cfg.EURLex.CacheTTL,
		Timeout:         cfg.EURLex.Timeout,
		UserAgent:       cfg.EURLex.UserAgent,
		BreakerFailures: cfg.EURLex.BreakerFailures,
		BreakerTimeout:  cfg.EURLex.BreakerTimeout,
		Logger:          &zlog,
	})

	entries := library.DefaultCatalogue()
	if cfg.Registry.Catalogue != "" {
		entries, err = library.LoadCatalogue(cfg.Registry.Catalogue)
		if err != nil {
			return nil, err
		}
	}

	sources := []library.Source{library.FileSource{BaseDir: cfg.Registry.BaseDir}}
	if cfg.Registry.Remote {
		sources = append(sources, library.EURLexSource{Client: application.client})
	}
	application.loader = library.NewLoader(library.NewRegistry(entries...), &zlog, sources...)
	if cfg.Registry.SnapshotDir != "" {
		snapshots, err := library.OpenSnapshotStore(cfg.Registry.SnapshotDir)
		if err != nil {
			return nil, err
		}
		application.loader.WithSnapshots(snapshots)
	}

	summarizer, err := summarize.New(summarize.ProviderConfig{
		Provider:    cfg.Summarizer.Provider,
		Model:       cfg.Summarizer.Model,
		APIKey:      cfg.Summarizer.APIKey,
		Endpoint:    cfg.Summarizer.Endpoint,
		MaxTokens:   cfg.Summarizer.MaxTokens,
		Temperature: cfg.Summarizer.Temperature,
	})
	if err != nil {
		return nil, err
	}

	application.reader = reader.New(reader.Options{
		Loader:       application.loader,
		Cache:        application.store,
		CacheTTL:     cfg.Cache.TTL,
		Relevance:    cfg.Relevance.Options(),
		Summarizer:   summarizer,
		MaxSentences: cfg.Summarizer.MaxSentences,
		Metrics:      application.metrics,
		Logger:       &zlog,
	})
	return application, nil
}

// newStore builds the configured cache backend. An unreachable Redis falls back to
// the in-memory store.
func newStore(ctx context.Context, cfg *config.Config, zlog zerolog.Logger) cache.Store {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NopStore{}
	case config.CacheRedis:
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			Prefix:     cfg.Cache.Redis.Prefix,
			DefaultTTL: cfg.Cache.TTL,
		})
		if err == nil {
			return store
		}
		zlog.Warn().Err(err).Msg("redis cache unavailable, using memory cache")
	}
	return cache.NewMemoryStore(cfg.Cache.TTL)
}

func (application *app) close(flags *globalFlags) {
	if err := application.store.Close(); err != nil {
		application.logger.Warn().Err(err).Msg("failed to close cache")
	}
	if flags.showMetrics {
		if err := application.metrics.WriteText(os.Stderr); err != nil {
			application.logger.Warn().Err(err).Msg("failed to write metrics")
		}
	}
}

// resolveDocument returns the document named by the --law flag or, failing that,
// parsed from the file given as the first argument.
func (application *app) resolveDocument(cmd *cobra.Command, args []string) (*extract.Document, search.Law, error) {
	lawKey, _ := cmd.Flags().GetString("law")
	if lawKey != "" {
		law, err := application.reader.Open(cmd.Context(), lawKey)
		if err != nil {
			return nil, search.Law{}, err
		}
		return law.Document, search.Law{Key: law.Entry.Key, Label: law.Entry.Label()}, nil
	}

	if len(args) == 0 {
		return nil, search.Law{}, fmt.Errorf("a file argument or --law is required")
	}
	document, err := parseFile(args[0])
	if err != nil {
		return nil, search.Law{}, err
	}
	return document, search.Law{Key: args[0], Label: args[0]}, nil
}

func parseFile(path string) (*extract.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	document, err := extract.NewParser().Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return document, nil
}
