// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-impact/internal/analysis"
	"github.com/pdiddy/scholar-impact/internal/cache"
	"github.com/pdiddy/scholar-impact/internal/impact"
	"github.com/pdiddy/scholar-impact/internal/reference"
	"github.com/pdiddy/scholar-impact/internal/source"
	"github.com/pdiddy/scholar-impact/pkg/types"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultUserAgent         = "scholar-impact/0.1"
	defaultCitationTable     = "data/percentiles.csv"
	defaultProductivityTable = "data/author_numpapers_percentiles.csv"
	defaultSourceDir         = "authors"
	defaultCacheTTL          = 7 * 24 * time.Hour
)

// flagKeys maps persistent flags to their config keys.
var flagKeys = map[string]string{
	"log-level":          "log.level",
	"log-format":         "log.format",
	"citation-table":     "reference.citation_table",
	"productivity-table": "reference.productivity_table",
	"source":             "source.backend",
	"source-dir":         "source.dir",
	"cache-path":         "cache.path",
	"no-cache":           "cache.disabled",
}

func bindFlags(fs *pflag.FlagSet) {
	for flag, key := range flagKeys {
		if f := fs.Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("reference.citation_table", defaultCitationTable)
	viper.SetDefault("reference.productivity_table", defaultProductivityTable)
	viper.SetDefault("source.backend", string(types.SourceFile))
	viper.SetDefault("source.dir", defaultSourceDir)
	viper.SetDefault("cache.path", defaultCachePath())
	viper.SetDefault("cache.ttl", defaultCacheTTL)
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", "scholar-impact.db")
	}
	return filepath.Join(dir, "scholar-impact", "cache.db")
}

// loadConfig assembles the typed configuration from flags, environment,
// config file and defaults, in viper's precedence order. Credentials not
// set in config are filled from .secrets/ or the environment.
func loadConfig() types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	cfg := types.Config{
		Reference: types.ReferenceConfig{
			HTTPConfig:        httpCfg,
			CitationTable:     viper.GetString("reference.citation_table"),
			ProductivityTable: viper.GetString("reference.productivity_table"),
		},
		Source: types.SourceConfig{
			HTTPConfig:            httpCfg,
			Backend:               types.SourceBackend(viper.GetString("source.backend")),
			Dir:                   viper.GetString("source.dir"),
			Email:                 viper.GetString("source.email"),
			SemanticScholarAPIKey: viper.GetString("source.semantic_scholar_api_key"),
			RequestsPerSecond:     viper.GetFloat64("source.requests_per_second"),
			MaxWorks:              viper.GetInt("source.max_works"),
		},
		Cache: types.CacheConfig{
			Path:     viper.GetString("cache.path"),
			TTL:      viper.GetDuration("cache.ttl"),
			Disabled: viper.GetBool("cache.disabled"),
		},
	}
	loadedSecrets.ApplyTo(&cfg.Source)
	return cfg
}

// app holds the components one command invocation works with.
type app struct {
	service *analysis.Service
	source  source.Source
	store   *cache.Store
}

// newApp loads the reference tables and wires source, cache and engine.
func newApp(ctx context.Context, cfg types.Config) (*app, error) {
	refClient := &http.Client{Timeout: cfg.Reference.Timeout}
	ref, err := reference.Load(ctx, refClient, cfg.Reference)
	if err != nil {
		return nil, err
	}
	engine, err := impact.NewEngine(ref)
	if err != nil {
		return nil, err
	}

	src, err := source.New(cfg.Source, &http.Client{Timeout: cfg.Source.Timeout})
	if err != nil {
		return nil, err
	}

	a := &app{source: src}
	var opts []analysis.Option
	if !cfg.Cache.Disabled {
		store, err := cache.NewStore(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		a.store = store
		opts = append(opts, analysis.WithCache(store))
	}
	a.service = analysis.New(engine, src, opts...)
	return a, nil
}

// Close releases the cache database.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
