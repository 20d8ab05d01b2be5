// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis ties a publication source, the impact engine and the
// result cache together: cache lookup, fetch, validate, compute, store.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/scholar-impact/internal/cache"
	"github.com/pdiddy/scholar-impact/internal/impact"
	"github.com/pdiddy/scholar-impact/internal/source"
	"github.com/pdiddy/scholar-impact/pkg/types"
)

// ErrSearchUnsupported indicates that the configured source cannot search
// authors by name.
var ErrSearchUnsupported = errors.New("source does not support author search")

// Cache is the subset of cache.Store the service needs.
type Cache interface {
	Get(ctx context.Context, namespace, key string, out any) (bool, error)
	Set(ctx context.Context, namespace, key string, v any) error
}

// Service computes result bundles for authors. It is safe for concurrent
// use; concurrent requests for the same author share one computation.
type Service struct {
	engine *impact.Engine
	source source.Source
	cache  Cache
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching. A nil cache disables it.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger used for non-fatal cache problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the clock used for publication ages and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service that scores authors from src with engine.
func New(engine *impact.Engine, src source.Source, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		source: src,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze returns the author's bundle, from the cache when a fresh entry
// exists.
//
// When the source has no usable publications for the author the returned
// bundle is empty (it may still carry author info) and the error wraps
// impact.ErrNoPublicationData. Source failures wrap
// source.ErrSourceUnavailable and return no bundle. Cache problems are
// logged and never fail the call.
func (s *Service) Analyze(ctx context.Context, authorID string) (*types.ResultBundle, error) {
	return s.analyze(ctx, authorID, true)
}

// Refresh recomputes the author's bundle, ignoring any cached entry, and
// stores the result.
func (s *Service) Refresh(ctx context.Context, authorID string) (*types.ResultBundle, error) {
	return s.analyze(ctx, authorID, false)
}

func (s *Service) analyze(ctx context.Context, authorID string, useCache bool) (*types.ResultBundle, error) {
	id := strings.TrimSpace(authorID)
	if id == "" {
		return nil, errors.New("author id is empty")
	}
	key := s.cacheKey(id)

	if useCache && s.cache != nil {
		var cached types.ResultBundle
		ok, err := s.cache.Get(ctx, cache.NamespaceAuthorStats, key, &cached)
		switch {
		case err != nil:
			s.logger.Warn("cache read failed", "author", id, "error", err)
		case ok && !cached.Empty():
			s.logger.Debug("cache hit", "author", id)
			return &cached, nil
		}
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context is done.
	ch := s.group.DoChan(key, func() (any, error) {
		return s.compute(context.WithoutCancel(ctx), id, key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.logger.Debug("shared in-flight computation", "author", id)
		}
		bundle, _ := r.Val.(*types.ResultBundle)
		return bundle, r.Err
	}
}

func (s *Service) compute(ctx context.Context, id, key string) (*types.ResultBundle, error) {
	now := s.now()

	res, err := s.source.Fetch(ctx, id)
	if errors.Is(err, source.ErrAuthorNotFound) {
		return &types.ResultBundle{ComputedAt: now.UTC()},
			fmt.Errorf("author %s: %w", id, impact.ErrNoPublicationData)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s from %s: %w", id, s.source.Name(), err)
	}

	records, dropped := source.Validate(res.Works, now)
	if dropped > 0 {
		s.logger.Debug("dropped invalid works", "author", id, "dropped", dropped, "kept", len(records))
	}

	author := res.Author
	bundle := &types.ResultBundle{
		Author:            &author,
		TotalPublications: len(res.Works),
		ComputedAt:        now.UTC(),
	}
	if len(records) == 0 {
		return bundle, fmt.Errorf("author %s: %w", id, impact.ErrNoPublicationData)
	}

	summary, err := s.engine.Compute(records)
	if err != nil {
		return nil, fmt.Errorf("computing impact for %s: %w", id, err)
	}
	bundle.Publications = summary.Publications
	bundle.PipAUC = summary.PipAUC
	bundle.CareerAgeYears = summary.CareerAgeYears

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.NamespaceAuthorStats, key, bundle); err != nil {
			s.logger.Warn("cache write failed", "author", id, "error", err)
		}
	}
	return bundle, nil
}

// SearchAuthors looks authors up by name through the source, caching the
// candidate list.
func (s *Service) SearchAuthors(ctx context.Context, name string, limit int) ([]types.AuthorCandidate, error) {
	searcher, ok := s.source.(source.Searcher)
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.source.Name(), ErrSearchUnsupported)
	}

	key := s.cacheKey(strings.ToLower(strings.TrimSpace(name)) + "#" + strconv.Itoa(limit))
	if s.cache != nil {
		var cached []types.AuthorCandidate
		found, err := s.cache.Get(ctx, cache.NamespaceQueries, key, &cached)
		if err != nil {
			s.logger.Warn("cache read failed", "query", name, "error", err)
		} else if found {
			return cached, nil
		}
	}

	candidates, err := searcher.SearchAuthors(ctx, name, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.NamespaceQueries, key, candidates); err != nil {
			s.logger.Warn("cache write failed", "query", name, "error", err)
		}
	}
	return candidates, nil
}

// cacheKey qualifies id with the source name; author ids are only unique
// within one backend.
func (s *Service) cacheKey(id string) string {
	return s.source.Name() + ":" + id
}
