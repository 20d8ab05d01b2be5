// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source adapts external bibliometric sources to the engine. Every
// backend returns raw works; Validate turns them into PublicationRecords at
// this boundary so nothing downstream checks field presence.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

var (
	// ErrSourceUnavailable indicates a transient failure talking to the
	// source. Callers may retry.
	ErrSourceUnavailable = errors.New("publication source unavailable")

	// ErrAuthorNotFound indicates that the source does not know the author.
	ErrAuthorNotFound = errors.New("author not found")
)

const (
	defaultRequestsPerSecond = 5.0
	defaultMaxWorks          = 2000
)

// RawWork is one publication as reported by a source, before validation.
// Zero PubYear means the source did not report a year.
type RawWork struct {
	NumCitations int    `json:"num_citations" yaml:"num_citations"`
	PubYear      int    `json:"pub_year" yaml:"pub_year"`
	Title        string `json:"title" yaml:"title"`
}

// Result is an author's descriptive info and raw publication list.
type Result struct {
	Author types.AuthorInfo `json:"author" yaml:"author"`
	Works  []RawWork        `json:"publications" yaml:"publications"`
}

// Source fetches an author's publication list.
type Source interface {
	// Name returns the backend identifier.
	Name() string

	// Fetch returns the author's works. Errors wrap ErrSourceUnavailable or
	// ErrAuthorNotFound. An empty Works slice means the author has no data.
	Fetch(ctx context.Context, authorID string) (*Result, error)
}

// Searcher looks authors up by name.
type Searcher interface {
	SearchAuthors(ctx context.Context, name string, limit int) ([]types.AuthorCandidate, error)
}

// New returns the backend selected by cfg.
func New(cfg types.SourceConfig, client *http.Client) (Source, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Backend {
	case types.SourceFile, "":
		if cfg.Dir == "" {
			return nil, errors.New("file source requires source.dir")
		}
		return &FileSource{Dir: cfg.Dir}, nil
	case types.SourceOpenAlex:
		return NewOpenAlex(client, cfg), nil
	case types.SourceSemanticScholar:
		return NewSemanticScholar(client, cfg), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Backend)
	}
}

// Validate converts raw works into records relative to now. A work is
// dropped when it has no publication year, a year after now, negative
// citations, or an empty title. The second return value counts drops.
func Validate(works []RawWork, now time.Time) ([]types.PublicationRecord, int) {
	currentYear := now.Year()
	records := make([]types.PublicationRecord, 0, len(works))
	for _, w := range works {
		title := strings.TrimSpace(w.Title)
		if w.PubYear <= 0 || w.PubYear > currentYear || w.NumCitations < 0 || title == "" {
			continue
		}
		records = append(records, types.PublicationRecord{
			Citations: w.NumCitations,
			Age:       currentYear - w.PubYear + 1,
			Title:     title,
			Year:      w.PubYear,
		})
	}
	return records, len(works) - len(records)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func maxWorks(n int) int {
	if n <= 0 {
		return defaultMaxWorks
	}
	return n
}
