// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

// openAlexAPIBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org"

const (
	openAlexPageSize   = 200
	openAlexWorkFields = "id,title,publication_year,cited_by_count"
)

// OpenAlexSource reads author profiles and works from the OpenAlex API.
type OpenAlexSource struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string
	MaxWorks  int

	limiter *rate.Limiter
	now     func() time.Time
}

// NewOpenAlex returns an OpenAlex backend configured from cfg.
func NewOpenAlex(client *http.Client, cfg types.SourceConfig) *OpenAlexSource {
	return &OpenAlexSource{
		Client:    client,
		Email:     cfg.Email,
		UserAgent: cfg.UserAgent,
		MaxWorks:  maxWorks(cfg.MaxWorks),
		limiter:   newLimiter(cfg.RequestsPerSecond),
		now:       time.Now,
	}
}

// Name returns the backend identifier.
func (s *OpenAlexSource) Name() string { return "openalex" }

// Fetch returns the author's profile and works. authorID may be the bare
// OpenAlex ID (A5023888391) or the full https://openalex.org/ URL.
func (s *OpenAlexSource) Fetch(ctx context.Context, authorID string) (*Result, error) {
	id := normalizeOpenAlexID(authorID)
	if id == "" {
		return nil, fmt.Errorf("%w: invalid OpenAlex author id %q", ErrAuthorNotFound, authorID)
	}

	var author openAlexAuthor
	if err := s.get(ctx, "/authors/"+url.PathEscape(id), nil, &author); err != nil {
		return nil, fmt.Errorf("OpenAlex author %s: %w", id, err)
	}

	res := &Result{Author: author.info(s.now())}

	cursor := "*"
	for cursor != "" && len(res.Works) < s.MaxWorks {
		params := url.Values{
			"filter":   {"author.id:" + id},
			"per_page": {strconv.Itoa(openAlexPageSize)},
			"cursor":   {cursor},
			"select":   {openAlexWorkFields},
		}
		var page openAlexWorksPage
		if err := s.get(ctx, "/works", params, &page); err != nil {
			return nil, fmt.Errorf("OpenAlex works for %s: %w", id, err)
		}
		for _, w := range page.Results {
			res.Works = append(res.Works, RawWork{
				NumCitations: w.CitedByCount,
				PubYear:      w.PublicationYear,
				Title:        w.Title,
			})
		}
		if len(page.Results) == 0 {
			break
		}
		cursor = page.Meta.NextCursor
	}
	if len(res.Works) > s.MaxWorks {
		res.Works = res.Works[:s.MaxWorks]
	}
	return res, nil
}

// SearchAuthors returns authors whose names match name, most relevant first.
func (s *OpenAlexSource) SearchAuthors(ctx context.Context, name string, limit int) ([]types.AuthorCandidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty author name")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"search":   {name},
		"per_page": {strconv.Itoa(min(limit, openAlexPageSize))},
	}
	var page openAlexAuthorsPage
	if err := s.get(ctx, "/authors", params, &page); err != nil {
		return nil, fmt.Errorf("OpenAlex author search: %w", err)
	}

	out := make([]types.AuthorCandidate, 0, len(page.Results))
	for _, a := range page.Results {
		out = append(out, types.AuthorCandidate{
			ID:          normalizeOpenAlexID(a.ID),
			Name:        a.DisplayName,
			Affiliation: a.affiliation(),
			CitedBy:     a.CitedByCount,
			WorksCount:  a.WorksCount,
		})
	}
	return out, nil
}

func (s *OpenAlexSource) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if s.Email != "" {
		params.Set("mailto", s.Email)
	}
	reqURL := openAlexAPIBase + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	header := http.Header{}
	if s.UserAgent != "" {
		header.Set("User-Agent", s.UserAgent)
	}
	if s.limiter == nil {
		s.limiter = newLimiter(0)
	}
	return getJSON(ctx, s.Client, s.limiter, reqURL, header, out)
}

// normalizeOpenAlexID strips the https://openalex.org/ prefix.
func normalizeOpenAlexID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "https://openalex.org/")
	id = strings.TrimPrefix(id, "http://openalex.org/")
	return id
}

// OpenAlex API JSON structures.
type openAlexAuthor struct {
	ID                    string                `json:"id"`
	DisplayName           string                `json:"display_name"`
	WorksCount            int                   `json:"works_count"`
	CitedByCount          int                   `json:"cited_by_count"`
	SummaryStats          openAlexSummaryStats  `json:"summary_stats"`
	LastKnownInstitutions []openAlexInstitution `json:"last_known_institutions"`
}

type openAlexSummaryStats struct {
	HIndex int `json:"h_index"`
}

type openAlexInstitution struct {
	DisplayName string `json:"display_name"`
}

func (a openAlexAuthor) affiliation() string {
	if len(a.LastKnownInstitutions) == 0 {
		return ""
	}
	return a.LastKnownInstitutions[0].DisplayName
}

func (a openAlexAuthor) info(now time.Time) types.AuthorInfo {
	return types.AuthorInfo{
		ID:          normalizeOpenAlexID(a.ID),
		Name:        a.DisplayName,
		Affiliation: a.affiliation(),
		CitedBy:     a.CitedByCount,
		WorksCount:  a.WorksCount,
		HIndex:      a.SummaryStats.HIndex,
		Source:      "openalex",
		UpdatedAt:   now.UTC(),
	}
}

type openAlexWorksPage struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexAuthorsPage struct {
	Meta    openAlexMeta     `json:"meta"`
	Results []openAlexAuthor `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type openAlexWork struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	CitedByCount    int    `json:"cited_by_count"`
}
