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

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticPageSize     = 1000
	semanticAuthorFields = "name,affiliations,citationCount,paperCount,hIndex"
	semanticPaperFields  = "title,year,citationCount"
)

// SemanticScholarSource reads author profiles and papers from the Semantic
// Scholar Graph API.
type SemanticScholarSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	MaxWorks  int

	limiter *rate.Limiter
	now     func() time.Time
}

// NewSemanticScholar returns a Semantic Scholar backend configured from cfg.
func NewSemanticScholar(client *http.Client, cfg types.SourceConfig) *SemanticScholarSource {
	rps := cfg.RequestsPerSecond
	if rps <= 0 && cfg.SemanticScholarAPIKey == "" {
		// The shared unauthenticated pool is far stricter.
		rps = 1
	}
	return &SemanticScholarSource{
		Client:    client,
		APIKey:    cfg.SemanticScholarAPIKey,
		UserAgent: cfg.UserAgent,
		MaxWorks:  maxWorks(cfg.MaxWorks),
		limiter:   newLimiter(rps),
		now:       time.Now,
	}
}

// Name returns the backend identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Fetch returns the author's profile and papers.
func (s *SemanticScholarSource) Fetch(ctx context.Context, authorID string) (*Result, error) {
	id := strings.TrimSpace(authorID)
	if id == "" {
		return nil, fmt.Errorf("%w: invalid Semantic Scholar author id %q", ErrAuthorNotFound, authorID)
	}

	var author semanticAuthor
	params := url.Values{"fields": {semanticAuthorFields}}
	if err := s.get(ctx, "/author/"+url.PathEscape(id), params, &author); err != nil {
		return nil, fmt.Errorf("Semantic Scholar author %s: %w", id, err)
	}

	res := &Result{Author: author.info(s.now())}

	for offset := 0; offset >= 0 && len(res.Works) < s.MaxWorks; {
		params := url.Values{
			"fields": {semanticPaperFields},
			"limit":  {strconv.Itoa(min(semanticPageSize, s.MaxWorks-len(res.Works)))},
			"offset": {strconv.Itoa(offset)},
		}
		var page semanticPapersPage
		if err := s.get(ctx, "/author/"+url.PathEscape(id)+"/papers", params, &page); err != nil {
			return nil, fmt.Errorf("Semantic Scholar papers for %s: %w", id, err)
		}
		for _, p := range page.Data {
			res.Works = append(res.Works, RawWork{
				NumCitations: p.CitationCount,
				PubYear:      p.Year,
				Title:        p.Title,
			})
		}
		if page.Next == nil || len(page.Data) == 0 {
			break
		}
		offset = *page.Next
	}
	return res, nil
}

// SearchAuthors returns authors whose names match name.
func (s *SemanticScholarSource) SearchAuthors(ctx context.Context, name string, limit int) ([]types.AuthorCandidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty author name")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"query":  {name},
		"fields": {semanticAuthorFields},
		"limit":  {strconv.Itoa(limit)},
	}
	var page semanticAuthorsPage
	if err := s.get(ctx, "/author/search", params, &page); err != nil {
		return nil, fmt.Errorf("Semantic Scholar author search: %w", err)
	}

	out := make([]types.AuthorCandidate, 0, len(page.Data))
	for _, a := range page.Data {
		out = append(out, types.AuthorCandidate{
			ID:          a.AuthorID,
			Name:        a.Name,
			Affiliation: a.affiliation(),
			CitedBy:     a.CitationCount,
			WorksCount:  a.PaperCount,
		})
	}
	return out, nil
}

func (s *SemanticScholarSource) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := semanticAPIBase + path + "?" + params.Encode()

	header := http.Header{}
	if s.UserAgent != "" {
		header.Set("User-Agent", s.UserAgent)
	}
	if s.APIKey != "" {
		header.Set("x-api-key", s.APIKey)
	}
	if s.limiter == nil {
		s.limiter = newLimiter(0)
	}
	return getJSON(ctx, s.Client, s.limiter, reqURL, header, out)
}

// Semantic Scholar API JSON structures.
type semanticAuthor struct {
	AuthorID      string   `json:"authorId"`
	Name          string   `json:"name"`
	Affiliations  []string `json:"affiliations"`
	CitationCount int      `json:"citationCount"`
	PaperCount    int      `json:"paperCount"`
	HIndex        int      `json:"hIndex"`
}

func (a semanticAuthor) affiliation() string {
	if len(a.Affiliations) == 0 {
		return ""
	}
	return a.Affiliations[0]
}

func (a semanticAuthor) info(now time.Time) types.AuthorInfo {
	return types.AuthorInfo{
		ID:          a.AuthorID,
		Name:        a.Name,
		Affiliation: a.affiliation(),
		CitedBy:     a.CitationCount,
		WorksCount:  a.PaperCount,
		HIndex:      a.HIndex,
		Source:      "semantic_scholar",
		UpdatedAt:   now.UTC(),
	}
}

type semanticPapersPage struct {
	Offset int             `json:"offset"`
	Next   *int            `json:"next"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Year          int    `json:"year"`
	CitationCount int    `json:"citationCount"`
}

type semanticAuthorsPage struct {
	Total int              `json:"total"`
	Data  []semanticAuthor `json:"data"`
}
