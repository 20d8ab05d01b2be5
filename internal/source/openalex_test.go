// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

const sampleOpenAlexAuthor = `{
  "id": "https://openalex.org/A5023888391",
  "display_name": "Ada Lovelace",
  "works_count": 3,
  "cited_by_count": 125,
  "summary_stats": {"h_index": 2},
  "last_known_institutions": [{"display_name": "Analytical Engine Society"}]
}`

const openAlexWorksPage1 = `{
  "meta": {"count": 3, "next_cursor": "page2"},
  "results": [
    {"id": "https://openalex.org/W1", "title": "Notes", "publication_year": 2018, "cited_by_count": 100},
    {"id": "https://openalex.org/W2", "title": "Sketch", "publication_year": 2020, "cited_by_count": 20}
  ]
}`

const openAlexWorksPage2 = `{
  "meta": {"count": 3, "next_cursor": null},
  "results": [
    {"id": "https://openalex.org/W3", "title": null, "publication_year": null, "cited_by_count": 5}
  ]
}`

func openAlexTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		if q.Get("mailto") != "test@example.com" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch {
		case r.URL.Path == "/authors/A5023888391":
			fmt.Fprint(w, sampleOpenAlexAuthor)
		case r.URL.Path == "/authors/A404":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/works" && q.Get("cursor") == "*":
			assert.Equal(t, "author.id:A5023888391", q.Get("filter"))
			assert.Equal(t, openAlexWorkFields, q.Get("select"))
			fmt.Fprint(w, openAlexWorksPage1)
		case r.URL.Path == "/works" && q.Get("cursor") == "page2":
			fmt.Fprint(w, openAlexWorksPage2)
		case r.URL.Path == "/authors" && q.Get("search") == "lovelace":
			fmt.Fprintf(w, `{"meta": {"count": 1}, "results": [%s]}`, sampleOpenAlexAuthor)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func newTestOpenAlex(t *testing.T, ts *httptest.Server) *OpenAlexSource {
	t.Helper()
	old := openAlexAPIBase
	openAlexAPIBase = ts.URL
	t.Cleanup(func() { openAlexAPIBase = old })

	s := NewOpenAlex(ts.Client(), types.SourceConfig{
		Email:             "test@example.com",
		RequestsPerSecond: 1000,
	})
	s.now = func() time.Time { return testNow }
	return s
}

func TestOpenAlexFetch(t *testing.T) {
	ts := openAlexTestServer(t)
	defer ts.Close()
	s := newTestOpenAlex(t, ts)

	res, err := s.Fetch(context.Background(), "https://openalex.org/A5023888391")
	require.NoError(t, err)

	assert.Equal(t, types.AuthorInfo{
		ID:          "A5023888391",
		Name:        "Ada Lovelace",
		Affiliation: "Analytical Engine Society",
		CitedBy:     125,
		WorksCount:  3,
		HIndex:      2,
		Source:      "openalex",
		UpdatedAt:   testNow,
	}, res.Author)
	assert.Equal(t, []RawWork{
		{NumCitations: 100, PubYear: 2018, Title: "Notes"},
		{NumCitations: 20, PubYear: 2020, Title: "Sketch"},
		{NumCitations: 5, PubYear: 0, Title: ""},
	}, res.Works)

	records, dropped := Validate(res.Works, testNow)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, dropped)
}

func TestOpenAlexFetch_MaxWorks(t *testing.T) {
	ts := openAlexTestServer(t)
	defer ts.Close()
	s := newTestOpenAlex(t, ts)
	s.MaxWorks = 1

	res, err := s.Fetch(context.Background(), "A5023888391")
	require.NoError(t, err)
	assert.Len(t, res.Works, 1)
}

func TestOpenAlexFetch_Errors(t *testing.T) {
	ts := openAlexTestServer(t)
	defer ts.Close()
	s := newTestOpenAlex(t, ts)
	ctx := context.Background()

	_, err := s.Fetch(ctx, "A404")
	assert.ErrorIs(t, err, ErrAuthorNotFound)

	_, err = s.Fetch(ctx, "A500")
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = s.Fetch(ctx, "  ")
	assert.ErrorIs(t, err, ErrAuthorNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Fetch(cancelled, "A123")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestOpenAlexSearchAuthors(t *testing.T) {
	ts := openAlexTestServer(t)
	defer ts.Close()
	s := newTestOpenAlex(t, ts)

	got, err := s.SearchAuthors(context.Background(), "lovelace", 5)
	require.NoError(t, err)
	assert.Equal(t, []types.AuthorCandidate{{
		ID:          "A5023888391",
		Name:        "Ada Lovelace",
		Affiliation: "Analytical Engine Society",
		CitedBy:     125,
		WorksCount:  3,
	}}, got)

	_, err = s.SearchAuthors(context.Background(), " ", 5)
	assert.Error(t, err)
}

func TestNormalizeOpenAlexID(t *testing.T) {
	assert.Equal(t, "A1", normalizeOpenAlexID("https://openalex.org/A1"))
	assert.Equal(t, "A1", normalizeOpenAlexID(" A1 "))
	assert.Equal(t, "", normalizeOpenAlexID(""))
}
