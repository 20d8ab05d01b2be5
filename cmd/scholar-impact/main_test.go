package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/pdiddy/scholar-impact/internal/analysis"
	"github.com/pdiddy/scholar-impact/internal/export"
	"github.com/pdiddy/scholar-impact/internal/secrets"
	"github.com/pdiddy/scholar-impact/pkg/types"
)

const testCitationCSV = `age,0,50,100
1,0,5,10
5,0,10,20
10,0,20,40
`

const testProductivityCSV = `years_since_first_pub,0,50,100
1,1,2,4
5,1,3,6
10,2,6,12
`

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

// writeFixtures lays out reference tables and author dumps under a temp dir
// and returns a config pointing at them. Publication years are relative to
// the current year so ages stay fixed.
func writeFixtures(t *testing.T) types.Config {
	t.Helper()
	dir := t.TempDir()
	authorsDir := filepath.Join(dir, "authors")
	require.NoError(t, os.MkdirAll(authorsDir, 0o755))

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("percentiles.csv", testCitationCSV)
	write("author_numpapers_percentiles.csv", testProductivityCSV)

	year := time.Now().Year()
	write("authors/ada.json", fmt.Sprintf(`{
		"author": {"name": "Ada Lovelace"},
		"publications": [
			{"num_citations": 10, "pub_year": %d, "title": "Notes"},
			{"num_citations": 20, "pub_year": %d, "title": "Sketch"},
			{"num_citations": 0, "pub_year": %d, "title": "Letter"}
		]
	}`, year-4, year-1, year))
	write("authors/grace.yaml", fmt.Sprintf(
		"author:\n  name: Grace Hopper\npublications:\n"+
			"  - {num_citations: 5, pub_year: %d, title: Compiler}\n"+
			"  - {num_citations: 3, pub_year: %d, title: Manual}\n", year-1, year-2))
	write("authors/empty.yaml", "author:\n  name: Nobody\npublications: []\n")
	write("authors/broken.json", "{")

	return types.Config{
		Reference: types.ReferenceConfig{
			CitationTable:     filepath.Join(dir, "percentiles.csv"),
			ProductivityTable: filepath.Join(dir, "author_numpapers_percentiles.csv"),
		},
		Source: types.SourceConfig{Backend: types.SourceFile, Dir: authorsDir},
		Cache:  types.CacheConfig{Path: filepath.Join(dir, "cache.db"), TTL: time.Hour},
	}
}

func testApp(t *testing.T) *app {
	t.Helper()
	a, err := newApp(context.Background(), writeFixtures(t))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"authors", "cache", "credentials", "export", "score", "version", "yearly"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "scholar-impact dev\n", buf.String())
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		setDefaults()
		bindFlags(rootCmd.PersistentFlags())
	})
	loadedSecrets = nil

	cfg := loadConfig()
	assert.Equal(t, defaultCitationTable, cfg.Reference.CitationTable)
	assert.Equal(t, defaultProductivityTable, cfg.Reference.ProductivityTable)
	assert.Equal(t, types.SourceFile, cfg.Source.Backend)
	assert.Equal(t, defaultTimeout, cfg.Source.Timeout)
	assert.Equal(t, defaultUserAgent, cfg.Reference.UserAgent)
	assert.Equal(t, defaultCacheTTL, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Disabled)

	t.Setenv("SCHOLAR_IMPACT_SOURCE_BACKEND", "openalex")
	t.Setenv("SCHOLAR_IMPACT_OPENALEX_EMAIL", "env@example.com")
	initConfig()
	viper.Set("cache.disabled", true)
	viper.Set("source.max_works", 50)

	cfg = loadConfig()
	assert.Equal(t, types.SourceOpenAlex, cfg.Source.Backend)
	assert.Equal(t, "env@example.com", cfg.Source.Email)
	assert.Equal(t, 50, cfg.Source.MaxWorks)
	assert.True(t, cfg.Cache.Disabled)
}

func TestNewApp_Errors(t *testing.T) {
	cfg := writeFixtures(t)

	bad := cfg
	bad.Reference.CitationTable = filepath.Join(t.TempDir(), "missing.csv")
	_, err := newApp(context.Background(), bad)
	assert.Error(t, err)

	bad = cfg
	bad.Source.Backend = "scholar"
	_, err = newApp(context.Background(), bad)
	assert.Error(t, err)

	noCache := cfg
	noCache.Cache.Disabled = true
	a, err := newApp(context.Background(), noCache)
	require.NoError(t, err)
	assert.Nil(t, a.store)
	assert.NoError(t, a.Close())
}

func TestScoreAuthors(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	err := scoreAuthors(context.Background(), &buf, a, []string{"ada", "empty", "nobody"}, scoreOptions{Top: 2})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Ada Lovelace (ada)")
	assert.Contains(t, out, "PiP-AUC:       0.2500")
	assert.Contains(t, out, "Career age:    5 years")
	assert.Contains(t, out, "Publications:  3 scored of 3")
	assert.Contains(t, out, "Sketch")
	assert.Contains(t, out, "Notes")
	assert.NotContains(t, out, "Letter", "--top 2 lists two publications")
	assert.Contains(t, out, "empty: no data")
	assert.Contains(t, out, "nobody: no data")
}

func TestScoreAuthors_JSON(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	require.NoError(t, scoreAuthors(context.Background(), &buf, a, []string{"ada", "empty"}, scoreOptions{JSON: true}))

	var bundles []types.ResultBundle
	require.NoError(t, json.Unmarshal(buf.Bytes(), &bundles))
	require.Len(t, bundles, 2)
	assert.InDelta(t, 0.25, bundles[0].PipAUC, 1e-9)
	assert.Len(t, bundles[0].Publications, 3)
	assert.True(t, bundles[1].Empty())
}

func TestScoreAuthors_Failure(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	err := scoreAuthors(context.Background(), &buf, a, []string{"broken", "ada"}, scoreOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 author(s) failed")
	assert.Contains(t, buf.String(), "failed  broken")
	assert.Contains(t, buf.String(), "Ada Lovelace")
}

func TestExportAuthor(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, exportAuthor(ctx, &buf, a, "ada", "", export.FormatCSV, false))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Columns, rows[0])
	assert.Equal(t, "Sketch", rows[1][2])
	assert.Equal(t, "1", rows[1][5])

	path := filepath.Join(t.TempDir(), "ada.yaml")
	buf.Reset()
	require.NoError(t, exportAuthor(ctx, &buf, a, "ada", path, "", true))
	assert.Contains(t, buf.String(), "Exported 3 publications")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pip_auc: 0.25")

	buf.Reset()
	require.NoError(t, exportAuthor(ctx, &buf, a, "empty", "", export.FormatCSV, false))
	assert.Equal(t, "empty: no data\n", buf.String())
}

func TestWriteYearly(t *testing.T) {
	a := testApp(t)
	year := time.Now().Year()

	var buf bytes.Buffer
	require.NoError(t, writeYearly(context.Background(), &buf, a, "ada", 0, 0, true))

	var out yearlyOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Years, 3)
	assert.Equal(t, year-4, out.Years[0].Year)
	assert.Equal(t, year, out.Years[2].Year)
	assert.Equal(t, year-1, out.BestYear)

	buf.Reset()
	require.NoError(t, writeYearly(context.Background(), &buf, a, "ada", year-1, 0, false))
	assert.Contains(t, buf.String(), "Best year: "+fmt.Sprint(year-1))
	assert.NotContains(t, buf.String(), fmt.Sprint(year-4))
}

func TestWriteYearlyComparison(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	year := time.Now().Year()

	var buf bytes.Buffer
	require.NoError(t, writeYearlyComparison(ctx, &buf, a, "ada", "grace", 0, 0, true))

	var out comparisonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Years, 4)
	assert.Equal(t, year-2, out.Years[1].Year)
	assert.Zero(t, out.Years[1].First.Publications)
	assert.Equal(t, 3, out.Years[1].Second.Citations)
	assert.Equal(t, 20, out.Years[2].First.Citations)
	assert.Equal(t, 5, out.Years[2].Second.Citations)
	assert.Equal(t, year-1, out.FirstBestYear)
	assert.NotZero(t, out.SecondBestYear)

	buf.Reset()
	require.NoError(t, writeYearlyComparison(ctx, &buf, a, "ada", "empty", 0, 0, false))
	assert.Contains(t, buf.String(), "Best year (ada): "+fmt.Sprint(year-1))
	assert.NotContains(t, buf.String(), "Best year (empty)")

	err := writeYearlyComparison(ctx, &bytes.Buffer{}, a, "ada", "broken", 0, 0, false)
	assert.ErrorContains(t, err, "broken")
}

func TestSearchAuthors_FileSource(t *testing.T) {
	a := testApp(t)
	err := searchAuthors(context.Background(), &bytes.Buffer{}, a, "Lovelace", 5, false)
	assert.ErrorIs(t, err, analysis.ErrSearchUnsupported)
}

func TestCacheListAndClear(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, listCache(ctx, &buf, a.store, "", false))
	assert.Equal(t, "Cache is empty.\n", buf.String())

	_, err := a.service.Analyze(ctx, "ada")
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, listCache(ctx, &buf, a.store, "author_stats", false))
	assert.Contains(t, buf.String(), "file:ada")
	assert.Contains(t, buf.String(), "fresh")
	assert.Contains(t, buf.String(), "1 entries")

	buf.Reset()
	assert.Error(t, clearCache(ctx, &buf, a.store, "", []string{"file:ada"}, false))

	require.NoError(t, clearCache(ctx, &buf, a.store, "author_stats", []string{"file:ada"}, false))
	entries, err := a.store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = a.service.Analyze(ctx, "ada")
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, clearCache(ctx, &buf, a.store, "", nil, false))
	assert.Equal(t, "Removed 1 entries\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate(strings.Repeat("é", 8), 6))
}

func TestCredentials(t *testing.T) {
	var out bytes.Buffer
	credentialsSetCmd.SetIn(strings.NewReader("sk_0123456789\n"))
	credentialsSetCmd.SetOut(&out)
	credentialsSetCmd.SetErr(&bytes.Buffer{})
	require.NoError(t, credentialsSetCmd.RunE(credentialsSetCmd, []string{secrets.KeySemanticScholarAPIKey}))
	t.Cleanup(func() { secrets.Remove(secrets.KeySemanticScholarAPIKey) })
	assert.Contains(t, out.String(), "Saved semantic-scholar-api-key")

	out.Reset()
	listCredentials(&out, secrets.Secrets{secrets.KeyOpenAlexEmail: "ada@example.com"})
	assert.Contains(t, out.String(), "***********.com")
	assert.Contains(t, out.String(), "*********6789")

	assert.Error(t, credentialsSetCmd.RunE(credentialsSetCmd, []string{"github-token"}))

	out.Reset()
	credentialsRemoveCmd.SetOut(&out)
	require.NoError(t, credentialsRemoveCmd.RunE(credentialsRemoveCmd, []string{secrets.KeySemanticScholarAPIKey}))
	assert.Equal(t, "", secrets.Secrets{}.Get(secrets.KeySemanticScholarAPIKey))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(not set)", mask(""))
	assert.Equal(t, "***", mask("abc"))
	assert.Equal(t, "**cdef", mask("abcdef"))
}
