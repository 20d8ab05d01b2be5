// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-impact/internal/httputil"
	"github.com/pdiddy/scholar-impact/pkg/types"
)

const (
	// CitationKeyColumn is the header of the key column in the citation table.
	CitationKeyColumn = "age"

	// ProductivityKeyColumn is the header of the key column in the
	// productivity table.
	ProductivityKeyColumn = "years_since_first_pub"
)

// Data bundles the two reference tables. It is built once at startup and
// passed to the engine; nothing mutates it afterwards.
type Data struct {
	// Citations maps paper age to citation counts per percentile level.
	Citations *Curve

	// Productivity maps career age to paper counts per percentile level.
	Productivity *Curve
}

// New validates both curves and returns the bundle. Citation rows must be
// monotonic; productivity rows are repaired at lookup time instead.
func New(citations, productivity *Curve) (*Data, error) {
	if citations.Len() == 0 {
		return nil, fmt.Errorf("citation table: %w", ErrEmptyCurve)
	}
	if productivity.Len() == 0 {
		return nil, fmt.Errorf("productivity table: %w", ErrEmptyCurve)
	}
	if err := citations.CheckMonotonic(); err != nil {
		return nil, fmt.Errorf("citation table: %w", err)
	}
	return &Data{Citations: citations, Productivity: productivity}, nil
}

// Load reads both tables named in cfg. Locations may be local paths or
// http(s) URLs; client is used for the latter.
func Load(ctx context.Context, client *http.Client, cfg types.ReferenceConfig) (*Data, error) {
	if cfg.CitationTable == "" || cfg.ProductivityTable == "" {
		return nil, errors.New("both citation_table and productivity_table must be configured")
	}

	citations, err := loadFrom(ctx, client, cfg.UserAgent, cfg.CitationTable, CitationKeyColumn)
	if err != nil {
		return nil, fmt.Errorf("loading citation table: %w", err)
	}
	productivity, err := loadFrom(ctx, client, cfg.UserAgent, cfg.ProductivityTable, ProductivityKeyColumn)
	if err != nil {
		return nil, fmt.Errorf("loading productivity table: %w", err)
	}
	return New(citations, productivity)
}

func loadFrom(ctx context.Context, client *http.Client, userAgent, location, keyColumn string) (*Curve, error) {
	rc, err := Open(ctx, client, userAgent, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return LoadCurve(rc, keyColumn)
}

// Open returns a reader for a table location: an http(s) URL is fetched
// with client, anything else is opened as a local file.
func Open(ctx context.Context, client *http.Client, userAgent, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", location, err)
		}
		return f, nil
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: HTTP %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}

// LoadCurve parses a CSV table whose first column holds integer keys and
// whose remaining header cells are percentile levels. When keyColumn is not
// empty the first header cell must match it. Empty cells load as NaN.
func LoadCurve(r io.Reader, keyColumn string) (*Curve, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCurve
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header has %d columns, want a key column and at least one level", len(header))
	}
	if keyColumn != "" && strings.TrimSpace(header[0]) != keyColumn {
		return nil, fmt.Errorf("key column is %q, want %q", header[0], keyColumn)
	}

	levels := make([]float64, len(header)-1)
	for i, cell := range header[1:] {
		l, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("percentile level %q: %w", cell, err)
		}
		levels[i] = l
	}

	rows := make(map[int][]float64)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		key, err := parseKey(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, dup := rows[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate key %d", line, key)
		}

		row := make([]float64, len(levels))
		for i, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, level %v: %w", line, levels[i], err)
			}
			row[i] = v
		}
		rows[key] = row
	}

	return NewCurve(levels, rows)
}

// parseKey accepts "7" and the "7.0" spelling some exporters write.
func parseKey(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if k, err := strconv.Atoi(cell); err == nil {
		return k, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("key %q is not an integer", cell)
	}
	return int(f), nil
}
