// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes result bundles as CSV, JSON or YAML.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Columns is the CSV header, one column per ScoredPublication field.
var Columns = []string{
	"citations", "age", "title", "year",
	"percentile_score", "rank", "productivity_percentile",
}

// ParseFormat accepts csv, json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
	}
}

// FormatFromPath infers the format from path's extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format from %q", path)
	}
	return ParseFormat(ext)
}

// Write encodes bundle to w in format. CSV carries only the publication
// rows; JSON and YAML carry the whole bundle.
func Write(w io.Writer, format Format, bundle *types.ResultBundle) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, bundle.Publications)
	case FormatJSON:
		return WriteJSON(w, bundle)
	case FormatYAML:
		return WriteYAML(w, bundle)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile writes bundle to path, choosing the format from the extension.
func WriteFile(path string, bundle *types.ResultBundle) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, format, bundle); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes pubs as CSV rows in rank order with a Columns header.
func WriteCSV(w io.Writer, pubs []types.ScoredPublication) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range pubs {
		row := []string{
			strconv.Itoa(p.Citations),
			strconv.Itoa(p.Age),
			p.Title,
			strconv.Itoa(p.Year),
			formatFloat(p.PercentileScore),
			strconv.Itoa(p.Rank),
			formatFloat(p.ProductivityPercentile),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
