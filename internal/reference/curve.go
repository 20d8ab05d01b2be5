// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reference holds the empirical percentile tables used as the
// scoring ruler: citation counts by paper age, and paper counts by author
// career age. Tables are loaded once and are read-only afterwards, so a
// *Curve may be shared by any number of goroutines.
package reference

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyCurve is returned when a table has no rows or no percentile columns.
var ErrEmptyCurve = errors.New("percentile curve has no data")

// Curve maps an integer key (paper age or career age) to a row of values,
// one per percentile level. All rows share the same ascending levels.
type Curve struct {
	keys   []int
	levels []float64
	rows   map[int][]float64
}

// NewCurve builds a Curve from ascending percentile levels and rows keyed by
// integer. Every row must have one value per level. The inputs are copied.
func NewCurve(levels []float64, rows map[int][]float64) (*Curve, error) {
	if len(levels) == 0 || len(rows) == 0 {
		return nil, ErrEmptyCurve
	}
	for i, l := range levels {
		if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 || l > 100 {
			return nil, fmt.Errorf("percentile level %v out of range [0,100]", l)
		}
		if i > 0 && l <= levels[i-1] {
			return nil, fmt.Errorf("percentile levels not strictly ascending at %v", l)
		}
	}

	c := &Curve{
		levels: append([]float64(nil), levels...),
		rows:   make(map[int][]float64, len(rows)),
	}
	for key, row := range rows {
		if len(row) != len(levels) {
			return nil, fmt.Errorf("row %d has %d values, want %d", key, len(row), len(levels))
		}
		c.rows[key] = append([]float64(nil), row...)
		c.keys = append(c.keys, key)
	}
	sort.Ints(c.keys)
	return c, nil
}

// Len returns the number of rows.
func (c *Curve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the row keys in ascending order.
func (c *Curve) Keys() []int {
	return append([]int(nil), c.keys...)
}

// Levels returns the percentile levels in ascending order.
func (c *Curve) Levels() []float64 {
	return append([]float64(nil), c.levels...)
}

// Row returns a copy of the row stored under key.
func (c *Curve) Row(key int) ([]float64, bool) {
	row, ok := c.rows[key]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), row...), true
}

// Nearest returns the key closest to k by absolute distance. When two keys
// are equally close the smaller one wins. ok is false for an empty curve.
func (c *Curve) Nearest(k int) (key int, ok bool) {
	if c.Len() == 0 {
		return 0, false
	}
	if _, exact := c.rows[k]; exact {
		return k, true
	}
	// keys are ascending: the first key >= k and its predecessor bracket k.
	i := sort.SearchInts(c.keys, k)
	switch {
	case i == 0:
		return c.keys[0], true
	case i == len(c.keys):
		return c.keys[len(c.keys)-1], true
	}
	lo, hi := c.keys[i-1], c.keys[i]
	if k-lo <= hi-k {
		return lo, true
	}
	return hi, true
}

// Neighbors returns the keys immediately before and after key in ascending
// order, clamped at the ends of the table.
func (c *Curve) Neighbors(key int) (prev, next int, ok bool) {
	i := sort.SearchInts(c.keys, key)
	if i == len(c.keys) || c.keys[i] != key {
		return 0, 0, false
	}
	prev, next = c.keys[max(0, i-1)], c.keys[min(len(c.keys)-1, i+1)]
	return prev, next, true
}

// CheckMonotonic verifies that every row is non-decreasing across the
// percentile levels and holds only finite values.
func (c *Curve) CheckMonotonic() error {
	for _, key := range c.keys {
		row := c.rows[key]
		for i, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d: non-finite value at level %v", key, c.levels[i])
			}
			if i > 0 && v < row[i-1] {
				return fmt.Errorf("row %d: value decreases at level %v", key, c.levels[i])
			}
		}
	}
	return nil
}
