// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package impact is the scoring engine: it places each publication within
// the citation distribution of papers of the same age, ranks the author's
// publications, maps ranks to productivity percentiles and integrates the
// resulting curve into the PiP-AUC index. Everything here is a pure function
// of its inputs and the read-only reference tables.
package impact

import (
	"fmt"
	"math"

	"github.com/pdiddy/scholar-impact/internal/reference"
)

// Scorer converts (citations, age) pairs into percentile scores against the
// citation-by-age reference curve.
type Scorer struct {
	curve  *reference.Curve
	levels []float64
}

// NewScorer returns a Scorer over curve.
func NewScorer(curve *reference.Curve) *Scorer {
	s := &Scorer{curve: curve}
	if curve.Len() > 0 {
		s.levels = curve.Levels()
	}
	return s
}

// Score returns the percentile (0-100) of citations among papers of the
// given age.
//
// The row for age is used when present, otherwise the row of the nearest
// age (the smaller age on a tie). Counts at or below the row minimum score 0,
// counts at or above the row maximum score 100. Anything in between is
// linearly interpolated between the largest level whose value does not
// exceed citations and the smallest level whose value is not below it.
//
// When citations sits exactly on a plateau (several levels share the value)
// the score is the lowest level of the plateau; no division takes place. A
// row holding NaN or infinite values yields ErrDegenerateBracket.
func (s *Scorer) Score(citations, age int) (float64, error) {
	key, ok := s.curve.Nearest(age)
	if !ok {
		return 0, fmt.Errorf("citation curve for age %d: %w", age, ErrMissingReferenceData)
	}
	row, _ := s.curve.Row(key)
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("age %d: %w", key, ErrDegenerateBracket)
		}
	}

	c := float64(citations)
	lo, hi := row[0], row[0]
	for _, v := range row[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	if c <= lo {
		return 0, nil
	}
	if c >= hi {
		return 100, nil
	}

	below, above := -1, -1
	for i, v := range row {
		if v <= c {
			below = i
		}
		if v >= c && above < 0 {
			above = i
		}
	}
	if below == above {
		return s.levels[below], nil
	}

	vb, va := row[below], row[above]
	if va == vb {
		// vb <= c <= va, so c is on a plateau.
		return s.levels[above], nil
	}

	lb, la := s.levels[below], s.levels[above]
	return lb + (c-vb)/(va-vb)*(la-lb), nil
}
