// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/scholar-impact/internal/reference"
)

// ProductivityScale answers "what percentile of authors with this career
// age have published at most this many papers" for one career age.
type ProductivityScale struct {
	counts []float64 // ascending, distinct
	levels []float64 // levels[i] is the percentile for counts[i]
}

// NewProductivityScale derives the rank-to-percentile mapping for careerAge
// from the paper-count curve.
//
// The row of the nearest career age is used (the smaller age on a tie). A
// row holding any value outside [0,100] is replaced by the element-wise mean
// of its neighbouring rows. Each distinct paper count maps to the highest
// percentile level at which it appears.
func NewProductivityScale(curve *reference.Curve, careerAge int) (*ProductivityScale, error) {
	key, ok := curve.Nearest(careerAge)
	if !ok {
		return nil, fmt.Errorf("productivity curve for career age %d: %w", careerAge, ErrMissingReferenceData)
	}
	row, _ := curve.Row(key)
	if !wellFormed(row) {
		row = neighbourMean(curve, key)
	}

	levels := curve.Levels()
	highest := make(map[float64]float64, len(row))
	for i, v := range row {
		if math.IsNaN(v) {
			continue
		}
		highest[v] = levels[i]
	}
	if len(highest) == 0 {
		return nil, fmt.Errorf("productivity curve for career age %d has no usable values: %w", key, ErrMissingReferenceData)
	}

	p := &ProductivityScale{counts: make([]float64, 0, len(highest))}
	for v := range highest {
		p.counts = append(p.counts, v)
	}
	sort.Float64s(p.counts)
	p.levels = make([]float64, len(p.counts))
	for i, v := range p.counts {
		p.levels[i] = highest[v]
	}
	return p, nil
}

// PercentileForRank returns the percentile stored under the paper count
// closest to rank. Equidistant counts resolve to the smaller count.
func (p *ProductivityScale) PercentileForRank(rank int) float64 {
	r := float64(rank)
	i := sort.SearchFloat64s(p.counts, r)
	switch {
	case i == 0:
		return p.levels[0]
	case i == len(p.counts):
		return p.levels[len(p.levels)-1]
	}
	if r-p.counts[i-1] <= p.counts[i]-r {
		return p.levels[i-1]
	}
	return p.levels[i]
}

// PercentileForRank is a one-shot form of NewProductivityScale followed by
// (*ProductivityScale).PercentileForRank.
func PercentileForRank(curve *reference.Curve, careerAge, rank int) (float64, error) {
	p, err := NewProductivityScale(curve, careerAge)
	if err != nil {
		return 0, err
	}
	return p.PercentileForRank(rank), nil
}

func wellFormed(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return false
		}
	}
	return true
}

func neighbourMean(curve *reference.Curve, key int) []float64 {
	prevKey, nextKey, _ := curve.Neighbors(key)
	prev, _ := curve.Row(prevKey)
	next, _ := curve.Row(nextKey)
	mean := make([]float64, len(prev))
	for i := range prev {
		mean[i] = (prev[i] + next[i]) / 2
	}
	return mean
}
