// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"errors"
	"fmt"

	"github.com/pdiddy/scholar-impact/internal/reference"
	"github.com/pdiddy/scholar-impact/pkg/types"
)

// scoreDecimals is the precision percentile scores are rounded to before
// ranking; ties are decided on the rounded values.
const scoreDecimals = 2

// CareerProfile describes how long an author has been publishing.
type CareerProfile struct {
	// CareerAgeYears is the age of the author's oldest publication.
	CareerAgeYears int
}

// NewCareerProfile derives the profile from the author's records. Ages
// count the publication year itself, so the oldest paper's age equals
// currentYear - earliestYear + 1.
func NewCareerProfile(records []types.PublicationRecord) CareerProfile {
	var p CareerProfile
	for _, r := range records {
		p.CareerAgeYears = max(p.CareerAgeYears, r.Age)
	}
	return p
}

// Engine runs the full scoring pipeline against one set of reference
// tables. An Engine is safe for concurrent use.
type Engine struct {
	ref    *reference.Data
	scorer *Scorer
}

// NewEngine returns an Engine over ref.
func NewEngine(ref *reference.Data) (*Engine, error) {
	if ref == nil || ref.Citations.Len() == 0 || ref.Productivity.Len() == 0 {
		return nil, fmt.Errorf("reference tables not loaded: %w", ErrMissingReferenceData)
	}
	return &Engine{ref: ref, scorer: NewScorer(ref.Citations)}, nil
}

// Scorer returns the engine's paper scorer.
func (e *Engine) Scorer() *Scorer { return e.scorer }

// Compute scores, ranks and normalizes records and aggregates them into the
// PiP-AUC index. It returns ErrNoPublicationData for an empty record set.
// Any failure yields a zero summary: scores are never returned without the
// aggregate.
func (e *Engine) Compute(records []types.PublicationRecord) (types.ImpactSummary, error) {
	if len(records) == 0 {
		return types.ImpactSummary{}, ErrNoPublicationData
	}

	scored := make([]types.ScoredPublication, len(records))
	for i, r := range records {
		s, err := e.scorer.Score(r.Citations, r.Age)
		if err != nil {
			return types.ImpactSummary{}, fmt.Errorf("scoring %q: %w", r.Title, err)
		}
		scored[i] = types.ScoredPublication{
			PublicationRecord: r,
			PercentileScore:   roundTo(s, scoreDecimals),
		}
	}

	ranked := Rank(scored)

	profile := NewCareerProfile(records)
	scale, err := NewProductivityScale(e.ref.Productivity, profile.CareerAgeYears)
	if err != nil {
		return types.ImpactSummary{}, err
	}

	points := make([]Point, len(ranked))
	for i := range ranked {
		ranked[i].ProductivityPercentile = scale.PercentileForRank(ranked[i].Rank)
		points[i] = Point{
			Productivity: ranked[i].ProductivityPercentile,
			Impact:       ranked[i].PercentileScore,
		}
	}

	return types.ImpactSummary{
		PipAUC:         Aggregate(points),
		CareerAgeYears: profile.CareerAgeYears,
		Publications:   ranked,
	}, nil
}

// IsNoData reports whether err means "nothing to score" rather than a failure.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoPublicationData)
}
