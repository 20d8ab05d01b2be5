// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PublicationRecord is one validated publication of an author. Records are
// produced by the ingestion boundary in internal/source and never mutated.
type PublicationRecord struct {
	// Citations is the number of times the publication has been cited.
	Citations int `json:"citations" yaml:"citations"`

	// Age is the number of calendar years since publication, counting the
	// publication year itself (a paper from the current year has age 1).
	Age int `json:"age" yaml:"age"`

	// Title is the publication title as reported by the source.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`
}

// ScoredPublication is a PublicationRecord annotated by the impact engine.
type ScoredPublication struct {
	PublicationRecord `yaml:",inline"`

	// PercentileScore places the citation count within the distribution of
	// papers of the same age (0-100).
	PercentileScore float64 `json:"percentile_score" yaml:"percentile_score"`

	// Rank is the 1-based position of the paper when the author's papers are
	// ordered by descending PercentileScore.
	Rank int `json:"rank" yaml:"rank"`

	// ProductivityPercentile places Rank among the paper counts of authors
	// with the same career age (0-100).
	ProductivityPercentile float64 `json:"productivity_percentile" yaml:"productivity_percentile"`
}

// ImpactSummary is the output of one engine run.
type ImpactSummary struct {
	// PipAUC is the area under the productivity/impact percentile curve,
	// normalized to [0,1].
	PipAUC float64 `json:"pip_auc" yaml:"pip_auc"`

	// CareerAgeYears is the age of the author's oldest publication.
	CareerAgeYears int `json:"career_age_years" yaml:"career_age_years"`

	// Publications are ordered by Rank.
	Publications []ScoredPublication `json:"publications" yaml:"publications"`
}

// AuthorInfo holds the descriptive author fields reported by a source.
type AuthorInfo struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Affiliation string    `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	CitedBy     int       `json:"cited_by" yaml:"cited_by"`
	WorksCount  int       `json:"works_count" yaml:"works_count"`
	HIndex      int       `json:"h_index,omitempty" yaml:"h_index,omitempty"`
	Source      string    `json:"source" yaml:"source"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// ResultBundle is the per-author result handed to the cache, exporters and
// the CLI. A bundle is either complete or empty; it never carries scores
// without an aggregate.
type ResultBundle struct {
	Author *AuthorInfo `json:"author,omitempty" yaml:"author,omitempty"`

	// Publications are ordered by Rank.
	Publications []ScoredPublication `json:"publications" yaml:"publications"`

	// TotalPublications counts every work the source returned, including
	// works dropped by validation.
	TotalPublications int `json:"total_publications" yaml:"total_publications"`

	PipAUC         float64   `json:"pip_auc" yaml:"pip_auc"`
	CareerAgeYears int       `json:"career_age_years" yaml:"career_age_years"`
	ComputedAt     time.Time `json:"computed_at" yaml:"computed_at"`
}

// Empty reports whether the bundle carries no scored publications.
func (b *ResultBundle) Empty() bool {
	return b == nil || len(b.Publications) == 0
}

// AuthorCandidate is one entry of an author name search.
type AuthorCandidate struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	CitedBy     int    `json:"cited_by" yaml:"cited_by"`
	WorksCount  int    `json:"works_count" yaml:"works_count"`
}
