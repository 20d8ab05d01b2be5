// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"sort"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

// YearSummary aggregates an author's scored publications from one year.
type YearSummary struct {
	Year         int     `json:"year" yaml:"year"`
	Citations    int     `json:"citations" yaml:"citations"`
	Publications int     `json:"publications" yaml:"publications"`
	MeanScore    float64 `json:"mean_score" yaml:"mean_score"`
}

// Yearly groups pubs by publication year, ascending. fromYear and toYear are
// inclusive bounds; zero leaves that side open.
func Yearly(pubs []types.ScoredPublication, fromYear, toYear int) []YearSummary {
	byYear := make(map[int]*YearSummary)
	for _, p := range pubs {
		if (fromYear != 0 && p.Year < fromYear) || (toYear != 0 && p.Year > toYear) {
			continue
		}
		ys, ok := byYear[p.Year]
		if !ok {
			ys = &YearSummary{Year: p.Year}
			byYear[p.Year] = ys
		}
		ys.Citations += p.Citations
		ys.Publications++
		ys.MeanScore += p.PercentileScore
	}

	out := make([]YearSummary, 0, len(byYear))
	for _, ys := range byYear {
		ys.MeanScore = roundTo(ys.MeanScore/float64(ys.Publications), scoreDecimals)
		out = append(out, *ys)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// BestYear returns the year whose citations, publication count and mean
// score, each divided by its maximum over all years, sum highest. The first
// entry wins a tie, which is the earliest year for Yearly's output. ok is
// false when years is empty.
func BestYear(years []YearSummary) (year int, ok bool) {
	if len(years) == 0 {
		return 0, false
	}

	var maxCit, maxPubs, maxScore float64
	for _, y := range years {
		maxCit = max(maxCit, float64(y.Citations))
		maxPubs = max(maxPubs, float64(y.Publications))
		maxScore = max(maxScore, y.MeanScore)
	}

	best := -1.0
	for _, y := range years {
		m := ratio(float64(y.Citations), maxCit) +
			ratio(float64(y.Publications), maxPubs) +
			ratio(y.MeanScore, maxScore)
		if m > best {
			best, year = m, y.Year
		}
	}
	return year, true
}

func ratio(v, maximum float64) float64 {
	if maximum == 0 {
		return 0
	}
	return v / maximum
}

// YearComparison pairs two authors' summaries for one year. A side with no
// publications that year has only Year set.
type YearComparison struct {
	Year   int         `json:"year" yaml:"year"`
	First  YearSummary `json:"first" yaml:"first"`
	Second YearSummary `json:"second" yaml:"second"`
}

// CompareYearly lines up two Yearly results over the union of their years,
// ascending.
func CompareYearly(first, second []YearSummary) []YearComparison {
	byYear := make(map[int]*YearComparison)
	entry := func(year int) *YearComparison {
		c, ok := byYear[year]
		if !ok {
			c = &YearComparison{
				Year:   year,
				First:  YearSummary{Year: year},
				Second: YearSummary{Year: year},
			}
			byYear[year] = c
		}
		return c
	}
	for _, y := range first {
		entry(y.Year).First = y
	}
	for _, y := range second {
		entry(y.Year).Second = y
	}

	out := make([]YearComparison, 0, len(byYear))
	for _, c := range byYear {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
