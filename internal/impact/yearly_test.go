// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

func yearPub(year, citations int, score float64) types.ScoredPublication {
	return types.ScoredPublication{
		PublicationRecord: types.PublicationRecord{Year: year, Citations: citations},
		PercentileScore:   score,
	}
}

func TestYearly(t *testing.T) {
	pubs := []types.ScoredPublication{
		yearPub(2020, 10, 40),
		yearPub(2018, 5, 90),
		yearPub(2020, 30, 60),
		yearPub(2021, 1, 12.5),
	}

	got := Yearly(pubs, 0, 0)
	assert.Equal(t, []YearSummary{
		{Year: 2018, Citations: 5, Publications: 1, MeanScore: 90},
		{Year: 2020, Citations: 40, Publications: 2, MeanScore: 50},
		{Year: 2021, Citations: 1, Publications: 1, MeanScore: 12.5},
	}, got)

	bounded := Yearly(pubs, 2019, 2020)
	assert.Equal(t, []YearSummary{{Year: 2020, Citations: 40, Publications: 2, MeanScore: 50}}, bounded)

	assert.Empty(t, Yearly(nil, 0, 0))
}

func TestBestYear(t *testing.T) {
	years := []YearSummary{
		{Year: 2018, Citations: 5, Publications: 1, MeanScore: 90},   // 0.125+0.5+1
		{Year: 2020, Citations: 40, Publications: 2, MeanScore: 50},  // 1+1+0.556
		{Year: 2021, Citations: 1, Publications: 1, MeanScore: 12.5}, // low
	}
	year, ok := BestYear(years)
	assert.True(t, ok)
	assert.Equal(t, 2020, year)

	_, ok = BestYear(nil)
	assert.False(t, ok)
}

func TestBestYear_TieAndZeros(t *testing.T) {
	years := []YearSummary{
		{Year: 2001, Publications: 1},
		{Year: 2002, Publications: 1},
	}
	year, ok := BestYear(years)
	assert.True(t, ok)
	assert.Equal(t, 2001, year, "first entry wins a tie; zero maxima contribute nothing")
}

func TestCompareYearly(t *testing.T) {
	first := []YearSummary{
		{Year: 2018, Citations: 5, Publications: 1, MeanScore: 90},
		{Year: 2020, Citations: 40, Publications: 2, MeanScore: 50},
	}
	second := []YearSummary{
		{Year: 2020, Citations: 3, Publications: 1, MeanScore: 10},
		{Year: 2022, Citations: 7, Publications: 1, MeanScore: 70},
	}

	got := CompareYearly(first, second)
	assert.Equal(t, []YearComparison{
		{Year: 2018, First: first[0], Second: YearSummary{Year: 2018}},
		{Year: 2020, First: first[1], Second: second[0]},
		{Year: 2022, First: YearSummary{Year: 2022}, Second: second[1]},
	}, got)

	assert.Empty(t, CompareYearly(nil, nil))
}
