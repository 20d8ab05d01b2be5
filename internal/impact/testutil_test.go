// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-impact/internal/reference"
)

var testLevels = []float64{0, 25, 50, 75, 100}

func testCitationCurve(t *testing.T) *reference.Curve {
	t.Helper()
	c, err := reference.NewCurve(testLevels, map[int][]float64{
		1:  {0, 0, 1, 3, 50},
		5:  {2, 10, 20, 40, 100},
		10: {4, 15, 30, 60, 300},
	})
	require.NoError(t, err)
	return c
}

func testProductivityCurve(t *testing.T) *reference.Curve {
	t.Helper()
	c, err := reference.NewCurve(testLevels, map[int][]float64{
		1:  {1, 1, 2, 3, 5},
		5:  {1, 3, 5, 10, 20},
		10: {2, 5, 10, 20, 40},
		15: {3, 6, -1, 30, 60}, // malformed: replaced by the mean of 10 and 20
		20: {3, 10, 20, 40, 80},
	})
	require.NoError(t, err)
	return c
}

func testReference(t *testing.T) *reference.Data {
	t.Helper()
	d, err := reference.New(testCitationCurve(t), testProductivityCurve(t))
	require.NoError(t, err)
	return d
}
