// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"math"
	"sort"
)

// fullArea is the area of the 100x100 percentile box.
const fullArea = 100 * 100

// Point pairs a publication's productivity percentile with its impact
// (citation) percentile.
type Point struct {
	Productivity float64
	Impact       float64
}

// Aggregate computes the PiP-AUC index: the trapezoidal area under the
// impact-vs-productivity curve, normalized by the full percentile box and
// rounded to four decimals.
//
// Only the first point for each productivity percentile is kept; the rest
// are ignored before the curve is sorted by productivity.
func Aggregate(points []Point) float64 {
	seen := make(map[float64]bool, len(points))
	curve := make([]Point, 0, len(points))
	for _, p := range points {
		if seen[p.Productivity] {
			continue
		}
		seen[p.Productivity] = true
		curve = append(curve, p)
	}

	// A single point or none encloses no area.
	if len(curve) < 2 {
		return 0
	}

	sort.SliceStable(curve, func(i, j int) bool {
		return curve[i].Productivity < curve[j].Productivity
	})

	var area float64
	for i := 1; i < len(curve); i++ {
		width := curve[i].Productivity - curve[i-1].Productivity
		area += width * (curve[i].Impact + curve[i-1].Impact) / 2
	}
	return roundTo(area/fullArea, 4)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
