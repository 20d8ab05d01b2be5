// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"sort"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

// Rank returns a copy of pubs ordered by descending PercentileScore with
// Rank set to 1..N. Equal scores keep their input order, so the paper seen
// first gets the better rank.
func Rank(pubs []types.ScoredPublication) []types.ScoredPublication {
	ranked := append([]types.ScoredPublication(nil), pubs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PercentileScore > ranked[j].PercentileScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
