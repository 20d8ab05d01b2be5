// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import "errors"

var (
	// ErrMissingReferenceData indicates that no reference row could be
	// resolved for a lookup. Fatal for the author being scored.
	ErrMissingReferenceData = errors.New("missing reference data")

	// ErrDegenerateBracket indicates a reference row from which no
	// interpolation bracket can be formed because it holds non-finite values.
	ErrDegenerateBracket = errors.New("degenerate interpolation bracket")

	// ErrNoPublicationData indicates that there were no qualifying
	// publications to score. Callers render it as an empty result.
	ErrNoPublicationData = errors.New("no publication data")
)
