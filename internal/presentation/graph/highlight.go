package graph

import "github.com/aretw0/pipenet/pkg/domain"

// StyleFor resolves the visual state of a segment. The first matching rule wins:
// membership in the highlight, then occupation, then an open valve. Anything
// else, including an unrecognized valve state, renders as closed.
//
// A suggested segment stays suggested even while occupied: the preview shows the
// route about to be claimed, which may overlap a segment that is still busy.
func StyleFor(seg domain.Segment, highlight *domain.HighlightRequest) domain.StyleKey {
	switch {
	case highlight.Contains(seg.Name):
		return domain.StyleSuggested
	case seg.Occupied:
		return domain.StyleOccupied
	case seg.ValveState == domain.ValveOpen:
		return domain.StyleOpen
	default:
		return domain.StyleClosed
	}
}
