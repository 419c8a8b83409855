package domain

import "time"

// TopologySnapshot is the full set of segments returned by one fetch.
// It is immutable once received and replaced wholesale by the next fetch.
type TopologySnapshot struct {
	Segments  []Segment `json:"segments"`
	FetchedAt time.Time `json:"fetched_at"`
	// Sequence is the monotonic number of the fetch that produced the snapshot.
	Sequence uint64 `json:"sequence"`
}

// NewSnapshot copies segments into a new snapshot so later changes to the slice cannot leak in.
func NewSnapshot(segments []Segment, fetchedAt time.Time, seq uint64) *TopologySnapshot {
	copied := make([]Segment, len(segments))
	copy(copied, segments)
	return &TopologySnapshot{
		Segments:  copied,
		FetchedAt: fetchedAt,
		Sequence:  seq,
	}
}

// Len returns the number of segments, treating a nil snapshot as empty.
func (s *TopologySnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Segments)
}

// Segment looks up a segment by name.
func (s *TopologySnapshot) Segment(name string) (Segment, bool) {
	if s == nil {
		return Segment{}, false
	}
	for _, seg := range s.Segments {
		if seg.Name == name {
			return seg, true
		}
	}
	return Segment{}, false
}

// HighlightRequest is the set of segments of a proposed route.
// It is supplied by the route-suggestion flow and discarded once the operator confirms or cancels.
type HighlightRequest struct {
	// Token identifies the preview so confirmation can refer to it.
	Token    string   `json:"token"`
	Segments []string `json:"segments"`
	Valves   []string `json:"valves,omitempty"`
	// Route carries the request that produced the suggestion, replayed on confirmation.
	Route *RouteRequest `json:"route,omitempty"`

	members map[string]struct{}
}

// NewHighlightRequest builds a highlight over the given segment names.
func NewHighlightRequest(token string, segments, valves []string) *HighlightRequest {
	h := &HighlightRequest{
		Token:    token,
		Segments: append([]string(nil), segments...),
		Valves:   append([]string(nil), valves...),
	}
	h.index()
	return h
}

func (h *HighlightRequest) index() {
	h.members = make(map[string]struct{}, len(h.Segments))
	for _, name := range h.Segments {
		h.members[name] = struct{}{}
	}
}

// Contains reports whether the named segment belongs to the highlighted route.
// A nil request highlights nothing.
func (h *HighlightRequest) Contains(name string) bool {
	if h == nil {
		return false
	}
	if h.members == nil {
		for _, seg := range h.Segments {
			if seg == name {
				return true
			}
		}
		return false
	}
	_, ok := h.members[name]
	return ok
}

// IsEmpty reports whether the request highlights no segment.
func (h *HighlightRequest) IsEmpty() bool {
	return h == nil || len(h.Segments) == 0
}

// RouteRequest asks the backend for a route between two pieces of equipment.
type RouteRequest struct {
	Start string   `json:"start" mapstructure:"start" validate:"required"`
	Goal  string   `json:"goal" mapstructure:"goal" validate:"required,nefield=Start"`
	Via   []string `json:"via,omitempty" mapstructure:"via"`
}

// RouteSuggestion is the backend's proposed route.
type RouteSuggestion struct {
	Segments []string `json:"segments"`
	Valves   []string `json:"valves"`
}
