package domain

import "strings"

// ValveState is the reported position of the valve controlling a segment.
type ValveState string

const (
	ValveOpen    ValveState = "OPEN"
	ValveClosed  ValveState = "CLOSED"
	ValveUnknown ValveState = "UNKNOWN"
)

// ParseValveState maps a backend wire value onto a ValveState.
// Unrecognized values yield ValveUnknown, which renders like a closed valve.
func ParseValveState(wire string) ValveState {
	switch strings.ToUpper(strings.TrimSpace(wire)) {
	case WireValveOpen, string(ValveOpen):
		return ValveOpen
	case WireValveClosed, string(ValveClosed):
		return ValveClosed
	default:
		return ValveUnknown
	}
}

// Wire returns the backend representation of the valve state.
func (v ValveState) Wire() string {
	switch v {
	case ValveOpen:
		return WireValveOpen
	case ValveClosed:
		return WireValveClosed
	default:
		return ""
	}
}

// Point is a named connection endpoint (an equipment port or a junction).
// Points have no lifecycle of their own; they are implied by the segments referencing them.
type Point string

// Segment is a directed pipe connection between two points, controlled by one valve.
type Segment struct {
	Name       string     `json:"name"`
	Start      Point      `json:"start,omitempty"`
	End        Point      `json:"end,omitempty"`
	Valve      string     `json:"valve,omitempty"`
	ValveState ValveState `json:"valve_state"`
	Occupied   bool       `json:"occupied"`
}

// StartOrPlaceholder returns the start point, or PlaceholderStart if it is absent.
func (s Segment) StartOrPlaceholder() Point {
	if s.Start == "" {
		return PlaceholderStart
	}
	return s.Start
}

// EndOrPlaceholder returns the end point, or PlaceholderEnd if it is absent.
func (s Segment) EndOrPlaceholder() Point {
	if s.End == "" {
		return PlaceholderEnd
	}
	return s.End
}
