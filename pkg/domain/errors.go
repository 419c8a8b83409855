package domain

import "errors"

// ErrNetwork is returned when the backend could not be reached or answered with a non-2xx status.
var ErrNetwork = errors.New("backend unavailable")

// ErrMalformedResponse is returned when a backend response lacks the expected shape.
// It is classified as a network failure: errors.Is(err, ErrNetwork) also holds.
var ErrMalformedResponse = &classifiedError{msg: "malformed backend response", class: ErrNetwork}

// ErrRender is returned when a diagram description is rejected by the renderer boundary.
var ErrRender = errors.New("diagram rejected")

// ErrIdentifierCollision is returned in strict mode when two point names sanitize to the same node identifier.
var ErrIdentifierCollision = errors.New("node identifier collision")

// ErrNoSnapshot is returned when an operation needs a cached snapshot and none was fetched yet.
var ErrNoSnapshot = errors.New("no topology snapshot available")

// ErrNoHighlight is returned when a route confirmation arrives while no route is being previewed.
var ErrNoHighlight = errors.New("no route highlight active")

type classifiedError struct {
	msg   string
	class error
}

func (e *classifiedError) Error() string { return e.msg }

// Is reports the broader class so callers can treat malformed responses as network failures.
func (e *classifiedError) Is(target error) bool { return target == e.class }
