package domain

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxNameLength bounds operator-supplied equipment and valve names, in bytes.
	DefaultMaxNameLength = 256
	// EnvMaxNameLength overrides DefaultMaxNameLength.
	EnvMaxNameLength = "PIPENET_MAX_NAME_LENGTH"
)

// ErrInvalidInput classifies operator input the dashboard refuses to forward to the backend.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrNameTooLong = &classifiedError{msg: "name exceeds maximum allowed length", class: ErrInvalidInput}
	ErrInvalidUTF8 = &classifiedError{msg: "name contains invalid UTF-8 sequences", class: ErrInvalidInput}
)

// CleanName trims an operator-supplied name and strips control characters.
// Oversized or non UTF-8 input is rejected rather than truncated.
func CleanName(name string) (string, error) {
	if limit := maxNameLength(); len(name) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrNameTooLong, len(name), limit)
	}
	if !utf8.ValidString(name) {
		return "", ErrInvalidUTF8
	}

	// Names end up in log lines and in the diagram source, so no control
	// characters survive, not even newlines.
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		name = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, name)
	}
	return strings.TrimSpace(name), nil
}

// Clean returns a copy of the request with every name passed through CleanName.
// Empty intermediate entries are dropped; an empty start or goal is an ErrInvalidInput.
func (r RouteRequest) Clean() (RouteRequest, error) {
	var err error
	out := RouteRequest{}
	if out.Start, err = CleanName(r.Start); err != nil {
		return RouteRequest{}, fmt.Errorf("start: %w", err)
	}
	if out.Goal, err = CleanName(r.Goal); err != nil {
		return RouteRequest{}, fmt.Errorf("goal: %w", err)
	}
	for i, v := range r.Via {
		c, err := CleanName(v)
		if err != nil {
			return RouteRequest{}, fmt.Errorf("via[%d]: %w", i, err)
		}
		if c != "" {
			out.Via = append(out.Via, c)
		}
	}
	if out.Start == "" || out.Goal == "" {
		return RouteRequest{}, fmt.Errorf("%w: route needs a start and a goal", ErrInvalidInput)
	}
	return out, nil
}

func maxNameLength() int {
	if val := os.Getenv(EnvMaxNameLength); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxNameLength
}
