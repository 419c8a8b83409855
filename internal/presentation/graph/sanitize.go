package graph

import (
	"strings"

	"github.com/aretw0/pipenet/pkg/domain"
)

// Sanitize derives a node identifier from a point name by replacing every
// character outside [A-Za-z0-9_] with an underscore. It is idempotent.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// Mermaid keywords that end or redirect a flowchart statement when used as a bare identifier.
var reserved = map[string]bool{
	"end":       true,
	"graph":     true,
	"subgraph":  true,
	"flowchart": true,
	"style":     true,
	"linkstyle": true,
	"classdef":  true,
	"class":     true,
	"click":     true,
	"direction": true,
}

// ReservedPrefix is prepended to identifiers that would otherwise be a Mermaid keyword.
const ReservedPrefix = "n_"

// IsReserved reports whether id is a Mermaid keyword, case-insensitively.
func IsReserved(id string) bool {
	return reserved[strings.ToLower(id)]
}

// NodeID is the identifier a point is drawn under: its sanitized name,
// prefixed with ReservedPrefix when that name is a Mermaid keyword.
func NodeID(name string) string {
	id := Sanitize(name)
	if IsReserved(id) {
		return ReservedPrefix + id
	}
	return id
}

// ClassifyShape maps a point name onto a node shape. Prefixes are checked in
// priority order on the original (unsanitized) name; anything else is generic.
func ClassifyShape(name string) domain.NodeShape {
	switch {
	case strings.HasPrefix(name, "R"):
		return domain.ShapeReactor
	case strings.HasPrefix(name, "F"):
		return domain.ShapeFilter
	case strings.HasPrefix(name, "B"), strings.HasPrefix(name, "Ap"):
		return domain.ShapeVessel
	default:
		return domain.ShapeGeneric
	}
}
