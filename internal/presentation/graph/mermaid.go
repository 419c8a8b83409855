package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pipenet/pkg/domain"
)

// LinkStyles are the Mermaid link directives applied per style key.
var LinkStyles = map[domain.StyleKey]string{
	domain.StyleSuggested: "stroke:#ff9800,stroke-width:4px,stroke-dasharray:6 4",
	domain.StyleOccupied:  "stroke:#d32f2f,stroke-width:3px",
	domain.StyleOpen:      "stroke:#2e7d32,stroke-width:2px",
	domain.StyleClosed:    "stroke:#9e9e9e,stroke-width:1px",
}

// Mermaid produces a Mermaid flowchart syntax string from the description.
// Node shapes:
// - Reactor: [Rectangle]
// - Filter: [/Parallelogram/]
// - Vessel: [(Cylinder)]
// - Generic: (Rounded)
// Edge styles are emitted as positional linkStyle directives.
func (d *Description) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range d.Nodes {
		opener, closer := "(", ")"
		switch n.Shape {
		case domain.ShapeReactor:
			opener, closer = "[", "]"
		case domain.ShapeFilter:
			opener, closer = "[/", "/]"
		case domain.ShapeVessel:
			opener, closer = "[(", ")]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", n.ID, opener, escapeLabel(n.Label), closer))
	}

	for _, e := range d.Edges {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", e.From, escapeLabel(e.Segment), e.To))
	}

	if len(d.Edges) > 0 {
		sb.WriteString("\n    %% Segment Styles\n")
	}
	for i, e := range d.Edges {
		style, ok := LinkStyles[e.Style]
		if !ok {
			style = LinkStyles[domain.StyleClosed]
		}
		sb.WriteString(fmt.Sprintf("    linkStyle %d %s;\n", i, style))
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
