package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/internal/presentation/graph"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/muesli/termenv"
)

var styleColors = map[domain.StyleKey]string{
	domain.StyleSuggested: "#ff9800",
	domain.StyleOccupied:  "#d32f2f",
	domain.StyleOpen:      "#2e7d32",
	domain.StyleClosed:    "#9e9e9e",
}

var styleOrder = []domain.StyleKey{
	domain.StyleSuggested,
	domain.StyleOccupied,
	domain.StyleOpen,
	domain.StyleClosed,
}

// StyleLabel colours a style key the way the diagram strokes it.
func StyleLabel(p termenv.Profile, key domain.StyleKey) string {
	color, ok := styleColors[key]
	if !ok {
		return string(key)
	}
	return p.String(string(key)).Foreground(p.Color(color)).Bold().String()
}

// Legend lists every style key with its edge count.
func Legend(p termenv.Profile, desc *graph.Description) string {
	counts := desc.StyleCounts()
	parts := make([]string, 0, len(styleOrder))
	for _, key := range styleOrder {
		parts = append(parts, fmt.Sprintf("%s %d", StyleLabel(p, key), counts[key]))
	}
	return strings.Join(parts, "  ")
}

// StatusReport renders the snapshot as a markdown document.
func StatusReport(status dashboard.Status, snap *domain.TopologySnapshot, desc *graph.Description) string {
	var sb strings.Builder

	sb.WriteString("# Pipe network\n\n")
	fmt.Fprintf(&sb, "- **Phase:** %s\n", status.Phase)
	fmt.Fprintf(&sb, "- **Snapshot:** #%d, %d segments\n", status.Sequence, status.Segments)
	if status.FetchedAt != nil {
		fmt.Fprintf(&sb, "- **Fetched:** %s\n", status.FetchedAt.Format("2006-01-02 15:04:05"))
	}
	if status.Pending != nil {
		fmt.Fprintf(&sb, "- **Preview:** %s\n", strings.Join(status.Pending.Segments, ", "))
	}

	if len(desc.Collisions) > 0 {
		sb.WriteString("\n## Identifier collisions\n\n")
		for _, c := range desc.Collisions {
			fmt.Fprintf(&sb, "- `%s` <- %s\n", c.ID, strings.Join(c.Names, ", "))
		}
	}

	if snap.Len() == 0 {
		sb.WriteString("\n_No segments._\n")
		return sb.String()
	}

	sb.WriteString("\n## Segments\n\n")
	sb.WriteString("| Segment | From | To | Valve | State | Style |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for i, seg := range snap.Segments {
		style := domain.StyleClosed
		if i < len(desc.Edges) {
			style = desc.Edges[i].Style
		}
		valve := seg.Valve
		if valve == "" {
			valve = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			seg.Name, seg.StartOrPlaceholder(), seg.EndOrPlaceholder(), valve, seg.ValveState, style)
	}
	return sb.String()
}
