package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pipenet/pkg/domain"
)

// Node is a declared connection point.
type Node struct {
	ID    string           `json:"id"`
	Label string           `json:"label"`
	Shape domain.NodeShape `json:"shape"`
}

// Edge is one rendered segment. Its position in Description.Edges is the
// index its style is addressed by.
type Edge struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Segment string          `json:"segment"`
	Style   domain.StyleKey `json:"style"`
}

// Collision records distinct point names that sanitize to the same identifier.
type Collision struct {
	ID    string   `json:"id"`
	Names []string `json:"names"`
}

// Description is the graph handed to the diagram renderer: node declarations
// (possibly none) followed by edges in segment order.
type Description struct {
	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
	Collisions []Collision `json:"collisions,omitempty"`
}

// Build converts a snapshot into a Description. When includeNodes is set,
// one node is declared per distinct identifier, the first time it is seen.
// Edge order always matches segment order.
func Build(snap *domain.TopologySnapshot, includeNodes bool, highlight *domain.HighlightRequest) *Description {
	desc := &Description{
		Nodes: []Node{},
		Edges: make([]Edge, 0, snap.Len()),
	}
	if snap == nil {
		return desc
	}

	owners := make(map[string]string)
	collided := make(map[string]int)
	declared := make(map[string]bool)

	resolve := func(p domain.Point) string {
		name := string(p)
		id := NodeID(name)

		if owner, ok := owners[id]; !ok {
			owners[id] = name
		} else if owner != name {
			desc.recordCollision(collided, id, owner, name)
		}

		if includeNodes && !declared[id] {
			declared[id] = true
			desc.Nodes = append(desc.Nodes, Node{ID: id, Label: name, Shape: ClassifyShape(name)})
		}
		return id
	}

	for _, seg := range snap.Segments {
		from := resolve(seg.StartOrPlaceholder())
		to := resolve(seg.EndOrPlaceholder())
		desc.Edges = append(desc.Edges, Edge{
			From:    from,
			To:      to,
			Segment: seg.Name,
			Style:   StyleFor(seg, highlight),
		})
	}

	return desc
}

func (d *Description) recordCollision(index map[string]int, id, owner, name string) {
	i, ok := index[id]
	if !ok {
		index[id] = len(d.Collisions)
		d.Collisions = append(d.Collisions, Collision{ID: id, Names: []string{owner, name}})
		return
	}
	for _, n := range d.Collisions[i].Names {
		if n == name {
			return
		}
	}
	d.Collisions[i].Names = append(d.Collisions[i].Names, name)
}

// CollisionErr returns an error wrapping domain.ErrIdentifierCollision when
// any identifier is shared by distinct point names.
func (d *Description) CollisionErr() error {
	if len(d.Collisions) == 0 {
		return nil
	}
	parts := make([]string, len(d.Collisions))
	for i, c := range d.Collisions {
		parts[i] = fmt.Sprintf("%s <- %s", c.ID, strings.Join(c.Names, ", "))
	}
	return fmt.Errorf("%w: %s", domain.ErrIdentifierCollision, strings.Join(parts, "; "))
}

// StyleCounts tallies edges per style key.
func (d *Description) StyleCounts() map[domain.StyleKey]int {
	counts := make(map[domain.StyleKey]int, 4)
	for _, e := range d.Edges {
		counts[e.Style]++
	}
	return counts
}
