/*
Package pipenet renders a batch plant's piping network as Mermaid diagrams and highlights candidate routes.

The plant backend reports pipe segments: a named connection between two points (reactors, filters,
barrels, tankers, junctions) controlled by one valve, possibly occupied by an ongoing transfer. Pipenet
turns those segments into a flowchart where every edge is styled by the segment's state.

# Styles

Each edge gets exactly one style, chosen by the first matching rule:

  - SUGGESTED: the segment belongs to the route being previewed.
  - OCCUPIED: the segment is in use by a running operation.
  - OPEN: the segment's valve is open.
  - CLOSED: anything else, including unknown valve states.

# Usage

The library entry point builds diagram text directly from segments:

	src, err := pipenet.Render(segments, pipenet.WithHighlight("S1", "S2"))

The dashboard (cmd/pipenet serve) adds a topology cache, a refresh loop that pauses while the operator
inspects a diagram, server-sent updates to browsers, and Redis-backed invalidation between instances.
*/
package pipenet
