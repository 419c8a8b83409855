/*
Package domain contains the core model of the plant piping network.

It defines the entities the dashboard reasons about: connection Points, pipe Segments
with their valve and reservation state, immutable TopologySnapshots, and transient
HighlightRequests describing a candidate route. This package is kept pure and free of
I/O, following Hexagonal Architecture principles.

# Key Entities

  - Segment: A directed pipe connection between two named points, controlled by one valve.
  - TopologySnapshot: The complete, immutable set of segments as of one fetch.
  - HighlightRequest: A transient set of segment names representing a route awaiting confirmation.
  - StyleKey: The visual state of a segment (SUGGESTED, OCCUPIED, OPEN, CLOSED).
  - NodeShape: The visual shape of a connection point (reactor, filter, vessel, generic).
*/
package domain
