package domain

// StyleKey is the visual state of a rendered segment.
type StyleKey string

const (
	StyleSuggested StyleKey = "SUGGESTED"
	StyleOccupied  StyleKey = "OCCUPIED"
	StyleOpen      StyleKey = "OPEN"
	StyleClosed    StyleKey = "CLOSED"
)

// NodeShape is the visual classification of a connection point.
type NodeShape string

const (
	ShapeReactor NodeShape = "reactor"
	ShapeFilter  NodeShape = "filter"
	ShapeVessel  NodeShape = "vessel"
	ShapeGeneric NodeShape = "generic"
)
