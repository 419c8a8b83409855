package domain

// Placeholder point names substituted for absent segment endpoints.
const (
	PlaceholderStart = "N_S"
	PlaceholderEnd   = "N_K"
)

// Wire values of the valve state as reported by the plant backend.
const (
	WireValveOpen   = "OTWARTY"
	WireValveClosed = "ZAMKNIETY"
)
