package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseValveState(t *testing.T) {
	cases := map[string]domain.ValveState{
		"OTWARTY":    domain.ValveOpen,
		"otwarty":    domain.ValveOpen,
		"ZAMKNIETY":  domain.ValveClosed,
		"OPEN":       domain.ValveOpen,
		"CLOSED":     domain.ValveClosed,
		"":           domain.ValveUnknown,
		"POLOTWARTY": domain.ValveUnknown,
	}
	for wire, want := range cases {
		assert.Equal(t, want, domain.ParseValveState(wire), "wire=%q", wire)
	}
}

func TestValveState_Wire(t *testing.T) {
	assert.Equal(t, "OTWARTY", domain.ValveOpen.Wire())
	assert.Equal(t, "ZAMKNIETY", domain.ValveClosed.Wire())
	assert.Equal(t, "", domain.ValveUnknown.Wire())
}

func TestSegment_Placeholders(t *testing.T) {
	seg := domain.Segment{Name: "S1"}
	assert.Equal(t, domain.Point("N_S"), seg.StartOrPlaceholder())
	assert.Equal(t, domain.Point("N_K"), seg.EndOrPlaceholder())

	seg = domain.Segment{Name: "S2", Start: "R1", End: "F1"}
	assert.Equal(t, domain.Point("R1"), seg.StartOrPlaceholder())
	assert.Equal(t, domain.Point("F1"), seg.EndOrPlaceholder())
}

func TestNewSnapshot_CopiesSegments(t *testing.T) {
	segs := []domain.Segment{{Name: "S1"}}
	snap := domain.NewSnapshot(segs, time.Now(), 1)
	segs[0].Name = "mutated"

	assert.Equal(t, "S1", snap.Segments[0].Name)
	assert.Equal(t, 1, snap.Len())

	var empty *domain.TopologySnapshot
	assert.Equal(t, 0, empty.Len())
}

func TestHighlightRequest_Contains(t *testing.T) {
	h := domain.NewHighlightRequest("tok", []string{"S1", "S3"}, []string{"V1"})
	assert.True(t, h.Contains("S1"))
	assert.False(t, h.Contains("S2"))
	assert.False(t, h.IsEmpty())

	// Decoded requests carry no index and fall back to a scan.
	decoded := &domain.HighlightRequest{Segments: []string{"S9"}}
	assert.True(t, decoded.Contains("S9"))

	var none *domain.HighlightRequest
	assert.False(t, none.Contains("S1"))
	assert.True(t, none.IsEmpty())
}

func TestErrMalformedResponse_IsNetwork(t *testing.T) {
	err := errors.Join(domain.ErrMalformedResponse)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotErrorIs(t, domain.ErrNetwork, domain.ErrMalformedResponse)
}
