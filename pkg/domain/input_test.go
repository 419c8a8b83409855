package domain_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName_SizeLimit(t *testing.T) {
	limit := domain.DefaultMaxNameLength

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.CleanName(strings.Repeat("a", tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrNameTooLong)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCleanName_EnvOverride(t *testing.T) {
	t.Setenv(domain.EnvMaxNameLength, "4")

	_, err := domain.CleanName("Reaktor1")
	assert.ErrorIs(t, err, domain.ErrNameTooLong)

	got, err := domain.CleanName("R1")
	require.NoError(t, err)
	assert.Equal(t, "R1", got)
}

func TestCleanName_ControlChars(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Reaktor1", "Reaktor1"},
		{"  Filtr1 ", "Filtr1"},
		{"Zbior\x1b[31mnik1", "Zbior[31mnik1"},
		{"R1\n", "R1"},
		{"Re\x00ak\ttor", "Reaktor"},
		{"Zbiornik ł", "Zbiornik ł"},
	}
	for _, tt := range tests {
		got, err := domain.CleanName(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestCleanName_InvalidUTF8(t *testing.T) {
	_, err := domain.CleanName("R\xff1")
	assert.ErrorIs(t, err, domain.ErrInvalidUTF8)
}

func TestRouteRequest_Clean(t *testing.T) {
	req := domain.RouteRequest{Start: " Reaktor1", Goal: "Zbiornik1\r\n", Via: []string{"Filtr1", " ", "\x07"}}

	got, err := req.Clean()
	require.NoError(t, err)
	assert.Equal(t, domain.RouteRequest{Start: "Reaktor1", Goal: "Zbiornik1", Via: []string{"Filtr1"}}, got)

	_, err = domain.RouteRequest{Start: "R1", Goal: "F1", Via: []string{"\xfe"}}.Clean()
	assert.ErrorIs(t, err, domain.ErrInvalidUTF8)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "via[0]")

	_, err = domain.RouteRequest{Start: "\x1b", Goal: "F1"}.Clean()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
