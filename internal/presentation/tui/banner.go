package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pipenet banner with a blue-to-teal gradient.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"         _                       _   ", "#60a5fa"},
		{"  _ __  (_) _ __    ___  _ __   ___ | |_ ", "#38bdf8"},
		{" | '_ \\ | || '_ \\  / _ \\| '_ \\ / _ \\| __|", "#22d3ee"},
		{" | |_) || || |_) ||  __/| | | ||  __/| |_ ", "#2dd4bf"},
		{" | .__/ |_|| .__/  \\___||_| |_| \\___| \\__|", "#34d399"},
		{" |_|       |_|                           ", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, " %s\n\n", p.String("v"+version).Faint())
}
