package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mnemo ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __ ___  _ __   ___ _ __ ___   ___", "#818cf8"},
		{" | '_ ` _ \\| '_ \\ / _ \\ '_ ` _ \\ / _ \\", "#a78bfa"},
		{" | | | | | | | | |  __/ | | | | | (_) |", "#c084fc"},
		{" |_| |_| |_|_| |_|\\___|_| |_| |_|\\___/", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
