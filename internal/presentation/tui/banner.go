package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the shell banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                _                        `, "#34d399"},
		{`   ___ __ _ _ __| |_ ___ _   _ _ __   ___ `, "#2dd4bf"},
		{`  / __/ _' | '__| __/ __| | | | '_ \ / __|`, "#22d3ee"},
		{` | (_| (_| | |  | |_\__ \ |_| | | | | (__ `, "#38bdf8"},
		{`  \___\__,_|_|   \__|___/\__, |_| |_|\___|`, "#60a5fa"},
		{`                         |___/            `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
