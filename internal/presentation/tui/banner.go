package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Stepwise banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _                        _          ", "#34d399"},
		{" ___| |_ ___ _ ____      _(_)___  ___ ", "#2dd4bf"},
		{"/ __| __/ _ \\ '_ \\ \\ /\\ / / / __|/ _ \\", "#22d3ee"},
		{"\\__ \\ ||  __/ |_) \\ V  V /| \\__ \\  __/", "#38bdf8"},
		{"|___/\\__\\___| .__/ \\_/\\_/ |_|___/\\___|", "#60a5fa"},
		{"            |_|                        ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a short status word: green for ok, red otherwise.
func Status(ok bool) string {
	p := termenv.EnvColorProfile()
	if ok {
		return termenv.String("ok").Foreground(p.Color("#22c55e")).Bold().String()
	}
	return termenv.String("failed").Foreground(p.Color("#ef4444")).Bold().String()
}
