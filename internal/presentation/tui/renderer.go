package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReportMarkdown formats a run report as markdown.
func ReportMarkdown(r *domain.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run %s\n\n", r.RunID)
	if r.Pipeline != "" {
		fmt.Fprintf(&sb, "Pipeline: **%s**\n\n", r.Pipeline)
	}

	for _, rec := range r.Recipes {
		fmt.Fprintf(&sb, "## Recipe %d: %s\n\n", rec.Index, strings.Join(rec.Steps, " → "))
		sb.WriteString("| Step | Type | Value |\n|---|---|---|\n")
		for _, res := range rec.Results {
			fmt.Fprintf(&sb, "| %s | %s | `%+v` |\n", res.Step, res.Type, res.Value)
		}
		sb.WriteString("\n")
		if rec.Error != "" {
			fmt.Fprintf(&sb, "> **failed:** %s\n\n", rec.Error)
		}
	}

	if r.Error != "" && len(r.Recipes) == 0 {
		fmt.Fprintf(&sb, "> **failed:** %s\n", r.Error)
	}
	return sb.String()
}

// RenderReport renders r for a terminal, or returns plain markdown when
// stdout is not one.
func RenderReport(r *domain.Report) (string, error) {
	md := ReportMarkdown(r)
	if !IsTerminal(os.Stdout) {
		return md, nil
	}
	render, err := NewRenderer()
	if err != nil {
		return md, err
	}
	return render(md)
}
