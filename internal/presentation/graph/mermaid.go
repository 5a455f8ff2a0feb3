package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Overlay marks a recipe and, optionally, the step where it failed.
type Overlay struct {
	Recipe []string
	Failed string
}

// GenerateMermaid renders the step graph as a Mermaid flowchart.
// Shapes:
// - Step reading bound inputs: [/Parallelogram/]
// - Async step: [[Subroutine]]
// - Default: [Rectangle]
// Only compatible edges are drawn, labelled with the type that flows along them.
func GenerateMermaid(steps []*domain.Step, edges []domain.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	results := make(map[string]string, len(steps))
	for _, s := range steps {
		results[s.Name] = domain.TypeName(s.Result)

		opener, closer := "[", "]"
		switch {
		case len(s.BoundNames()) > 0:
			opener, closer = "[/", "/]"
		case s.Async:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(s.Name), opener, s.Name, closer)
	}

	for _, e := range edges {
		if !e.Compatible {
			continue
		}
		label := strings.ReplaceAll(results[e.From], "\"", "'")
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", sanitizeMermaidID(e.From), label, sanitizeMermaidID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef recipe fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Recipe {
			id := sanitizeMermaidID(name)
			if id == "" || seen[id] || name == overlay.Failed {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s recipe;\n", id)
		}
		if overlay.Failed != "" {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID(overlay.Failed))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
