// Package observability provides formatted CLI output and Prometheus metrics.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/coursemate/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCompleted outputs the normalized completed-course list.
func (p *Printer) PrintCompleted(program string, completed types.CompletedCourses) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Program:   %s\n", program))
	sb.WriteString(fmt.Sprintf("Completed: %d courses\n", completed.Len()))

	codes := completed.Codes()
	if len(codes) > 0 {
		sb.WriteString("\n")
		names := make([]string, len(codes))
		for i, c := range codes {
			names[i] = c.String()
		}
		// Wrap at a few codes per line so the box stays readable.
		for i := 0; i < len(names); i += 4 {
			end := min(i+4, len(names))
			sb.WriteString("  " + strings.Join(names[i:end], ", ") + "\n")
		}
	}

	p.printBox("SUBMISSION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutstanding outputs each unfinished category with its courses.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutstanding(outstanding types.OutstandingRequirements) {
	if len(outstanding) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL REQUIREMENTS SATISFIED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, cat := range outstanding {
		sb.WriteString(cat.Label() + "\n")
		for _, c := range cat.Courses {
			sb.WriteString(fmt.Sprintf("  • %s\n", c))
		}
		if i < len(outstanding)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("OUTSTANDING REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGraphSummary outputs node and edge counts and the first few edges.
func (p *Printer) PrintGraphSummary(g types.Graph) {
	var sb strings.Builder

	unique := make(map[types.CourseCode]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		unique[n.Key] = struct{}{}
	}
	sb.WriteString(fmt.Sprintf("Nodes: %d (%d distinct courses)\n", len(g.Nodes), len(unique)))
	sb.WriteString(fmt.Sprintf("Edges: %d\n", len(g.Edges)))

	if len(g.Edges) > 0 {
		sb.WriteString("\n")
		count := min(len(g.Edges), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := g.Edges[i]
			sb.WriteString(fmt.Sprintf("  %s → %s\n", e.From, e.To))
		}
		if len(g.Edges) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more edges\n", len(g.Edges)-maxItemsToShow))
		}
	}

	p.printBox("PREREQUISITE GRAPH", strings.TrimSuffix(sb.String(), "\n"))
}
