// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-coach/internal/feedback"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		r := []rune(line)
		if len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFeedback outputs a scorecard: one line per category, the timing metrics, and the top
// strengths and improvements.
func (p *Printer) PrintFeedback(doc *feedback.Document, m feedback.Metrics) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	for _, spec := range feedback.ContractV1.Categories {
		c := doc.Category(spec.Key)
		if c == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-20s %3d  %s\n", spec.Title, c.Score, c.Status))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Words: %d   Length: %s   Pace: %.0f wpm\n", m.TotalWords, doc.Length.Duration, m.WPM))

	writeList(&sb, "Strengths", doc.Strengths)
	writeList(&sb, "Improvements", doc.Improvements)

	p.printBox("ANSWER FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs how the critique was turned into the document. Nothing is printed when the
// critique was used as-is.
func (p *Printer) PrintReport(r feedback.Report) {
	if !r.FallbackUsed() && len(r.Corrections) == 0 {
		return
	}

	var sb strings.Builder
	switch {
	case r.EmptyTranscript:
		sb.WriteString("No spoken answer; every category uses the fallback.\n")
	case r.ParseFailed:
		sb.WriteString(fmt.Sprintf("Critique could not be read: %s\n", r.ParseError))
	}
	if len(r.Issues) > 0 {
		sb.WriteString("Defaulted categories:\n")
		count := min(len(r.Issues), maxItemsToShow)
		for _, issue := range r.Issues[:count] {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", issue.Key, issue.Reason))
		}
		if len(r.Issues) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Issues)-maxItemsToShow))
		}
	}
	if len(r.Corrections) > 0 {
		sb.WriteString("Corrections:\n")
		count := min(len(r.Corrections), maxItemsToShow)
		for _, c := range r.Corrections[:count] {
			sb.WriteString(fmt.Sprintf("  • %s: %v → %v\n", c.Field, c.From, c.To))
		}
		if len(r.Corrections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Corrections)-maxItemsToShow))
		}
	}

	p.printBox("NORMALIZATION ("+r.SchemaVersion+")", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
