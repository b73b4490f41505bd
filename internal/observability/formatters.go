// Package observability provides the process logger and boxed summaries of
// stored job records for operator commands.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/leadgpt/emailgend/internal/db"
	"github.com/leadgpt/emailgend/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for operator commands
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

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecord outputs the state of a stored job record and, once done, a
// summary of its result.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecord(rec *db.Record) {
	if rec == nil {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO RECORD FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:       %s\n", rec.JobID))
	sb.WriteString(fmt.Sprintf("User:      %s\n", rec.UserID))
	sb.WriteString(fmt.Sprintf("Campaign:  %s\n", rec.CampaignID))
	sb.WriteString(fmt.Sprintf("Done:      %t\n", rec.IsDone))
	sb.WriteString(fmt.Sprintf("Updated:   %s", rec.UpdatedAt.Format("2006-01-02 15:04:05")))
	p.printBox("JOB RECORD", sb.String())

	if rec.Emails != nil {
		p.PrintResult(rec.Emails)
	}
}

// PrintResult outputs per-organization target counts and the first targets
// of each organization.
func (p *Printer) PrintResult(result *types.JobResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Model:     %s\n", result.Model))
	sb.WriteString(fmt.Sprintf("Targets:   %d (%d failed)\n", result.TargetCount(), result.FailedCount()))

	for _, org := range result.EmailData {
		failed := 0
		for _, t := range org.People {
			if t.Failed() {
				failed++
			}
		}
		sb.WriteString(fmt.Sprintf("\n%s [%s]  %d targets, %d failed\n", org.Name, org.CompanyID, len(org.People), failed))

		count := min(len(org.People), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(targetLine(org.People[i]))
			sb.WriteString("\n")
		}
		if len(org.People) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(org.People)-maxItemsToShow))
		}
	}

	p.printBox("GENERATED EMAILS", strings.TrimSuffix(sb.String(), "\n"))
}

func targetLine(t types.Target) string {
	if t.Failed() {
		return fmt.Sprintf("  ⚠ %s: %s", t.ID, t.Error)
	}
	subject := ""
	if len(t.Emails) > 0 {
		subject = t.Emails[0].EmailSubject
	}
	return fmt.Sprintf("  • %s (%d emails) %q", t.ID, len(t.Emails), subject)
}

// clip shortens s to width runes, marking the cut with "...".
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
