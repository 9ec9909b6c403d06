package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders a diagnostics report for CLI output.
type Formatter interface {
	Format(w io.Writer, list *List, root string) error
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter renders diagnostics as human-readable text grouped by file.
type TextFormatter struct{}

// Format outputs the report in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, list *List, root string) error {
	if _, err := fmt.Fprintf(w, "Validating content in: %s\n", root); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	for _, d := range list.Items() {
		icon := "⚠"
		if d.Severity == SeverityError {
			icon = "✗"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", icon, d.String()); err != nil {
			return err
		}
		if d.Excerpt != "" {
			for line := range strings.SplitSeq(strings.TrimRight(d.Excerpt, "\n"), "\n") {
				if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
					return err
				}
			}
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	errorCount := list.ErrorCount()
	warningCount := list.WarningCount()
	if errorCount > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s (blocks build)\n", errorCount, pluralize(errorCount)); err != nil {
			return err
		}
	}
	if warningCount > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s (should fix)\n", warningCount, pluralize(warningCount)); err != nil {
			return err
		}
	}
	if errorCount == 0 && warningCount == 0 {
		if _, err := fmt.Fprintln(w, "✨ All content passes validation!"); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter renders diagnostics as a JSON report.
type JSONFormatter struct{}

// JSONReport is the JSON output structure.
type JSONReport struct {
	Root         string           `json:"root"`
	ErrorCount   int              `json:"error_count"`
	WarningCount int              `json:"warning_count"`
	Diagnostics  []JSONDiagnostic `json:"diagnostics"`
}

// JSONDiagnostic is a single diagnostic in JSON format.
type JSONDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity string `json:"severity"`
	Category string `json:"category"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// Format outputs the report in JSON format.
func (f *JSONFormatter) Format(w io.Writer, list *List, root string) error {
	report := JSONReport{
		Root:         root,
		ErrorCount:   list.ErrorCount(),
		WarningCount: list.WarningCount(),
		Diagnostics:  make([]JSONDiagnostic, 0, list.Len()),
	}
	for _, d := range list.Items() {
		report.Diagnostics = append(report.Diagnostics, JSONDiagnostic{
			File:     d.File,
			Line:     d.Line,
			Column:   d.Column,
			Severity: d.Severity.String(),
			Category: string(d.Category),
			Rule:     d.Rule,
			Message:  d.Message,
			Excerpt:  d.Excerpt,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
