// Package diagnostics defines the severity-tagged diagnostic value that every
// validation stage of the pipeline returns instead of failing on first error.
package diagnostics

import (
	"fmt"
	"sort"
)

// Severity indicates how a diagnostic affects the build outcome.
type Severity int

const (
	// SeverityWarning indicates issues that are reported but never block a build.
	SeverityWarning Severity = iota
	// SeverityError indicates issues that abort the build after full reporting.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups diagnostics by the validation stage that produced them.
type Category string

const (
	CategorySchema    Category = "schema"
	CategoryStructure Category = "structure"
	CategoryMarkup    Category = "markup"
	CategoryComponent Category = "component"
	CategoryRelation  Category = "relation"
)

// Diagnostic is a single problem found in a content file or configuration.
type Diagnostic struct {
	File     string   // Path relative to the content root
	Line     int      // 1-based line, 0 when unknown
	Column   int      // 1-based column, 0 when unknown
	Severity Severity
	Category Category
	Rule     string // Short rule identifier (e.g. "slug-filename-mismatch")
	Message  string
	Excerpt  string // Rendered source context, markup errors only
}

// String renders the diagnostic in the path:line:col form printed by the CLI.
func (d Diagnostic) String() string {
	loc := d.File
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
		if d.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Column)
		}
	}
	return fmt.Sprintf("%s [%s/%s] %s: %s", loc, d.Category, d.Rule, d.Severity, d.Message)
}

// List collects diagnostics across files and stages.
type List struct {
	items []Diagnostic
}

// Add appends diagnostics to the list.
func (l *List) Add(ds ...Diagnostic) {
	l.items = append(l.items, ds...)
}

// Merge appends every diagnostic from other.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// Items returns the collected diagnostics in insertion order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Len returns the number of collected diagnostics.
func (l *List) Len() int { return len(l.items) }

// HasErrors returns true if any error-severity diagnostic exists.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity diagnostics.
func (l *List) ErrorCount() int {
	n := 0
	for _, d := range l.items {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity diagnostics.
func (l *List) WarningCount() int {
	n := 0
	for _, d := range l.items {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by file, then line, then column, then message.
// The orchestrator sorts once before printing so parallel compilation cannot
// leak completion order into the report.
func (l *List) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Message < b.Message
	})
}

// Errorf appends an error-severity diagnostic with a formatted message.
func (l *List) Errorf(file string, cat Category, rule, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		File:     file,
		Severity: SeverityError,
		Category: cat,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a warning-severity diagnostic with a formatted message.
func (l *List) Warnf(file string, cat Category, rule, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		File:     file,
		Severity: SeverityWarning,
		Category: cat,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
}
