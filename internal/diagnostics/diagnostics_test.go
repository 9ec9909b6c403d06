package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList_HasErrors_OnlyWarnings(t *testing.T) {
	var l List
	l.Warnf("a.md", CategoryComponent, "unknown-attribute", "attribute %q is not declared", "color")

	require.False(t, l.HasErrors())
	require.Equal(t, 0, l.ErrorCount())
	require.Equal(t, 1, l.WarningCount())
}

func TestList_Sort_OrdersByFileThenLine(t *testing.T) {
	var l List
	l.Add(
		Diagnostic{File: "b.md", Line: 3, Severity: SeverityError},
		Diagnostic{File: "a.md", Line: 9, Severity: SeverityError},
		Diagnostic{File: "a.md", Line: 2, Severity: SeverityWarning},
	)
	l.Sort()

	items := l.Items()
	require.Equal(t, "a.md", items[0].File)
	require.Equal(t, 2, items[0].Line)
	require.Equal(t, "a.md", items[1].File)
	require.Equal(t, 9, items[1].Line)
	require.Equal(t, "b.md", items[2].File)
}

func TestDiagnostic_String_IncludesLocationAndRule(t *testing.T) {
	d := Diagnostic{
		File:     "subjects/algebra/articles/en/intro.mdx",
		Line:     4,
		Column:   7,
		Severity: SeverityError,
		Category: CategoryStructure,
		Rule:     "slug-filename-mismatch",
		Message:  "frontmatter slug does not match filename",
	}

	s := d.String()
	require.Contains(t, s, "intro.mdx:4:7")
	require.Contains(t, s, "structure/slug-filename-mismatch")
	require.Contains(t, s, "ERROR")
}

func TestTextFormatter_SummarizesCounts(t *testing.T) {
	var l List
	l.Errorf("a.md", CategoryStructure, "route-collision", "slug %q already registered", "algebra")
	l.Warnf("b.md", CategoryRelation, "unknown-instructor", "instructor %q not found", "ghost")

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&buf, &l, "/content"))

	out := buf.String()
	require.Contains(t, out, "1 error (blocks build)")
	require.Contains(t, out, "1 warning (should fix)")
	require.Contains(t, out, "route-collision")
}

func TestJSONFormatter_RoundTrips(t *testing.T) {
	var l List
	l.Errorf("a.md", CategoryMarkup, "unclosed-element", "element <Quiz> is never closed")

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&buf, &l, "/content"))
	require.Contains(t, buf.String(), `"rule": "unclosed-element"`)
	require.Contains(t, buf.String(), `"error_count": 1`)
}
