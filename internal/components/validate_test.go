package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
)

func scanAndValidate(t *testing.T, body string) []diagnostics.Diagnostic {
	t.Helper()
	elems, err := Scan([]byte(body), "doc.mdx", 1, nil)
	require.NoError(t, err)
	return DefaultRegistry().Validate(elems, "doc.mdx")
}

func TestValidate_ValidDocument_NoDiagnostics(t *testing.T) {
	diags := scanAndValidate(t, `<Quiz title="Check">
<Question text="2+2?" kind="single">
<Option correct="true">4</Option>
<Option correct="false">5</Option>
</Question>
</Quiz>

<BarChart data="scores.json" xLabel="Year" />
`)
	require.Empty(t, diags)
}

func TestValidate_UnknownElement_SingleError(t *testing.T) {
	diags := scanAndValidate(t, "<PieChart data=\"x.json\" />\n")
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.SeverityError, diags[0].Severity)
	require.Equal(t, "unknown-element", diags[0].Rule)
	require.Contains(t, diags[0].Message, "PieChart")
}

func TestValidate_MissingRequiredAttribute(t *testing.T) {
	diags := scanAndValidate(t, "<BarChart xLabel=\"Year\" />\n")
	require.Len(t, diags, 1)
	require.Equal(t, "missing-attribute", diags[0].Rule)
	require.Contains(t, diags[0].Message, `"data"`)
}

func TestValidate_EnumViolation(t *testing.T) {
	diags := scanAndValidate(t, "<Callout kind=\"shout\">hi</Callout>\n")
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-attribute-value", diags[0].Rule)
	require.Contains(t, diags[0].Message, "note, warning, tip")
}

func TestValidate_UndeclaredAttribute_IsWarning(t *testing.T) {
	diags := scanAndValidate(t, "<Term id=\"slope\" color=\"red\" />\n")
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.SeverityWarning, diags[0].Severity)
	require.Equal(t, "unknown-attribute", diags[0].Rule)
}

func TestValidate_OptionOutsideQuestion_NestingError(t *testing.T) {
	diags := scanAndValidate(t, "<Option correct=\"true\">4</Option>\n")
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-nesting", diags[0].Rule)
	require.Contains(t, diags[0].Message, "<Option>")
	require.Contains(t, diags[0].Message, "<Question>")
	require.Contains(t, diags[0].Message, "top level")
}

func TestValidate_OptionInsideWrongParent_NamesFoundParent(t *testing.T) {
	diags := scanAndValidate(t, "<Quiz>\n<Option correct=\"true\">4</Option>\n</Quiz>\n")
	// Quiz has children so only the Option nesting is wrong, plus Quiz's
	// Question-less body is still structurally fine per the contract table.
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-nesting", diags[0].Rule)
	require.Contains(t, diags[0].Message, "<Quiz>")
}

func TestValidate_QuizWithoutChildren(t *testing.T) {
	diags := scanAndValidate(t, "<Quiz title=\"Empty\"></Quiz>\n")
	require.Len(t, diags, 1)
	require.Equal(t, "missing-children", diags[0].Rule)
}

func TestValidate_MultipleProblems_AllReported(t *testing.T) {
	diags := scanAndValidate(t, `<PieChart />
<BarChart />
<Callout kind="shout">x</Callout>
`)
	require.Len(t, diags, 3)
}

func TestValidate_DiagnosticsCarryPositions(t *testing.T) {
	diags := scanAndValidate(t, "text\n\n<PieChart />\n")
	require.Len(t, diags, 1)
	require.Equal(t, 3, diags[0].Line)
}
