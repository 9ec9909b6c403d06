package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/components"
)

var registry = components.DefaultRegistry()

func TestCompile_ExtractsToCWithDepths(t *testing.T) {
	body := []byte("# Algebra\n\nIntro text.\n\n## Linear Equations\n\n### Examples\n")

	doc, diags, err := Compile(body, "intro.mdx", 1, registry)
	require.NoError(t, err)
	require.Empty(t, diags)

	require.Equal(t, []Heading{
		{ID: "algebra", Text: "Algebra", Depth: 1},
		{ID: "linear-equations", Text: "Linear Equations", Depth: 2},
		{ID: "examples", Text: "Examples", Depth: 3},
	}, doc.ToC)
}

func TestCompile_RepeatedHeadings_DistinctAnchors(t *testing.T) {
	body := []byte("## Overview\n\ntext\n\n## Overview\n\ntext\n\n## Overview\n")

	doc, _, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)
	require.Equal(t, "overview", doc.ToC[0].ID)
	require.Equal(t, "overview-1", doc.ToC[1].ID)
	require.Equal(t, "overview-2", doc.ToC[2].ID)

	seen := map[string]bool{}
	for _, h := range doc.ToC {
		require.False(t, seen[h.ID], "anchor %q assigned twice", h.ID)
		seen[h.ID] = true
	}
}

func TestCompile_Idempotent_ByteIdenticalArtifacts(t *testing.T) {
	body := []byte("# Title\n\nSome *text*.\n\n<BarChart data=\"x.json\" />\n\n```go\nfmt.Println(1)\n```\n")

	docA, _, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)
	docB, _, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)

	jsonA, err := json.Marshal(docA)
	require.NoError(t, err)
	jsonB, err := json.Marshal(docB)
	require.NoError(t, err)
	require.Equal(t, jsonA, jsonB)
}

func TestCompile_CodeBlocks_BecomeCodeBlocksNotComponents(t *testing.T) {
	body := []byte("```jsx\n<Option correct=\"true\">4</Option>\n```\n")

	doc, diags, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)
	// The Option inside the fence is documentation, not an embedded element.
	require.Empty(t, diags)
	require.Empty(t, doc.Components)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, "code", doc.Blocks[0].Kind)
	require.Equal(t, "jsx", doc.Blocks[0].Language)
	require.Contains(t, doc.Blocks[0].Text, "<Option")
}

func TestCompile_InlineCode_NotScanned(t *testing.T) {
	body := []byte("Use `<Term id=\"x\" />` to mark glossary terms.\n")

	doc, diags, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Empty(t, doc.Components)
}

func TestCompile_ContractViolations_SurfaceAsDiagnostics(t *testing.T) {
	body := []byte("# Quiz time\n\n<Option correct=\"true\">4</Option>\n")

	_, diags, err := Compile(body, "quiz.mdx", 1, registry)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-nesting", diags[0].Rule)
	require.Equal(t, 3, diags[0].Line)
}

func TestCompile_MalformedMarkup_StructuredError(t *testing.T) {
	body := []byte("# Title\n\n<Quiz>\n<Question text=\"?\">\n</Question>\n")

	_, _, err := Compile(body, "articles/en/quiz.mdx", 10, registry)
	require.Error(t, err)

	perr, ok := err.(*components.ParseError)
	require.True(t, ok)
	require.Equal(t, "articles/en/quiz.mdx", perr.File)
	require.Equal(t, "unclosed-element", perr.Rule)
	// baseLine 10: body line 3 is file line 12.
	require.Equal(t, 12, perr.Line)
	require.NotEmpty(t, perr.Excerpt)
}

func TestCompile_ComponentTree_SerializedInOrder(t *testing.T) {
	body := []byte("<Quiz>\n<Question text=\"2+2?\" kind=\"single\">\n<Option correct=\"true\">4</Option>\n</Question>\n</Quiz>\n")

	doc, diags, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, doc.Components, 1)

	quiz := doc.Components[0]
	require.Equal(t, "Quiz", quiz.Name)
	require.Len(t, quiz.Children, 1)
	question := quiz.Children[0]
	require.Equal(t, []ComponentAttr{{Name: "text", Value: "2+2?"}, {Name: "kind", Value: "single"}}, question.Attrs)
	require.Len(t, question.Children, 1)
}

func TestCompile_MarkdownBlocks_CarrySource(t *testing.T) {
	body := []byte("# Title\n\nFirst paragraph.\n\n- one\n- two\n")

	doc, _, err := Compile(body, "a.mdx", 1, registry)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)
	require.Equal(t, "heading", doc.Blocks[0].Kind)
	require.Equal(t, "markdown", doc.Blocks[1].Kind)
	require.Equal(t, "First paragraph.", doc.Blocks[1].Markdown)
	require.Contains(t, doc.Blocks[2].Markdown, "- one")
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "linear-equations", slugify("Linear Equations"))
	require.Equal(t, "whats-new-2026", slugify("What's New, 2026?"))
	require.Equal(t, "løsning", slugify("Løsning"))
	require.Equal(t, "", slugify("---"))
}
