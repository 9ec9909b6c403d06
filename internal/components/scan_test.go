package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScan_SelfClosingElement_ParsesNameAndAttrs(t *testing.T) {
	body := []byte("Some text.\n\n<BarChart data=\"scores.json\" xLabel=\"Year\" />\n")

	elems, err := Scan(body, "intro.mdx", 1, nil)
	require.NoError(t, err)
	require.Len(t, elems, 1)

	el := elems[0]
	require.Equal(t, "BarChart", el.Name)
	require.True(t, el.SelfClosing)
	require.Equal(t, 3, el.Line)
	require.Equal(t, 1, el.Column)

	// Attribute case must survive the scan; the contract is case-sensitive.
	v, ok := el.Attr("xLabel")
	require.True(t, ok)
	require.Equal(t, "Year", v)
}

func TestScan_NestedElements_BuildsParentChain(t *testing.T) {
	body := []byte("<Quiz>\n<Question text=\"2+2?\">\n<Option correct=\"true\">4</Option>\n</Question>\n</Quiz>\n")

	elems, err := Scan(body, "quiz.mdx", 1, nil)
	require.NoError(t, err)
	require.Len(t, elems, 1)

	quiz := elems[0]
	require.Equal(t, "Quiz", quiz.Name)
	require.Len(t, quiz.Children, 1)

	question := quiz.Children[0]
	require.Equal(t, "Question", question.Name)
	require.Equal(t, quiz, question.Parent)
	require.Len(t, question.Children, 1)
	require.Equal(t, "Option", question.Children[0].Name)
}

func TestScan_LowercaseHTMLTags_Ignored(t *testing.T) {
	body := []byte("<div>\n<em>hi</em>\n<Term id=\"slope\" />\n</div>\n")

	elems, err := Scan(body, "a.mdx", 1, nil)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	require.Equal(t, "Term", elems[0].Name)
	require.Nil(t, elems[0].Parent)
}

func TestScan_UnclosedElement_ParseErrorWithExcerpt(t *testing.T) {
	body := []byte("# Heading\n\n<Quiz>\n<Question text=\"?\">\n</Question>\n")

	_, err := Scan(body, "quiz.mdx", 1, nil)
	require.Error(t, err)

	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, "unclosed-element", perr.Rule)
	require.Equal(t, "quiz.mdx", perr.File)
	require.Equal(t, 3, perr.Line)
	require.Contains(t, perr.Message, "<Quiz>")
	require.Contains(t, perr.Excerpt, ">    3 | <Quiz>")
}

func TestScan_StrayClosingTag_ParseError(t *testing.T) {
	body := []byte("text\n</Question>\n")

	_, err := Scan(body, "a.mdx", 1, nil)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, "unexpected-closing-tag", perr.Rule)
	require.Equal(t, 2, perr.Line)
}

func TestScan_MismatchedClosingTag_ParseError(t *testing.T) {
	body := []byte("<Quiz>\n</Question>\n")

	_, err := Scan(body, "a.mdx", 1, nil)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, "mismatched-closing-tag", perr.Rule)
	require.Contains(t, perr.Message, "</Question>")
	require.Contains(t, perr.Message, "<Quiz>")
}

func TestScan_SkipRanges_IgnoresTagsInCodeBlocks(t *testing.T) {
	body := []byte("```\n<Option>\n```\n<Term id=\"x\" />\n")
	// The fenced block spans bytes [0, 13): "```\n<Option>\n```\n" minus the
	// closing fence; mask the whole fence for the test.
	skip := []Range{{Start: 0, End: 17}}

	elems, err := Scan(body, "a.mdx", 1, skip)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	require.Equal(t, "Term", elems[0].Name)
	require.Equal(t, 4, elems[0].Line)
}

func TestScan_BaseLineOffset_ShiftsPositions(t *testing.T) {
	body := []byte("<Term id=\"x\" />\n")

	elems, err := Scan(body, "a.mdx", 6, nil)
	require.NoError(t, err)
	require.Equal(t, 6, elems[0].Line)
}

func TestScan_SameSourceTwice_IdenticalResult(t *testing.T) {
	body := []byte("<Quiz>\n<Question text=\"?\" kind=\"single\">\n<Option correct=\"true\">4</Option>\n</Question>\n</Quiz>\n")

	a, err := Scan(body, "a.mdx", 1, nil)
	require.NoError(t, err)
	b, err := Scan(body, "a.mdx", 1, nil)
	require.NoError(t, err)
	require.Equal(t, describe(a), describe(b))
}

func describe(elems []*Element) []string {
	var out []string
	var walk func(el *Element)
	walk = func(el *Element) {
		out = append(out, el.Name)
		for _, a := range el.Attrs {
			out = append(out, a.Name+"="+a.Value)
		}
		for _, c := range el.Children {
			walk(c)
		}
	}
	for _, el := range elems {
		walk(el)
	}
	return out
}
