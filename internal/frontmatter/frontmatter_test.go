package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, bodyLine, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
	require.Equal(t, 1, bodyLine)
}

func TestSplit_YAMLFrontmatter_SplitsAndTracksBodyLine(t *testing.T) {
	input := []byte("---\ntitle: Intro\nslug: intro\n---\n# Title\n")

	fm, body, had, bodyLine, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Intro\nslug: intro\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
	// ---, two fields, --- : body starts on line 5.
	require.Equal(t, 5, bodyLine)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, _, _, err := Split([]byte("---\ntitle: Intro\n# Title\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_Splits(t *testing.T) {
	input := []byte("---\r\ntitle: Intro\r\n---\r\n# Title\r\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Intro\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestParse_DecodesTypedFields(t *testing.T) {
	art, err := Parse([]byte("title: Intro\nslug: intro\ndifficulty: beginner\nreadTime: 7\nkeywords: [math, basics]\n"))
	require.NoError(t, err)
	require.Equal(t, "Intro", art.Title)
	require.Equal(t, "intro", art.Slug)
	require.Equal(t, 7, art.ReadTime)
	require.Equal(t, []string{"math", "basics"}, art.Keywords)
}

func TestValidate_SlugFilenameMismatch(t *testing.T) {
	art := &Article{Title: "Intro", Slug: "introduction"}

	diags := art.Validate("articles/en/intro.mdx", "intro")
	require.Len(t, diags, 1)
	require.Equal(t, "slug-filename-mismatch", diags[0].Rule)
	require.Contains(t, diags[0].Message, "frontmatter slug does not match filename")
}

func TestValidate_FrontDocument_SkipsSlugCheck(t *testing.T) {
	art := &Article{Title: "Landing"}

	diags := art.Validate("articles/en/_front.mdx", FrontSlug)
	require.Empty(t, diags)
}

func TestValidate_InvalidDifficulty(t *testing.T) {
	art := &Article{Title: "Intro", Slug: "intro", Difficulty: "wizard"}

	diags := art.Validate("articles/en/intro.mdx", "intro")
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-difficulty", diags[0].Rule)
}

func TestValidate_MissingTitleAndSlug_BothReported(t *testing.T) {
	art := &Article{}

	diags := art.Validate("articles/en/intro.mdx", "intro")
	require.Len(t, diags, 2)
}

func TestValidSlug(t *testing.T) {
	require.True(t, ValidSlug("linear-equations"))
	require.True(t, ValidSlug("algebra2"))
	require.False(t, ValidSlug("Linear"))
	require.False(t, ValidSlug("linear_equations"))
	require.False(t, ValidSlug("-linear"))
	require.False(t, ValidSlug(""))
}
