package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
)

var testLocales = locales.MustParse([]string{"en", "nb"})

var subjectLike = Descriptor{
	Name: "subject",
	Fields: []Field{
		{Name: "slug", Kind: String, Required: true},
		{Name: "title", Kind: LocalizedString, Required: true},
		{Name: "difficulty", Kind: String, Enum: []string{"beginner", "intermediate", "advanced"}},
		{Name: "instructors", Kind: StringList},
		{Name: "order", Kind: Number},
		{Name: "toc", Kind: ObjectList, Fields: []Field{
			{Name: "category", Kind: String, Required: true},
			{Name: "articles", Kind: StringList, Required: true},
		}},
	},
}

func TestValidate_ValidConfig_NoDiagnostics(t *testing.T) {
	raw := map[string]any{
		"slug":        "algebra",
		"title":       map[string]any{"en": "Algebra", "nb": "Algebra"},
		"difficulty":  "beginner",
		"instructors": []any{"ada", "grace"},
		"order":       float64(3),
		"toc": []any{
			map[string]any{"category": "Basics", "articles": []any{"intro", "equations"}},
		},
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	require.Empty(t, diags)
}

func TestValidate_MissingRequiredField_ReportsPath(t *testing.T) {
	raw := map[string]any{
		"title": map[string]any{"en": "Algebra", "nb": "Algebra"},
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.SeverityError, diags[0].Severity)
	require.Contains(t, diags[0].Message, "slug")
	require.Equal(t, "required-field", diags[0].Rule)
}

func TestValidate_LocalizedString_NamesMissingLocales(t *testing.T) {
	raw := map[string]any{
		"slug":  "algebra",
		"title": map[string]any{"en": "Algebra"},
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	require.Len(t, diags, 1)
	require.Equal(t, "missing-locales", diags[0].Rule)
	require.Contains(t, diags[0].Message, "nb")
}

func TestValidate_EnumViolation_ReportsAllowedValues(t *testing.T) {
	raw := map[string]any{
		"slug":       "algebra",
		"title":      map[string]any{"en": "Algebra", "nb": "Algebra"},
		"difficulty": "impossible",
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-enum-value", diags[0].Rule)
	require.Contains(t, diags[0].Message, "beginner")
}

func TestValidate_NestedObjectList_ReportsIndexedPath(t *testing.T) {
	raw := map[string]any{
		"slug":  "algebra",
		"title": map[string]any{"en": "Algebra", "nb": "Algebra"},
		"toc": []any{
			map[string]any{"category": "Basics", "articles": []any{"intro"}},
			map[string]any{"articles": "not-a-list"},
		},
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	require.Len(t, diags, 2)
	require.Contains(t, diags[0].Message, "toc[1].category")
	require.Contains(t, diags[1].Message, "toc[1].articles")
}

func TestValidate_UnknownField_IsWarning(t *testing.T) {
	raw := map[string]any{
		"slug":   "algebra",
		"title":  map[string]any{"en": "Algebra", "nb": "Algebra"},
		"color":  "purple",
		"weight": float64(2),
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	require.Len(t, diags, 2)
	for _, d := range diags {
		require.Equal(t, diagnostics.SeverityWarning, d.Severity)
		require.Equal(t, "unknown-field", d.Rule)
	}
	// Unknown fields are reported in sorted order for determinism.
	require.Contains(t, diags[0].Message, "color")
	require.Contains(t, diags[1].Message, "weight")
}

func TestValidate_CollectsAllDiagnosticsForFile(t *testing.T) {
	raw := map[string]any{
		"slug":       float64(7),
		"difficulty": "impossible",
	}

	diags := Validate(raw, subjectLike, testLocales, "config.json")
	// wrong type, missing title, enum violation: all reported together.
	require.Len(t, diags, 3)
}

func TestValidate_BrokenDescriptor_Panics(t *testing.T) {
	bad := Descriptor{Name: "bad", Fields: []Field{
		{Name: "level", Kind: Number, Enum: []string{"1"}},
	}}

	require.Panics(t, func() {
		Validate(map[string]any{}, bad, testLocales, "config.json")
	})
}
