package relations

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/content"
)

func instructorEntity(slug, name string) *content.Entity {
	return &content.Entity{
		Source: content.Source{Kind: content.KindInstructor},
		Instructor: &content.InstructorConfig{
			Slug:  slug,
			Name:  name,
			Title: content.LocalizedString{"en": "Mathematician", "nb": "Matematiker"},
		},
	}
}

func TestResolveInstructors_PreservesDeclarationOrder(t *testing.T) {
	instructors := map[string]*content.Entity{
		"ada":   instructorEntity("ada", "Ada Lovelace"),
		"grace": instructorEntity("grace", "Grace Hopper"),
	}

	refs, missing := ResolveInstructors("algebra", []string{"grace", "ada"}, instructors)
	require.Empty(t, missing)
	require.Len(t, refs, 2)
	require.Equal(t, "grace", refs[0].Slug)
	require.Equal(t, "Grace Hopper", refs[0].Name)
	require.Equal(t, "ada", refs[1].Slug)
}

func TestResolveInstructors_UnknownSlug_DroppedAndReported(t *testing.T) {
	instructors := map[string]*content.Entity{
		"ada": instructorEntity("ada", "Ada Lovelace"),
	}

	refs, missing := ResolveInstructors("algebra", []string{"ada", "ghost"}, instructors)
	require.Len(t, refs, 1)
	require.Equal(t, "ada", refs[0].Slug)
	require.Equal(t, []string{"ghost"}, missing)
}

func TestResolveInstructors_EmptyDeclaration_EmptyNonNil(t *testing.T) {
	refs, missing := ResolveInstructors("algebra", nil, nil)
	require.NotNil(t, refs)
	require.Empty(t, refs)
	require.Empty(t, missing)
}

func TestResolveSubjects_ResolvesTitles(t *testing.T) {
	subjects := map[string]*content.Entity{
		"algebra": {
			Source: content.Source{Kind: content.KindSubject},
			Subject: &content.SubjectConfig{
				Slug:  "algebra",
				Title: content.LocalizedString{"en": "Algebra", "nb": "Algebra"},
			},
		},
	}

	refs, missing := ResolveSubjects("ada", []string{"algebra", "ghost"}, subjects)
	require.Len(t, refs, 1)
	require.Equal(t, "Algebra", refs[0].Title["en"])
	require.Equal(t, []string{"ghost"}, missing)
}
