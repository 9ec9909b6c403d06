// Package relations resolves declared associations between entities into
// denormalized views.
//
// Relationships are soft: instructor and subject repositories may be
// maintained by different teams on different release cadences, so a
// reference to an entity missing from this build degrades to a logged
// warning instead of blocking every dependent's build.
package relations

import (
	"log/slog"

	"git.home.luguber.info/inful/coursebuilder/internal/content"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// InstructorRef is a subject's denormalized view of one of its instructors.
type InstructorRef struct {
	Slug  string                  `json:"slug"`
	Name  string                  `json:"name"`
	Title content.LocalizedString `json:"title"`
}

// SubjectRef is an instructor's denormalized view of one of their subjects.
type SubjectRef struct {
	Slug  string                  `json:"slug"`
	Title content.LocalizedString `json:"title"`
}

// ResolveInstructors maps a subject's declared instructor slugs to resolved
// references, preserving declaration order. Unknown slugs are dropped with a
// warning and returned so callers can report them.
func ResolveInstructors(subjectSlug string, declared []string, instructors map[string]*content.Entity) ([]InstructorRef, []string) {
	refs := make([]InstructorRef, 0, len(declared))
	var missing []string
	for _, slug := range declared {
		entity, ok := instructors[slug]
		if !ok {
			slog.Warn("Subject references unknown instructor, dropping",
				logfields.Kind("instructor"), logfields.Entity(subjectSlug), logfields.Slug(slug))
			missing = append(missing, slug)
			continue
		}
		refs = append(refs, InstructorRef{
			Slug:  slug,
			Name:  entity.Instructor.Name,
			Title: entity.Instructor.Title,
		})
	}
	return refs, missing
}

// ResolveSubjects maps an instructor's declared subject slugs to resolved
// references, preserving declaration order. Unknown slugs are dropped with a
// warning and returned so callers can report them.
func ResolveSubjects(instructorSlug string, declared []string, subjects map[string]*content.Entity) ([]SubjectRef, []string) {
	refs := make([]SubjectRef, 0, len(declared))
	var missing []string
	for _, slug := range declared {
		entity, ok := subjects[slug]
		if !ok {
			slog.Warn("Instructor references unknown subject, dropping",
				logfields.Kind("subject"), logfields.Entity(instructorSlug), logfields.Slug(slug))
			missing = append(missing, slug)
			continue
		}
		refs = append(refs, SubjectRef{
			Slug:  slug,
			Title: entity.Subject.Title,
		})
	}
	return refs, missing
}
