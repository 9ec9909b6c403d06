// Package routes tracks the single global namespace of public slugs.
//
// The registry is an explicit object passed through the build, never a
// package-level singleton, so concurrent builds and tests cannot share state.
package routes

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/util/sets"
)

// Kind is the entity type owning a route registration.
type Kind string

const (
	KindSubject    Kind = "subject"
	KindInstructor Kind = "instructor"
	KindSystem     Kind = "system"
	KindArticle    Kind = "article"
)

// Reserved is the fixed deny-list of slugs content can never claim: the
// runtime's search and API namespaces plus static asset prefixes.
var Reserved = sets.New("search", "api", "assets", "static", "_front")

// Registration maps a public slug to its owning entity type and source.
type Registration struct {
	Slug   string `json:"slug"`
	Kind   Kind   `json:"kind"`
	Source string `json:"source"` // content-root-relative path for diagnostics
}

// ViolationKind distinguishes the two mutually exclusive registry failures.
type ViolationKind string

const (
	ViolationReserved  ViolationKind = "reserved"
	ViolationCollision ViolationKind = "collision"
)

// Violation records one rejected registration. For collisions, First is the
// registration that won the slot and Second the rejected party.
type Violation struct {
	Kind   ViolationKind
	Slug   string
	First  *Registration // collision only
	Second Registration
}

// Registry is the global slug namespace tracker for one build.
type Registry struct {
	entries    map[string]*Registration
	order      []string
	violations []Violation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Register claims slug for the given entity. Registration order is discovery
// order: the first registrant wins the slot and later claimants are recorded
// as the colliding party. Violations accumulate; nothing short-circuits, so
// authors see the complete conflict list in one run.
func (r *Registry) Register(slug string, kind Kind, source string) {
	reg := Registration{Slug: slug, Kind: kind, Source: source}
	if Reserved.Has(slug) {
		r.violations = append(r.violations, Violation{
			Kind: ViolationReserved, Slug: slug, Second: reg,
		})
		return
	}
	if first, taken := r.entries[slug]; taken {
		r.violations = append(r.violations, Violation{
			Kind: ViolationCollision, Slug: slug, First: first, Second: reg,
		})
		return
	}
	r.entries[slug] = &reg
	r.order = append(r.order, slug)
}

// Lookup returns the registration owning slug, if any.
func (r *Registry) Lookup(slug string) (*Registration, bool) {
	reg, ok := r.entries[slug]
	return reg, ok
}

// Violations returns every rejected registration in occurrence order.
func (r *Registry) Violations() []Violation {
	return r.violations
}

// RouteMap returns the slug → kind table, with slugs sorted for deterministic
// serialization.
func (r *Registry) RouteMap() map[string]Kind {
	out := make(map[string]Kind, len(r.entries))
	for slug, reg := range r.entries {
		out[slug] = reg.Kind
	}
	return out
}

// Slugs returns registered slugs in sorted order.
func (r *Registry) Slugs() []string {
	out := make([]string, 0, len(r.entries))
	for slug := range r.entries {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Diagnostics converts the accumulated violations into structural
// diagnostics for batch reporting.
func (r *Registry) Diagnostics() []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, 0, len(r.violations))
	for _, v := range r.violations {
		switch v.Kind {
		case ViolationReserved:
			out = append(out, diagnostics.Diagnostic{
				File:     v.Second.Source,
				Severity: diagnostics.SeverityError,
				Category: diagnostics.CategoryStructure,
				Rule:     "reserved-slug",
				Message:  fmt.Sprintf("slug %q is reserved and can never be claimed by content", v.Slug),
			})
		case ViolationCollision:
			out = append(out, diagnostics.Diagnostic{
				File:     v.Second.Source,
				Severity: diagnostics.SeverityError,
				Category: diagnostics.CategoryStructure,
				Rule:     "route-collision",
				Message: fmt.Sprintf("slug %q already registered by %s %q; colliding registration from %s %q",
					v.Slug, v.First.Kind, v.First.Source, v.Second.Kind, v.Second.Source),
			})
		}
	}
	return out
}

// CheckCategories verifies, per subject, that no article slug is assigned to
// two categories of the same subject's table of contents. This check is
// scoped to one subject and independent of the global namespace.
func CheckCategories(subjectSlug, source string, categories []Category) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	owner := make(map[string]string)
	for _, cat := range categories {
		for _, article := range cat.Articles {
			if prev, dup := owner[article]; dup {
				diags = append(diags, diagnostics.Diagnostic{
					File:     source,
					Severity: diagnostics.SeverityError,
					Category: diagnostics.CategoryStructure,
					Rule:     "duplicate-article-in-category",
					Message: fmt.Sprintf("article %q of subject %q is assigned to both category %q and category %q",
						article, subjectSlug, prev, cat.Name),
				})
				continue
			}
			owner[article] = cat.Name
		}
	}
	return diags
}

// Category is one named group of article slugs in a subject's ToC.
type Category struct {
	Name     string
	Articles []string
}
