// Package search builds the per-locale search indexes: flat, behavior-free
// projections of every entity and article with compiled content.
//
// Determinism contract: entries are emitted in declaration order. Entities
// come in discovery order (the sorted source walk), each entity followed by
// its articles in the order the caller assembled them (subject ToC order,
// then residual slug order). This ordering is part of the output format and
// must not change between releases.
package search

// Entry is one locale-scoped searchable record.
type Entry struct {
	ID          string   `json:"id"` // {kind}:{parentSlug?}/{slug}
	Kind        string   `json:"kind"`
	Slug        string   `json:"slug"`
	ParentSlug  string   `json:"parentSlug,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Route       string   `json:"route"`
}

// ArticleMeta is an article's locale-specific searchable metadata.
type ArticleMeta struct {
	Title       string
	Description string
	Keywords    []string
}

// ArticleDoc is one article with the locales it compiled in.
type ArticleDoc struct {
	Slug    string
	Locales map[string]ArticleMeta
}

// EntityDoc is one entity's searchable projection input.
type EntityDoc struct {
	Kind        string // subject | instructor | system
	Slug        string
	Title       map[string]string // locale → title
	Description map[string]string
	Keywords    []string
	Articles    []ArticleDoc // declaration order; front documents excluded
}

// Build produces the search index for one locale. Articles without compiled
// content in the locale are skipped; entities always appear because their
// configuration is locale-complete by schema invariant.
func Build(locale string, entities []EntityDoc) []Entry {
	entries := make([]Entry, 0, len(entities))
	for _, e := range entities {
		entries = append(entries, Entry{
			ID:          e.Kind + ":" + e.Slug,
			Kind:        e.Kind,
			Slug:        e.Slug,
			Title:       e.Title[locale],
			Description: e.Description[locale],
			Keywords:    e.Keywords,
			Route:       "/" + e.Slug,
		})
		for _, a := range e.Articles {
			meta, compiled := a.Locales[locale]
			if !compiled {
				continue
			}
			entries = append(entries, Entry{
				ID:          "article:" + e.Slug + "/" + a.Slug,
				Kind:        "article",
				Slug:        a.Slug,
				ParentSlug:  e.Slug,
				Title:       meta.Title,
				Description: meta.Description,
				Keywords:    meta.Keywords,
				Route:       "/" + e.Slug + "/" + a.Slug,
			})
		}
	}
	return entries
}
