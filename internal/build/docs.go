package build

import (
	"sort"

	"git.home.luguber.info/inful/coursebuilder/internal/content"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
	"git.home.luguber.info/inful/coursebuilder/internal/search"
)

// articleDocs aggregates per-locale compiled artifacts into search article
// documents, ordered by the given slug sequence. Front documents never enter
// the search index.
func articleDocs(arts []*compiledArticle, order []string) []search.ArticleDoc {
	byStem := make(map[string]*search.ArticleDoc)
	for _, a := range arts {
		if a.stem == frontmatter.FrontSlug {
			continue
		}
		doc, ok := byStem[a.stem]
		if !ok {
			doc = &search.ArticleDoc{Slug: a.stem, Locales: make(map[string]search.ArticleMeta)}
			byStem[a.stem] = doc
		}
		doc.Locales[a.file.Locale] = search.ArticleMeta{
			Title:       a.front.Title,
			Description: a.front.Description,
			Keywords:    a.front.Keywords,
		}
	}

	out := make([]search.ArticleDoc, 0, len(byStem))
	for _, slug := range order {
		if doc, ok := byStem[slug]; ok {
			out = append(out, *doc)
			delete(byStem, slug)
		}
	}
	residual := make([]string, 0, len(byStem))
	for slug := range byStem {
		residual = append(residual, slug)
	}
	sort.Strings(residual)
	for _, slug := range residual {
		out = append(out, *byStem[slug])
	}
	return out
}

func subjectSearchDoc(e *content.Entity, arts []*compiledArticle, _ *locales.Set) search.EntityDoc {
	var order []string
	for _, cat := range e.Subject.Toc {
		order = append(order, cat.Articles...)
	}
	return search.EntityDoc{
		Kind:        string(content.KindSubject),
		Slug:        e.Subject.Slug,
		Title:       map[string]string(e.Title()),
		Description: map[string]string(e.Subject.Description),
		Keywords:    e.Keywords(),
		Articles:    articleDocs(arts, order),
	}
}

func instructorSearchDoc(e *content.Entity, arts []*compiledArticle, locs *locales.Set) search.EntityDoc {
	// Instructor names are not localized; every locale searches the same name.
	title := make(map[string]string, locs.Len())
	for _, code := range locs.Codes() {
		title[code] = e.Instructor.Name
	}
	return search.EntityDoc{
		Kind:        string(content.KindInstructor),
		Slug:        e.Instructor.Slug,
		Title:       title,
		Description: map[string]string(e.Instructor.Bio),
		Keywords:    e.Keywords(),
		Articles:    articleDocs(arts, nil),
	}
}

func systemSearchDoc(e *content.Entity, arts []*compiledArticle, _ *locales.Set) search.EntityDoc {
	return search.EntityDoc{
		Kind:        string(content.KindSystem),
		Slug:        e.System.Slug,
		Title:       map[string]string(e.Title()),
		Description: map[string]string(e.System.Description),
		Keywords:    e.Keywords(),
		Articles:    articleDocs(arts, nil),
	}
}
