// Package build orchestrates the full content pipeline: discovery, schema
// validation, route registration, document compilation, relationship
// resolution, search index generation, and manifest assembly.
//
// Stages run strictly in sequence; each consumes the complete output of the
// previous one. Document compilation is the only parallel section, and its
// diagnostics are merged in sorted file order so worker scheduling can never
// change a build report.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"git.home.luguber.info/inful/coursebuilder/internal/components"
	"git.home.luguber.info/inful/coursebuilder/internal/content"
	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/coursebuilder/internal/gitinfo"
	"git.home.luguber.info/inful/coursebuilder/internal/history"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/manifest"
	"git.home.luguber.info/inful/coursebuilder/internal/metrics"
	"git.home.luguber.info/inful/coursebuilder/internal/relations"
	"git.home.luguber.info/inful/coursebuilder/internal/routes"
	"git.home.luguber.info/inful/coursebuilder/internal/search"
)

// Options configures one build invocation.
type Options struct {
	ContentRoot string
	OutputDir   string
	Locales     *locales.Set
	Exclude     []string // doublestar patterns for source dirs to skip
	Jobs        int      // compile workers; defaults to GOMAXPROCS
	Registry    components.Registry
	History     *history.Store   // optional build history
	Recorder    metrics.Recorder // optional metrics sink
}

// Result is the outcome of one build invocation.
type Result struct {
	Manifest    *manifest.Manifest
	Diagnostics *diagnostics.List
	Unchanged   bool // content hash matches the previous recorded build
}

// Run executes the full pipeline. Validation problems land in
// Result.Diagnostics; the returned error is reserved for environmental
// failures (unreadable files, unwritable output directory).
//
// No artifact is written when any error-severity diagnostic exists.
func Run(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()
	if opts.Locales == nil {
		opts.Locales = locales.MustParse(locales.Default)
	}
	if opts.Registry == nil {
		opts.Registry = components.DefaultRegistry()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	result, err := run(ctx, opts)

	status := "success"
	if err != nil || (result != nil && result.Diagnostics.HasErrors()) {
		status = "failed"
	}
	opts.Recorder.BuildCompleted(status, time.Since(started))
	return result, err
}

func run(ctx context.Context, opts Options) (*Result, error) {
	diags := &diagnostics.List{}
	result := &Result{Diagnostics: diags}

	// Stage 1: discovery + schema validation.
	slog.Info("Discovering content sources", logfields.Stage("discover"), logfields.Path(opts.ContentRoot))
	sources, err := content.NewDiscovery(opts.ContentRoot, opts.Exclude).Discover()
	if err != nil {
		return nil, err
	}
	slog.Info("Content sources discovered", slog.Int("count", len(sources)))

	entities := make([]*content.Entity, 0, len(sources))
	for _, src := range sources {
		entity, srcDiags, err := content.Load(src, opts.Locales)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Rel, err)
		}
		diags.Add(srcDiags...)
		if entity != nil {
			entities = append(entities, entity)
		}
	}
	// Schema errors abort before any downstream stage: nothing meaningful
	// can be compiled or registered against an invalid configuration.
	if diags.HasErrors() {
		diags.Sort()
		return result, nil
	}

	// Stage 2: route registration, batched violation reporting.
	registry := routes.NewRegistry()
	registerRoutes(registry, entities)
	diags.Add(registry.Diagnostics()...)
	for _, e := range entities {
		if e.Source.Kind == content.KindSubject {
			diags.Add(routes.CheckCategories(e.Subject.Slug, e.Source.ConfigPath, tocCategories(e.Subject))...)
		}
	}

	// Stage 3: document compilation (parallel), driving the component
	// contract validation in the same pass.
	compiled, compileDiags, err := compileAll(ctx, entities, opts)
	if err != nil {
		return nil, err
	}
	diags.Merge(compileDiags)

	for _, e := range entities {
		missingTocArticles(e, diags)
	}

	// Stage 4: relationship resolution (soft; warnings only, logged).
	subjects := entitiesByKind(entities, content.KindSubject)
	instructors := entitiesByKind(entities, content.KindInstructor)

	// Stage 5 + 6: search indexes and manifest assembly.
	m := manifest.New(opts.Locales.Codes())
	for _, src := range sourcesOf(entities) {
		m.Inputs = append(m.Inputs, manifest.SourceInput{
			Path:   src.Rel,
			Kind:   string(src.Kind),
			Commit: gitinfo.HeadCommit(src.Dir),
		})
	}
	m.Routes = registry.RouteMap()

	entityDocs := make([]search.EntityDoc, 0, len(entities))
	for _, e := range entities {
		arts := compiled.articlesOf(e)
		switch e.Source.Kind {
		case content.KindSubject:
			refs, missing := relations.ResolveInstructors(e.Subject.Slug, e.Subject.Instructors, instructors)
			for _, slug := range missing {
				diags.Warnf(e.Source.ConfigPath, diagnostics.CategoryRelation, "unknown-instructor",
					"subject %q references unknown instructor %q", e.Subject.Slug, slug)
			}
			entry := &manifest.SubjectEntry{
				Slug:        e.Subject.Slug,
				Title:       e.Subject.Title,
				Description: e.Subject.Description,
				Difficulty:  e.Subject.Difficulty,
				Instructors: refs,
				Articles:    articleInfos(arts),
			}
			for _, cat := range e.Subject.Toc {
				entry.Categories = append(entry.Categories, manifest.CategoryEntry{
					Name: cat.Category, Articles: cat.Articles,
				})
			}
			annotateCategories(entry.Articles, e.Subject.Toc)
			entry.FrontLocales, entry.FrontDigests = frontInfo(arts)
			m.Subjects[e.Subject.Slug] = entry
			entityDocs = append(entityDocs, subjectSearchDoc(e, arts, opts.Locales))

		case content.KindInstructor:
			refs, missing := relations.ResolveSubjects(e.Instructor.Slug, e.Instructor.Subjects, subjects)
			for _, slug := range missing {
				diags.Warnf(e.Source.ConfigPath, diagnostics.CategoryRelation, "unknown-subject",
					"instructor %q references unknown subject %q", e.Instructor.Slug, slug)
			}
			entry := &manifest.InstructorEntry{
				Slug:     e.Instructor.Slug,
				Name:     e.Instructor.Name,
				Title:    e.Instructor.Title,
				Bio:      e.Instructor.Bio,
				Website:  e.Instructor.Website,
				Subjects: refs,
				Articles: articleInfos(arts),
			}
			entry.FrontLocales, entry.FrontDigests = frontInfo(arts)
			m.Instructors[e.Instructor.Slug] = entry
			entityDocs = append(entityDocs, instructorSearchDoc(e, arts, opts.Locales))

		case content.KindSystem:
			entry := &manifest.SystemEntry{
				Slug:        e.System.Slug,
				Title:       e.System.Title,
				Description: e.System.Description,
				Articles:    articleInfos(arts),
			}
			entry.FrontLocales, entry.FrontDigests = frontInfo(arts)
			m.System[e.System.Slug] = entry
			entityDocs = append(entityDocs, systemSearchDoc(e, arts, opts.Locales))
		}
	}

	indexes := make(map[string][]search.Entry, opts.Locales.Len())
	for _, locale := range opts.Locales.Codes() {
		indexes[locale] = search.Build(locale, entityDocs)
		slog.Debug("Search index assembled",
			logfields.Stage("search"), logfields.Locale(locale), slog.Int("entries", len(indexes[locale])))
	}

	m.ContentHash, err = m.ComputeHash()
	if err != nil {
		return nil, err
	}
	result.Manifest = m

	diags.Sort()
	if diags.HasErrors() {
		slog.Error("Build failed validation",
			slog.Int("errors", diags.ErrorCount()),
			slog.Int("warnings", diags.WarningCount()))
		return result, nil
	}

	// Stage 7: write all artifacts into a clean output directory. Never
	// replace a previous output on a cancelled run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.OutputDir != "" {
		writer := newWriter(opts.OutputDir)
		if err := writer.writeAll(m, compiled, indexes); err != nil {
			return nil, err
		}
		slog.Info("Build artifacts written",
			logfields.Stage("write"), logfields.Path(opts.OutputDir), logfields.Hash(m.ContentHash))
	}

	if opts.History != nil {
		result.Unchanged = recordHistory(ctx, opts.History, m)
	}
	return result, nil
}

// recordHistory appends the build to the history store and reports whether
// the content hash matches the previous build's.
func recordHistory(ctx context.Context, store *history.Store, m *manifest.Manifest) bool {
	unchanged := false
	if prev, ok, err := store.Latest(ctx); err != nil {
		slog.Warn("Failed to read build history", logfields.Error(err))
	} else if ok && prev.ContentHash == m.ContentHash {
		unchanged = true
		slog.Info("Content unchanged since previous build", logfields.Hash(m.ContentHash))
	}
	if err := store.Append(ctx, history.Record{
		BuildID:     m.ID,
		ContentHash: m.ContentHash,
		Status:      "success",
		DurationMS:  time.Since(m.GeneratedAt).Milliseconds(),
	}); err != nil {
		slog.Warn("Failed to record build history", logfields.Error(err))
	}
	return unchanged
}

// registerRoutes claims the global namespace: entity slugs first, then every
// non-front article slug, all in discovery order.
func registerRoutes(registry *routes.Registry, entities []*content.Entity) {
	for _, e := range entities {
		registry.Register(e.Slug(), routeKind(e.Source.Kind), e.Source.ConfigPath)
	}
	for _, e := range entities {
		seen := map[string]bool{}
		for _, a := range e.Articles {
			if a.Stem == frontmatter.FrontSlug || seen[a.Stem] {
				continue
			}
			seen[a.Stem] = true
			registry.Register(a.Stem, routes.KindArticle, a.Rel)
		}
	}
}

func routeKind(kind content.Kind) routes.Kind {
	switch kind {
	case content.KindSubject:
		return routes.KindSubject
	case content.KindInstructor:
		return routes.KindInstructor
	case content.KindSystem:
		return routes.KindSystem
	}
	return routes.Kind(kind)
}

// missingTocArticles reports, per subject, every ToC-declared article slug
// with no source file in any locale. A partial locale set is a
// renderer-level fallback concern and stays out of the build contract.
func missingTocArticles(e *content.Entity, diags *diagnostics.List) {
	if e.Source.Kind != content.KindSubject {
		return
	}
	present := map[string]bool{}
	for _, a := range e.Articles {
		present[a.Stem] = true
	}
	for _, cat := range e.Subject.Toc {
		for _, slug := range cat.Articles {
			if !present[slug] {
				diags.Errorf(e.Source.ConfigPath, diagnostics.CategoryStructure, "missing-article",
					"article %q in category %q has no source file in any locale", slug, cat.Category)
			}
		}
	}
}

func tocCategories(cfg *content.SubjectConfig) []routes.Category {
	out := make([]routes.Category, 0, len(cfg.Toc))
	for _, cat := range cfg.Toc {
		out = append(out, routes.Category{Name: cat.Category, Articles: cat.Articles})
	}
	return out
}

func entitiesByKind(entities []*content.Entity, kind content.Kind) map[string]*content.Entity {
	out := make(map[string]*content.Entity)
	for _, e := range entities {
		if e.Source.Kind == kind {
			out[e.Slug()] = e
		}
	}
	return out
}

func sourcesOf(entities []*content.Entity) []content.Source {
	out := make([]content.Source, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Source)
	}
	return out
}

// articleInfos aggregates compiled per-locale artifacts into the manifest's
// per-article view. Front documents are excluded; they live on the entity
// entry's FrontLocales instead.
func articleInfos(arts []*compiledArticle) map[string]*manifest.ArticleInfo {
	out := make(map[string]*manifest.ArticleInfo)
	for _, a := range arts {
		if a.stem == frontmatter.FrontSlug {
			continue
		}
		info, ok := out[a.stem]
		if !ok {
			info = &manifest.ArticleInfo{
				Slug:    a.stem,
				Titles:  map[string]string{},
				Digests: map[string]string{},
			}
			out[a.stem] = info
		}
		info.Locales = append(info.Locales, a.file.Locale)
		info.Titles[a.file.Locale] = a.front.Title
		info.Digests[a.file.Locale] = a.digest()
	}
	for _, info := range out {
		sort.Strings(info.Locales)
	}
	return out
}

func annotateCategories(infos map[string]*manifest.ArticleInfo, toc []content.TocCategory) {
	for _, cat := range toc {
		for _, slug := range cat.Articles {
			if info, ok := infos[slug]; ok {
				info.Category = cat.Category
			}
		}
	}
}

// frontInfo collects the locales a front document compiled in and its
// per-locale content digests.
func frontInfo(arts []*compiledArticle) ([]string, map[string]string) {
	var locs []string
	digests := map[string]string{}
	for _, a := range arts {
		if a.stem == frontmatter.FrontSlug {
			locs = append(locs, a.file.Locale)
			digests[a.file.Locale] = a.digest()
		}
	}
	sort.Strings(locs)
	if len(digests) == 0 {
		return locs, nil
	}
	return locs, digests
}
