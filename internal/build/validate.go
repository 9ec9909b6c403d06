package build

import (
	"context"
	"fmt"
	"runtime"

	"git.home.luguber.info/inful/coursebuilder/internal/components"
	"git.home.luguber.info/inful/coursebuilder/internal/content"
	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
	"git.home.luguber.info/inful/coursebuilder/internal/routes"
)

// ValidateTypes is the accepted vocabulary of the validate command's --type
// flag. "teacher" points at one instructor directory, "teachers" at a parent
// directory holding many; an empty type treats the target as a full content
// root.
var ValidateTypes = []string{"subject", "teacher", "teachers", "system"}

// Validate runs every validation stage over the target directory without
// writing any artifact. Cross-entity relationship warnings are skipped when
// validating a single entity, since its counterparts are not in scope.
func Validate(ctx context.Context, dir, typ string, locs *locales.Set) (*diagnostics.List, error) {
	if locs == nil {
		locs = locales.MustParse(locales.Default)
	}

	d := content.NewDiscovery(dir, nil)
	var sources []content.Source
	var err error
	switch typ {
	case "":
		sources, err = d.Discover()
	case "subject":
		var src content.Source
		src, err = d.DiscoverDir(dir, content.KindSubject)
		sources = []content.Source{src}
	case "teacher":
		var src content.Source
		src, err = d.DiscoverDir(dir, content.KindInstructor)
		sources = []content.Source{src}
	case "teachers":
		sources, err = d.DiscoverMulti(dir, content.KindInstructor)
	case "system":
		var src content.Source
		src, err = d.DiscoverDir(dir, content.KindSystem)
		sources = []content.Source{src}
	default:
		return nil, fmt.Errorf("unknown validation type %q (expected one of %v)", typ, ValidateTypes)
	}
	if err != nil {
		return nil, err
	}

	diags := &diagnostics.List{}
	entities := make([]*content.Entity, 0, len(sources))
	for _, src := range sources {
		entity, srcDiags, err := content.Load(src, locs)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Rel, err)
		}
		diags.Add(srcDiags...)
		if entity != nil {
			entities = append(entities, entity)
		}
	}
	if diags.HasErrors() {
		diags.Sort()
		return diags, nil
	}

	registry := routes.NewRegistry()
	registerRoutes(registry, entities)
	diags.Add(registry.Diagnostics()...)
	for _, e := range entities {
		if e.Source.Kind == content.KindSubject {
			diags.Add(routes.CheckCategories(e.Subject.Slug, e.Source.ConfigPath, tocCategories(e.Subject))...)
		}
	}

	_, compileDiags, err := compileAll(ctx, entities, Options{
		Jobs:     runtime.GOMAXPROCS(0),
		Registry: components.DefaultRegistry(),
	})
	if err != nil {
		return nil, err
	}
	diags.Merge(compileDiags)

	for _, e := range entities {
		missingTocArticles(e, diags)
	}

	diags.Sort()
	return diags, nil
}
