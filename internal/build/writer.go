package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/coursebuilder/internal/manifest"
	"git.home.luguber.info/inful/coursebuilder/internal/search"
)

// writer lays out the build output directory:
//
//	manifest.json
//	route-map.json
//	search-index-{locale}.json
//	search-meta.json
//	compiled/{kind}/{entity}/{locale}/{slug}.json
//	toc/{kind}/{entity}/{locale}/{slug}.json
//
// The directory is replaced wholesale; a build either writes everything or
// nothing, so a consumer never observes a half-updated tree.
type writer struct {
	dir string
}

func newWriter(dir string) *writer {
	return &writer{dir: dir}
}

func (w *writer) writeAll(m *manifest.Manifest, compiled *compiledSet, indexes map[string][]search.Entry) error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("clear output dir: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	manifestJSON, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := w.writeFile("manifest.json", manifestJSON); err != nil {
		return err
	}
	if err := w.writeJSON("route-map.json", m.Routes); err != nil {
		return err
	}

	for _, locale := range m.Locales {
		name := fmt.Sprintf("search-index-%s.json", locale)
		if err := w.writeJSON(name, indexes[locale]); err != nil {
			return err
		}
	}
	meta := struct {
		ContentHash string    `json:"contentHash"`
		GeneratedAt time.Time `json:"generatedAt"`
	}{ContentHash: m.ContentHash, GeneratedAt: m.GeneratedAt}
	if err := w.writeJSON("search-meta.json", meta); err != nil {
		return err
	}

	for _, arts := range compiled.byEntity {
		for _, a := range arts {
			rel := filepath.Join(
				string(a.entity.Source.Kind), a.entity.Slug(), a.file.Locale, a.stem+".json")
			if err := w.writeJSON(filepath.Join("compiled", rel), a.doc); err != nil {
				return err
			}
			if err := w.writeJSON(filepath.Join("toc", rel), a.doc.ToC); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) writeJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rel, err)
	}
	return w.writeFile(rel, data)
}

func (w *writer) writeFile(rel string, data []byte) error {
	path := filepath.Join(w.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
