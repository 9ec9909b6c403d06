package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// kindDirs maps the content root's top-level directories to source kinds.
var kindDirs = []struct {
	dir  string
	kind Kind
}{
	{"subjects", KindSubject},
	{"instructors", KindInstructor},
	{"system", KindSystem},
}

// Discovery walks a content root for content sources.
type Discovery struct {
	root    string
	exclude []string // doublestar patterns matched against root-relative paths
}

// NewDiscovery creates a discovery over root. exclude patterns skip matching
// source directories (e.g. "subjects/draft-*").
func NewDiscovery(root string, exclude []string) *Discovery {
	return &Discovery{root: root, exclude: exclude}
}

// Discover finds every content source under the root. Sources are returned
// in sorted path order so discovery order (and with it route registration
// order) is stable across machines.
func (d *Discovery) Discover() ([]Source, error) {
	var sources []Source
	for _, kd := range kindDirs {
		kindRoot := filepath.Join(d.root, kd.dir)
		entries, err := os.ReadDir(kindRoot)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read content dir %s: %w", kindRoot, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			rel := filepath.ToSlash(filepath.Join(kd.dir, entry.Name()))
			if d.excluded(rel) {
				slog.Debug("Skipping excluded content source", logfields.Path(rel))
				continue
			}
			src, ok, err := d.sourceAt(filepath.Join(kindRoot, entry.Name()), rel, kd.kind)
			if err != nil {
				return nil, err
			}
			if !ok {
				slog.Warn("Directory has no config file, skipping", logfields.Path(rel))
				continue
			}
			sources = append(sources, src)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Rel < sources[j].Rel })
	return sources, nil
}

// DiscoverDir treats dir itself as a single content source of the given
// kind. Used by the validate command when pointed at one entity directory.
func (d *Discovery) DiscoverDir(dir string, kind Kind) (Source, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Source{}, err
	}
	src, ok, err := d.sourceAt(abs, filepath.Base(abs), kind)
	if err != nil {
		return Source{}, err
	}
	if !ok {
		return Source{}, fmt.Errorf("%s: no %s found", dir, ConfigFileName)
	}
	return src, nil
}

// DiscoverMulti treats every child directory of dir as a content source of
// the given kind (the "teachers" multi-entity layout).
func (d *Discovery) DiscoverMulti(dir string, kind Kind) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var sources []Source
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rel := entry.Name()
		src, ok, err := d.sourceAt(filepath.Join(dir, entry.Name()), rel, kind)
		if err != nil {
			return nil, err
		}
		if ok {
			sources = append(sources, src)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Rel < sources[j].Rel })
	return sources, nil
}

func (d *Discovery) sourceAt(dir, rel string, kind Kind) (Source, bool, error) {
	cfgPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return Source{}, false, nil
	} else if err != nil {
		return Source{}, false, fmt.Errorf("stat %s: %w", cfgPath, err)
	}
	return Source{
		Kind:       kind,
		Dir:        dir,
		Rel:        rel,
		ConfigPath: filepath.ToSlash(filepath.Join(rel, ConfigFileName)),
	}, true, nil
}

func (d *Discovery) excluded(rel string) bool {
	for _, pattern := range d.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// articleFiles enumerates the per-locale source documents of a source,
// sorted by locale then filename for deterministic compile order.
func articleFiles(src Source) ([]ArticleFile, error) {
	articlesDir := filepath.Join(src.Dir, ArticlesDirName)
	localeEntries, err := os.ReadDir(articlesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read articles dir %s: %w", articlesDir, err)
	}

	var files []ArticleFile
	for _, localeEntry := range localeEntries {
		if !localeEntry.IsDir() {
			continue
		}
		locale := localeEntry.Name()
		localeDir := filepath.Join(articlesDir, locale)
		docEntries, err := os.ReadDir(localeDir)
		if err != nil {
			return nil, fmt.Errorf("read locale dir %s: %w", localeDir, err)
		}
		for _, doc := range docEntries {
			if doc.IsDir() {
				continue
			}
			ext := filepath.Ext(doc.Name())
			if ext != ".md" && ext != ".mdx" {
				continue
			}
			stem := strings.TrimSuffix(doc.Name(), ext)
			files = append(files, ArticleFile{
				Locale: locale,
				Stem:   stem,
				Path:   filepath.Join(localeDir, doc.Name()),
				Rel:    filepath.ToSlash(filepath.Join(src.Rel, ArticlesDirName, locale, doc.Name())),
			})
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Locale != files[j].Locale {
			return files[i].Locale < files[j].Locale
		}
		return files[i].Stem < files[j].Stem
	})
	return files, nil
}
