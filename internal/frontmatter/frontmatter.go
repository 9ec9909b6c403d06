// Package frontmatter splits `---` delimited YAML frontmatter from article
// bodies and validates the typed article metadata the pipeline relies on.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
)

// FrontSlug is the reserved filename stem for an entity's landing document.
// Front documents are exempt from the global route namespace.
const FrontSlug = "_front"

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Article is the typed per-document metadata.
type Article struct {
	Title         string   `yaml:"title"`
	Slug          string   `yaml:"slug"`
	Description   string   `yaml:"description,omitempty"`
	Author        string   `yaml:"author,omitempty"`
	Difficulty    string   `yaml:"difficulty,omitempty"`
	ReadTime      int      `yaml:"readTime,omitempty"` // minutes
	Prerequisites []string `yaml:"prerequisites,omitempty"`
	Keywords      []string `yaml:"keywords,omitempty"`
}

// Difficulties is the allowed difficulty vocabulary.
var Difficulties = []string{"beginner", "intermediate", "advanced"}

// Split separates YAML frontmatter (`---` delimited) from the document body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input. bodyLine is the 1-based line the body starts on,
// so the compiler can report markup positions in original file coordinates.
func Split(content []byte) (fm []byte, body []byte, had bool, bodyLine int, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, 1, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		// Empty frontmatter block.
		return []byte{}, content[start+len(open):], true, 3, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, nil, false, 0, ErrMissingClosingDelimiter
	}

	fm = content[start : start+idx+len(nl)]
	body = content[start+idx+len(closeSeq):]
	bodyLine = 3 + bytes.Count(fm, []byte(nl))
	return fm, body, true, bodyLine, nil
}

// Parse decodes raw frontmatter YAML into the typed Article.
func Parse(fm []byte) (*Article, error) {
	var art Article
	if err := yaml.Unmarshal(fm, &art); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return &art, nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a URL-safe slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Validate checks the typed frontmatter against the filename stem and returns
// every problem found. Front documents skip the slug/filename check because
// their slug never enters the route namespace.
func (a *Article) Validate(file, stem string) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	errorf := func(rule, format string, args ...any) {
		diags = append(diags, diagnostics.Diagnostic{
			File:     file,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategoryStructure,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if a.Title == "" {
		errorf("missing-title", "frontmatter is missing required field 'title'")
	}
	if stem != FrontSlug {
		if a.Slug == "" {
			errorf("missing-slug", "frontmatter is missing required field 'slug'")
		} else if a.Slug != stem {
			errorf("slug-filename-mismatch", "frontmatter slug does not match filename: slug %q, filename stem %q", a.Slug, stem)
		} else if !ValidSlug(a.Slug) {
			errorf("invalid-slug", "slug %q is not URL-safe (lowercase letters, digits and dashes)", a.Slug)
		}
	}
	if a.Difficulty != "" && !containsString(Difficulties, a.Difficulty) {
		errorf("invalid-difficulty", "difficulty %q is not one of %v", a.Difficulty, Difficulties)
	}
	if a.ReadTime < 0 {
		errorf("invalid-read-time", "readTime must not be negative, got %d", a.ReadTime)
	}
	return diags
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
