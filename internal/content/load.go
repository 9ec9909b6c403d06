package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
	"git.home.luguber.info/inful/coursebuilder/internal/schema"
)

// Load reads and validates one content source's configuration and enumerates
// its article files.
//
// Schema problems come back as diagnostics; the returned error is reserved
// for unreadable files and broken JSON, which no downstream stage can
// recover from.
func Load(src Source, locs *locales.Set) (*Entity, []diagnostics.Diagnostic, error) {
	raw, err := os.ReadFile(src.ConfigAbsPath())
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, []diagnostics.Diagnostic{{
			File:     src.ConfigPath,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategorySchema,
			Rule:     "invalid-json",
			Message:  fmt.Sprintf("config is not valid JSON: %v", err),
		}}, nil
	}

	diags := schema.Validate(obj, DescriptorFor(src.Kind), locs, src.ConfigPath)
	if hasErrors(diags) {
		return nil, diags, nil
	}

	entity := &Entity{Source: src}
	switch src.Kind {
	case KindSubject:
		entity.Subject = &SubjectConfig{}
		err = json.Unmarshal(raw, entity.Subject)
	case KindInstructor:
		entity.Instructor = &InstructorConfig{}
		err = json.Unmarshal(raw, entity.Instructor)
	case KindSystem:
		entity.System = &SystemConfig{}
		err = json.Unmarshal(raw, entity.System)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s config: %w", src.Kind, err)
	}

	if !frontmatter.ValidSlug(entity.Slug()) {
		diags = append(diags, diagnostics.Diagnostic{
			File:     src.ConfigPath,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategoryStructure,
			Rule:     "invalid-slug",
			Message:  fmt.Sprintf("slug %q is not URL-safe (lowercase letters, digits and dashes)", entity.Slug()),
		})
		return nil, diags, nil
	}

	entity.Articles, err = articleFiles(src)
	if err != nil {
		return nil, nil, err
	}
	return entity, diags, nil
}

// ConfigAbsPath returns the absolute path of the source's config file.
func (s Source) ConfigAbsPath() string {
	return filepath.Join(s.Dir, ConfigFileName)
}

func hasErrors(diags []diagnostics.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError {
			return true
		}
	}
	return false
}
