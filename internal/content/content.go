// Package content discovers and loads the raw content sources of a build:
// subject curricula, instructor profiles, and system article sets.
package content

// Kind is the content source kind.
type Kind string

const (
	KindSubject    Kind = "subject"
	KindInstructor Kind = "instructor"
	KindSystem     Kind = "system"
)

// ConfigFileName is the configuration file every content source carries.
const ConfigFileName = "config.json"

// ArticlesDirName is the per-locale article tree inside a content source.
const ArticlesDirName = "articles"

// LocalizedString maps locale codes to translated text.
type LocalizedString map[string]string

// Source is one discovered content source directory, read-only input to the
// build.
type Source struct {
	Kind       Kind
	Dir        string // absolute path to the source directory
	Rel        string // path relative to the content root, for diagnostics
	ConfigPath string // root-relative path to the config file
}

// TocCategory is one named group of article slugs in a subject's table of
// contents.
type TocCategory struct {
	Category string   `json:"category"`
	Articles []string `json:"articles"`
}

// SubjectConfig is the validated configuration of a subject curriculum.
type SubjectConfig struct {
	Slug        string          `json:"slug"`
	Title       LocalizedString `json:"title"`
	Description LocalizedString `json:"description"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Instructors []string        `json:"instructors,omitempty"`
	Keywords    []string        `json:"keywords,omitempty"`
	Toc         []TocCategory   `json:"toc,omitempty"`
}

// InstructorConfig is the validated configuration of an instructor profile.
type InstructorConfig struct {
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Title    LocalizedString `json:"title"`
	Bio      LocalizedString `json:"bio"`
	Subjects []string        `json:"subjects,omitempty"`
	Website  string          `json:"website,omitempty"`
	Keywords []string        `json:"keywords,omitempty"`
}

// SystemConfig is the validated configuration of a system article set
// (standalone articles outside any subject).
type SystemConfig struct {
	Slug        string          `json:"slug"`
	Title       LocalizedString `json:"title"`
	Description LocalizedString `json:"description"`
	Keywords    []string        `json:"keywords,omitempty"`
}

// ArticleFile is one discovered source document.
type ArticleFile struct {
	Locale string
	Stem   string // filename without extension; equals the article slug
	Path   string // absolute path
	Rel    string // content-root-relative path, for diagnostics
}

// Entity is a fully loaded content source: validated config plus the
// discovered article files. Exactly one of Subject, Instructor, System is
// set, matching Source.Kind.
type Entity struct {
	Source     Source
	Subject    *SubjectConfig
	Instructor *InstructorConfig
	System     *SystemConfig
	Articles   []ArticleFile // sorted by locale, then stem
}

// Slug returns the entity's canonical slug.
func (e *Entity) Slug() string {
	switch e.Source.Kind {
	case KindSubject:
		return e.Subject.Slug
	case KindInstructor:
		return e.Instructor.Slug
	case KindSystem:
		return e.System.Slug
	}
	return ""
}

// Title returns the entity's localized title. Instructor profiles use the
// (unlocalized) person name for every locale.
func (e *Entity) Title() LocalizedString {
	switch e.Source.Kind {
	case KindSubject:
		return e.Subject.Title
	case KindInstructor:
		return LocalizedString{} // callers use Name
	case KindSystem:
		return e.System.Title
	}
	return nil
}

// Keywords returns the entity's keyword list.
func (e *Entity) Keywords() []string {
	switch e.Source.Kind {
	case KindSubject:
		return e.Subject.Keywords
	case KindInstructor:
		return e.Instructor.Keywords
	case KindSystem:
		return e.System.Keywords
	}
	return nil
}
