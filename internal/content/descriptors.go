package content

import "git.home.luguber.info/inful/coursebuilder/internal/schema"

// Schema descriptors for the three configuration kinds. These tables are the
// single source of truth for what a config file may contain; the typed
// structs in content.go mirror them.

var subjectDescriptor = schema.Descriptor{
	Name: "subject",
	Fields: []schema.Field{
		{Name: "slug", Kind: schema.String, Required: true},
		{Name: "title", Kind: schema.LocalizedString, Required: true},
		{Name: "description", Kind: schema.LocalizedString, Required: true},
		{Name: "difficulty", Kind: schema.String, Enum: []string{"beginner", "intermediate", "advanced"}},
		{Name: "instructors", Kind: schema.StringList},
		{Name: "keywords", Kind: schema.StringList},
		{Name: "toc", Kind: schema.ObjectList, Fields: []schema.Field{
			{Name: "category", Kind: schema.String, Required: true},
			{Name: "articles", Kind: schema.StringList, Required: true},
		}},
	},
}

var instructorDescriptor = schema.Descriptor{
	Name: "instructor",
	Fields: []schema.Field{
		{Name: "slug", Kind: schema.String, Required: true},
		{Name: "name", Kind: schema.String, Required: true},
		{Name: "title", Kind: schema.LocalizedString, Required: true},
		{Name: "bio", Kind: schema.LocalizedString, Required: true},
		{Name: "subjects", Kind: schema.StringList},
		{Name: "website", Kind: schema.String},
		{Name: "keywords", Kind: schema.StringList},
	},
}

var systemDescriptor = schema.Descriptor{
	Name: "system",
	Fields: []schema.Field{
		{Name: "slug", Kind: schema.String, Required: true},
		{Name: "title", Kind: schema.LocalizedString, Required: true},
		{Name: "description", Kind: schema.LocalizedString, Required: true},
		{Name: "keywords", Kind: schema.StringList},
	},
}

// DescriptorFor returns the schema descriptor for a source kind.
func DescriptorFor(kind Kind) schema.Descriptor {
	switch kind {
	case KindSubject:
		return subjectDescriptor
	case KindInstructor:
		return instructorDescriptor
	case KindSystem:
		return systemDescriptor
	}
	panic("content: no descriptor for kind " + string(kind))
}
