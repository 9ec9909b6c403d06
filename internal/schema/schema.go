// Package schema implements table-driven validation of raw configuration
// objects against fixed shape descriptors.
//
// Validation failures are data (field-path diagnostics), never panics; a
// panic here means the descriptor table itself is mis-wired, which is a
// programmer error and not something content authors can cause.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/locales"
)

// FieldKind enumerates the value shapes the validator understands.
type FieldKind int

const (
	String FieldKind = iota
	LocalizedString
	StringList
	Number
	Bool
	ObjectList
)

func (k FieldKind) String() string {
	switch k {
	case String:
		return "string"
	case LocalizedString:
		return "localized string"
	case StringList:
		return "string list"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case ObjectList:
		return "object list"
	default:
		return "unknown"
	}
}

// Field describes one configuration field.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Enum     []string // String fields only
	Fields   []Field  // ObjectList element shape
}

// Descriptor describes the full shape of one configuration kind.
type Descriptor struct {
	Name   string // e.g. "subject"
	Fields []Field
}

// Validate checks raw against the descriptor and returns every field-level
// problem found. An empty result means raw conforms to the shape.
//
// file is only used to tag the resulting diagnostics.
func Validate(raw map[string]any, desc Descriptor, locs *locales.Set, file string) []diagnostics.Diagnostic {
	v := &validator{desc: desc, locales: locs, file: file}
	v.validateObject(raw, desc.Fields, "")
	return v.diags
}

type validator struct {
	desc    Descriptor
	locales *locales.Set
	file    string
	diags   []diagnostics.Diagnostic
}

func (v *validator) errorf(path, rule, format string, args ...any) {
	v.diags = append(v.diags, diagnostics.Diagnostic{
		File:     v.file,
		Severity: diagnostics.SeverityError,
		Category: diagnostics.CategorySchema,
		Rule:     rule,
		Message:  fmt.Sprintf("%s: %s", path, fmt.Sprintf(format, args...)),
	})
}

func (v *validator) warnf(path, rule, format string, args ...any) {
	v.diags = append(v.diags, diagnostics.Diagnostic{
		File:     v.file,
		Severity: diagnostics.SeverityWarning,
		Category: diagnostics.CategorySchema,
		Rule:     rule,
		Message:  fmt.Sprintf("%s: %s", path, fmt.Sprintf(format, args...)),
	})
}

func (v *validator) validateObject(raw map[string]any, fields []Field, prefix string) {
	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		checkWiring(f)
		known[f.Name] = f
	}

	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		val, present := raw[f.Name]
		if !present || val == nil {
			if f.Required {
				v.errorf(path, "required-field", "required field is missing")
			}
			continue
		}
		v.validateValue(val, f, path)
	}

	// Unknown fields do not block the build: newer content may carry fields
	// an older pipeline has not learned yet.
	unknown := make([]string, 0)
	for name := range raw {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		v.warnf(joinPath(prefix, name), "unknown-field", "field is not part of the %s schema", v.desc.Name)
	}
}

func (v *validator) validateValue(val any, f Field, path string) {
	switch f.Kind {
	case String:
		s, ok := val.(string)
		if !ok {
			v.errorf(path, "wrong-type", "expected %s, got %s", f.Kind, typeName(val))
			return
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			v.errorf(path, "invalid-enum-value", "value %q is not one of [%s]", s, strings.Join(f.Enum, ", "))
		}

	case LocalizedString:
		obj, ok := val.(map[string]any)
		if !ok {
			v.errorf(path, "wrong-type", "expected %s, got %s", f.Kind, typeName(val))
			return
		}
		have := make(map[string]string, len(obj))
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s, ok := obj[k].(string)
			if !ok {
				v.errorf(path+"."+k, "wrong-type", "expected string, got %s", typeName(obj[k]))
				continue
			}
			if !v.locales.Has(k) {
				v.warnf(path+"."+k, "unsupported-locale", "locale %q is not in the supported set", k)
				continue
			}
			have[k] = s
		}
		if missing := v.locales.Missing(have); len(missing) > 0 {
			v.errorf(path, "missing-locales", "missing locales: %s", strings.Join(missing, ", "))
		}

	case StringList:
		list, ok := val.([]any)
		if !ok {
			v.errorf(path, "wrong-type", "expected %s, got %s", f.Kind, typeName(val))
			return
		}
		for i, item := range list {
			if _, ok := item.(string); !ok {
				v.errorf(fmt.Sprintf("%s[%d]", path, i), "wrong-type", "expected string, got %s", typeName(item))
			}
		}

	case Number:
		switch val.(type) {
		case float64, int, int64:
		default:
			v.errorf(path, "wrong-type", "expected %s, got %s", f.Kind, typeName(val))
		}

	case Bool:
		if _, ok := val.(bool); !ok {
			v.errorf(path, "wrong-type", "expected %s, got %s", f.Kind, typeName(val))
		}

	case ObjectList:
		list, ok := val.([]any)
		if !ok {
			v.errorf(path, "wrong-type", "expected %s, got %s", f.Kind, typeName(val))
			return
		}
		for i, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				v.errorf(fmt.Sprintf("%s[%d]", path, i), "wrong-type", "expected object, got %s", typeName(item))
				continue
			}
			v.validateObject(obj, f.Fields, fmt.Sprintf("%s[%d]", path, i))
		}
	}
}

// checkWiring panics on descriptor table mistakes. These are bugs in the
// pipeline, not in content, so they must not surface as content diagnostics.
func checkWiring(f Field) {
	if f.Name == "" {
		panic("schema: field with empty name")
	}
	if len(f.Enum) > 0 && f.Kind != String {
		panic(fmt.Sprintf("schema: field %q declares an enum but is not a string field", f.Name))
	}
	if f.Kind == ObjectList && len(f.Fields) == 0 {
		panic(fmt.Sprintf("schema: object list field %q has no element shape", f.Name))
	}
	if f.Kind != ObjectList && len(f.Fields) > 0 {
		panic(fmt.Sprintf("schema: field %q declares nested fields but is not an object list", f.Name))
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func typeName(val any) string {
	switch val.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", val)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
