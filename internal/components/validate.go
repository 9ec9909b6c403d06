package components

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
)

// Validate walks a scanned element forest depth-first and checks every
// element against the registry. The walk never stops on the first problem;
// every violation in the document is reported.
//
// Rule order per element: unknown name, missing required attribute, enum
// violation, undeclared attribute (warning), nesting.
func (r Registry) Validate(elems []*Element, file string) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, el := range elems {
		diags = append(diags, r.validateElement(el, file)...)
	}
	return diags
}

func (r Registry) validateElement(el *Element, file string) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	errorf := func(rule, msg string) {
		diags = append(diags, diagnostics.Diagnostic{
			File: file, Line: el.Line, Column: el.Column,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategoryComponent,
			Rule:     rule,
			Message:  msg,
		})
	}
	warnf := func(rule, msg string) {
		diags = append(diags, diagnostics.Diagnostic{
			File: file, Line: el.Line, Column: el.Column,
			Severity: diagnostics.SeverityWarning,
			Category: diagnostics.CategoryComponent,
			Rule:     rule,
			Message:  msg,
		})
	}

	spec, known := r[el.Name]
	if !known {
		errorf("unknown-element", "element <"+el.Name+"> is not a known component")
	} else {
		// Required attributes, in deterministic name order.
		names := make([]string, 0, len(spec.Attrs))
		for name := range spec.Attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			as := spec.Attrs[name]
			if !as.Required {
				continue
			}
			if _, ok := el.Attr(name); !ok {
				errorf("missing-attribute", "element <"+el.Name+"> is missing required attribute "+quote(name))
			}
		}

		// Enum constraints and undeclared attributes, in source order.
		for _, a := range el.Attrs {
			as, declared := spec.Attrs[a.Name]
			if !declared {
				warnf("unknown-attribute", "attribute "+quote(a.Name)+" is not declared for element <"+el.Name+">")
				continue
			}
			if len(as.Enum) > 0 && !enumHas(as.Enum, a.Value) {
				errorf("invalid-attribute-value", "attribute "+quote(a.Name)+" of <"+el.Name+"> must be one of ["+strings.Join(as.Enum, ", ")+"], got "+quote(a.Value))
			}
		}

		if spec.RequiredParent != "" {
			parent := ""
			if el.Parent != nil {
				parent = el.Parent.Name
			}
			if parent != spec.RequiredParent {
				found := "top level"
				if parent != "" {
					found = "<" + parent + ">"
				}
				errorf("invalid-nesting", "element <"+el.Name+"> must be a direct child of <"+spec.RequiredParent+">, found inside "+found)
			}
		}

		if spec.RequireChildren && len(el.Children) == 0 {
			errorf("missing-children", "element <"+el.Name+"> requires child components")
		}
	}

	for _, child := range el.Children {
		diags = append(diags, r.validateElement(child, file)...)
	}
	return diags
}

func enumHas(enum []string, v string) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
	}
	return false
}

func quote(s string) string { return "\"" + s + "\"" }
