// Package components validates embedded interactive element references
// against the component contract the renderer versions against.
//
// The contract is a data table, not per-element code: the validator is a
// generic table-driven tree walker so the element set can evolve without
// touching validation logic.
package components

// AttrSpec describes one declared attribute of a component.
type AttrSpec struct {
	Required bool
	Enum     []string // allowed values; empty means free-form
}

// Spec is the contract entry for one component.
type Spec struct {
	Attrs           map[string]AttrSpec
	RequiredParent  string // direct component ancestor this element must have
	RequireChildren bool   // element is meaningless without component children
}

// Registry maps component names to their contract entries.
type Registry map[string]Spec

// DefaultRegistry returns the contract table for the renderer's element set.
// This table is maintained together with the renderer's component library;
// content is validated against it, never against renderer internals.
func DefaultRegistry() Registry {
	return Registry{
		"BarChart": {
			Attrs: map[string]AttrSpec{
				"data":   {Required: true},
				"xLabel": {},
				"yLabel": {},
				"title":  {},
			},
		},
		"LineChart": {
			Attrs: map[string]AttrSpec{
				"data":   {Required: true},
				"xLabel": {},
				"yLabel": {},
				"title":  {},
			},
		},
		"Quiz": {
			Attrs: map[string]AttrSpec{
				"title": {},
			},
			RequireChildren: true,
		},
		"Question": {
			Attrs: map[string]AttrSpec{
				"text": {Required: true},
				"kind": {Enum: []string{"single", "multiple"}},
			},
			RequiredParent:  "Quiz",
			RequireChildren: true,
		},
		"Option": {
			Attrs: map[string]AttrSpec{
				"correct": {Enum: []string{"true", "false"}},
			},
			RequiredParent: "Question",
		},
		"Callout": {
			Attrs: map[string]AttrSpec{
				"kind": {Enum: []string{"note", "warning", "tip"}},
			},
		},
		"CodeTabs": {
			RequireChildren: true,
		},
		"Tab": {
			Attrs: map[string]AttrSpec{
				"label":    {Required: true},
				"language": {},
			},
			RequiredParent: "CodeTabs",
		},
		"Figure": {
			Attrs: map[string]AttrSpec{
				"src":     {Required: true},
				"alt":     {Required: true},
				"caption": {},
			},
		},
		"Term": {
			Attrs: map[string]AttrSpec{
				"id": {Required: true},
			},
		},
	}
}
