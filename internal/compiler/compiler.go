// Package compiler transforms a validated article body into the
// pre-executable render artifact consumed by the runtime renderer, and
// extracts the heading table of contents in the same pass.
package compiler

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/coursebuilder/internal/components"
	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
)

// Heading is one ToC entry: a stable anchor id, the heading text, and depth.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Depth int    `json:"depth"`
}

// Block is one render block of the compiled artifact.
type Block struct {
	Kind     string `json:"kind"` // heading | code | markdown
	Depth    int    `json:"depth,omitempty"`
	ID       string `json:"id,omitempty"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// ComponentNode is the serialized form of an embedded component reference.
type ComponentNode struct {
	Name     string           `json:"name"`
	Attrs    []ComponentAttr  `json:"attrs,omitempty"`
	Line     int              `json:"line,omitempty"`
	Children []*ComponentNode `json:"children,omitempty"`
}

// ComponentAttr preserves attribute declaration order for determinism.
type ComponentAttr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Document is the compiled render artifact plus its extracted ToC.
// Immutable after compilation; compiling the same source twice yields a
// byte-identical serialization.
type Document struct {
	Blocks     []Block          `json:"blocks"`
	Components []*ComponentNode `json:"components,omitempty"`
	ToC        []Heading        `json:"toc"`
}

// Compile parses the document body, builds the render artifact and ToC, and
// runs the component contract validation as part of the same pass.
//
// file and baseLine locate the body inside its source file for diagnostics.
// A returned error is always a *components.ParseError (malformed markup);
// contract violations come back as diagnostics instead.
func Compile(body []byte, file string, baseLine int, registry components.Registry) (*Document, []diagnostics.Diagnostic, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	doc := &Document{Blocks: make([]Block, 0), ToC: make([]Heading, 0)}
	anchors := newAnchorSet()
	var skip []components.Range

	// Inline code and code blocks must not be scanned for component tags; an
	// author writing `<Option>` in a code sample is documenting, not embedding.
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			skip = append(skip, segmentRanges(n)...)
		case *gmast.CodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				skip = append(skip, segmentRanges(c)...)
			}
		}
		return gmast.WalkContinue, nil
	})

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.Heading:
			headingText := inlineText(node, body)
			id := anchors.assign(slugify(headingText))
			line := lineOf(body, nodeStart(node), baseLine)
			doc.ToC = append(doc.ToC, Heading{ID: id, Text: headingText, Depth: node.Level})
			doc.Blocks = append(doc.Blocks, Block{
				Kind: "heading", Depth: node.Level, ID: id, Text: headingText, Line: line,
			})
		case *gmast.FencedCodeBlock:
			doc.Blocks = append(doc.Blocks, Block{
				Kind:     "code",
				Language: string(node.Language(body)),
				Text:     segmentText(node, body),
				Line:     lineOf(body, nodeStart(node), baseLine),
			})
		case *gmast.CodeBlock:
			doc.Blocks = append(doc.Blocks, Block{
				Kind: "code",
				Text: segmentText(node, body),
				Line: lineOf(body, nodeStart(node), baseLine),
			})
		default:
			raw := segmentText(n, body)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			doc.Blocks = append(doc.Blocks, Block{
				Kind: "markdown", Markdown: raw, Line: lineOf(body, nodeStart(n), baseLine),
			})
		}
	}

	elems, err := components.Scan(body, file, baseLine, skip)
	if err != nil {
		return nil, nil, err
	}
	doc.Components = toNodes(elems)
	diags := registry.Validate(elems, file)
	return doc, diags, nil
}

func toNodes(elems []*components.Element) []*ComponentNode {
	if len(elems) == 0 {
		return nil
	}
	out := make([]*ComponentNode, 0, len(elems))
	for _, el := range elems {
		node := &ComponentNode{Name: el.Name, Line: el.Line}
		for _, a := range el.Attrs {
			node.Attrs = append(node.Attrs, ComponentAttr{Name: a.Name, Value: a.Value})
		}
		node.Children = toNodes(el.Children)
		out = append(out, node)
	}
	return out
}

// anchorSet assigns collision-resistant anchor ids within one document.
// The second occurrence of a heading gets a "-1" suffix, the third "-2".
type anchorSet struct {
	seen map[string]int
}

func newAnchorSet() *anchorSet {
	return &anchorSet{seen: make(map[string]int)}
}

func (a *anchorSet) assign(base string) string {
	if base == "" {
		base = "section"
	}
	n := a.seen[base]
	a.seen[base] = n + 1
	if n == 0 {
		return base
	}
	id := fmt.Sprintf("%s-%d", base, n)
	// The suffixed id could itself collide with a literal heading; claim it.
	for a.seen[id] > 0 {
		n++
		a.seen[base] = n + 1
		id = fmt.Sprintf("%s-%d", base, n)
	}
	a.seen[id] = 1
	return id
}

// slugify lowercases and dash-joins heading text into a URL-safe anchor.
// Unicode letters and digits survive; everything else collapses to a dash.
func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// inlineText concatenates the text content of a node's inline children.
func inlineText(n gmast.Node, body []byte) string {
	var b strings.Builder
	var walk func(n gmast.Node)
	walk = func(n gmast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*gmast.Text); ok {
				b.Write(t.Segment.Value(body))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte(' ')
				}
				continue
			}
			if s, ok := c.(*gmast.String); ok {
				b.Write(s.Value)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func segmentRanges(n gmast.Node) []components.Range {
	// Inline nodes carry a Segment, not Lines; goldmark's BaseInline.Lines()
	// panics, so they must be handled before touching Lines().
	if t, ok := n.(*gmast.Text); ok {
		return []components.Range{{Start: t.Segment.Start, End: t.Segment.Stop}}
	}
	if n.Type() != gmast.TypeBlock {
		return nil
	}
	lines := n.Lines()
	out := make([]components.Range, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, components.Range{Start: seg.Start, End: seg.Stop})
	}
	return out
}

func segmentText(n gmast.Node, body []byte) string {
	lines := n.Lines()
	var start, stop int
	if lines.Len() == 0 {
		// Container nodes (lists, block quotes) carry no direct lines; span
		// from the first to the last descendant segment instead.
		start, stop = descendantSpan(n)
		if stop <= start {
			return ""
		}
	} else {
		start = lines.At(0).Start
		stop = lines.At(lines.Len() - 1).Stop
	}
	// Goldmark segments begin after block markers ("- ", "> "); extend back
	// to the start of the source line so the raw markdown keeps its syntax.
	start = lineStart(body, start)
	return string(body[start:stop])
}

func lineStart(body []byte, offset int) int {
	if offset <= 0 || offset > len(body) {
		return 0
	}
	return bytes.LastIndexByte(body[:offset], '\n') + 1
}

func descendantSpan(n gmast.Node) (int, int) {
	start, stop := -1, -1
	var walk func(n gmast.Node)
	walk = func(n gmast.Node) {
		// Only block nodes carry Lines(); goldmark panics for inline nodes.
		if n.Type() == gmast.TypeBlock {
			lines := n.Lines()
			if lines.Len() > 0 {
				s := lines.At(0).Start
				e := lines.At(lines.Len() - 1).Stop
				if start == -1 || s < start {
					start = s
				}
				if e > stop {
					stop = e
				}
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	if start == -1 {
		return 0, 0
	}
	return start, stop
}

func nodeStart(n gmast.Node) int {
	lines := n.Lines()
	if lines.Len() > 0 {
		return lines.At(0).Start
	}
	start, _ := descendantSpan(n)
	return start
}

func lineOf(body []byte, offset, baseLine int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(body) {
		offset = len(body)
	}
	return baseLine + bytes.Count(body[:offset], []byte("\n"))
}
