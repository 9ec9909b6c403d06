package components

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Attr is one attribute of an embedded element, in source order.
type Attr struct {
	Name  string
	Value string
}

// Element is a parsed embedded component reference.
type Element struct {
	Name        string
	Attrs       []Attr
	Line        int // 1-based, in file coordinates
	Column      int // 1-based
	SelfClosing bool
	Parent      *Element
	Children    []*Element
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Range is a half-open byte range [Start, End) within a document body.
type Range struct {
	Start int
	End   int
}

// ParseError is a structured markup failure. It is the only error in the
// pipeline rendered with a source-context excerpt, because tag structure
// errors are otherwise opaque to content authors.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Rule    string
	Message string
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", e.File, e.Line, e.Column, e.Message, e.Rule)
}

var (
	tagNamePattern = regexp.MustCompile(`^</?\s*([A-Za-z][A-Za-z0-9]*)`)
	// Attribute names are recovered from the raw token because the HTML
	// tokenizer lowercases them, and the component contract is case-sensitive
	// (xLabel, not xlabel).
	attrPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s/>]+))?`)
)

// Scan parses the embedded component elements of a document body into a
// forest, maintaining an explicit ancestor stack for nesting checks.
//
// Component tags are tags whose name starts with an uppercase letter; plain
// HTML tags and markdown text pass through untouched. skip lists byte ranges
// (fenced code blocks) whose content must not be scanned. baseLine is the
// 1-based file line the body starts on, so positions land in file coordinates.
func Scan(body []byte, file string, baseLine int, skip []Range) ([]*Element, error) {
	masked := maskRanges(body, skip)

	z := html.NewTokenizer(bytes.NewReader(masked))
	var (
		roots  []*Element
		stack  []*Element
		offset int
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()
		tokStart := offset
		offset += len(raw)

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name := rawTagName(raw)
			if !isComponentName(name) {
				continue
			}
			line, col := position(masked, tokStart, baseLine)
			el := &Element{
				Name:        name,
				Attrs:       rawAttrs(raw, name),
				Line:        line,
				Column:      col,
				SelfClosing: tt == html.SelfClosingTagToken,
			}
			if len(stack) > 0 {
				el.Parent = stack[len(stack)-1]
				el.Parent.Children = append(el.Parent.Children, el)
			} else {
				roots = append(roots, el)
			}
			if tt == html.StartTagToken {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			name := rawTagName(raw)
			if !isComponentName(name) {
				continue
			}
			line, col := position(masked, tokStart, baseLine)
			if len(stack) == 0 {
				return nil, &ParseError{
					File: file, Line: line, Column: col,
					Rule:    "unexpected-closing-tag",
					Message: fmt.Sprintf("closing tag </%s> has no matching opening tag", name),
					Excerpt: renderExcerpt(body, line-baseLine+1, baseLine),
				}
			}
			top := stack[len(stack)-1]
			if top.Name != name {
				return nil, &ParseError{
					File: file, Line: line, Column: col,
					Rule:    "mismatched-closing-tag",
					Message: fmt.Sprintf("closing tag </%s> does not match open element <%s>", name, top.Name),
					Excerpt: renderExcerpt(body, line-baseLine+1, baseLine),
				}
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, &ParseError{
			File: file, Line: top.Line, Column: top.Column,
			Rule:    "unclosed-element",
			Message: fmt.Sprintf("element <%s> is never closed", top.Name),
			Excerpt: renderExcerpt(body, top.Line-baseLine+1, baseLine),
		}
	}
	return roots, nil
}

// maskRanges blanks skip ranges with spaces, preserving newlines so every
// byte offset and line number stays identical to the original body.
func maskRanges(body []byte, skip []Range) []byte {
	if len(skip) == 0 {
		return body
	}
	masked := make([]byte, len(body))
	copy(masked, body)
	for _, r := range skip {
		start, end := r.Start, r.End
		if start < 0 {
			start = 0
		}
		if end > len(masked) {
			end = len(masked)
		}
		for i := start; i < end; i++ {
			if masked[i] != '\n' && masked[i] != '\r' {
				masked[i] = ' '
			}
		}
	}
	return masked
}

func rawTagName(raw []byte) string {
	m := tagNamePattern.FindSubmatch(raw)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func rawAttrs(raw []byte, name string) []Attr {
	inner := bytes.TrimPrefix(raw, []byte("<"))
	inner = bytes.TrimPrefix(inner, []byte(name))
	inner = bytes.TrimSuffix(bytes.TrimSuffix(inner, []byte(">")), []byte("/"))

	matches := attrPattern.FindAllSubmatch(inner, -1)
	attrs := make([]Attr, 0, len(matches))
	for _, m := range matches {
		val := string(m[2])
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') {
			val = val[1 : len(val)-1]
		}
		attrs = append(attrs, Attr{Name: string(m[1]), Value: val})
	}
	return attrs
}

func position(body []byte, offset, baseLine int) (line, col int) {
	before := body[:offset]
	line = baseLine + bytes.Count(before, []byte("\n"))
	last := bytes.LastIndexByte(before, '\n')
	col = offset - last // 1-based: offset==last+1 at line start
	return line, col
}

// renderExcerpt renders the offending body line with one line of context on
// each side, in file line numbers.
func renderExcerpt(body []byte, bodyLine, baseLine int) string {
	lines := strings.Split(string(body), "\n")
	if bodyLine < 1 || bodyLine > len(lines) {
		return ""
	}
	var b strings.Builder
	for i := bodyLine - 2; i <= bodyLine; i++ {
		if i < 0 || i >= len(lines) {
			continue
		}
		marker := "  "
		if i == bodyLine-1 {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, baseLine+i, lines[i])
	}
	return b.String()
}
