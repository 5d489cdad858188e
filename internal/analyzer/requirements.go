package analyzer

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Minimum structural elements for a document to count as a structured
// requirements document rather than free-form prose.
const minStructuralElements = 3

// HasStructuredRequirements reports whether the attached document looks like
// a structured requirements document. The markdown is parsed and headings
// and list items are counted; prose without structure does not qualify.
func HasStructuredRequirements(doc string) bool {
	if doc == "" {
		return false
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader([]byte(doc)))

	structural := 0
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading, ast.KindListItem:
			structural++
		}
		return ast.WalkContinue, nil
	})

	return structural >= minStructuralElements
}
