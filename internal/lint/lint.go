// Package lint runs an analysis pass over rendered MDX bodies. It parses the
// Markdown side of the output and flags link constructs the downstream
// renderer cannot resolve; it does not re-render anything.
package lint

import (
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Finding is one advisory result for a rendered body.
type Finding struct {
	Route   string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Route, f.Message)
}

// CheckBody parses a rendered body and reports advisory findings: links and
// images with empty destinations.
func CheckBody(route string, body []byte) []Finding {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var findings []Finding
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Link:
			if len(node.Destination) == 0 {
				findings = append(findings, Finding{Route: route, Message: "link with empty destination"})
			}
		case *gmast.Image:
			if len(node.Destination) == 0 {
				findings = append(findings, Finding{Route: route, Message: "image with empty source"})
			}
		}
		return gmast.WalkContinue, nil
	})

	return findings
}
