package mdx

import (
	"strings"

	"git.home.luguber.info/inful/typdocs/internal/docjson"
)

// PageRecord is one flattened page: the data needed to assemble its output,
// with no back-reference to the original tree.
type PageRecord struct {
	Title         string
	Route         string
	Description   string
	Part          string
	Body          *docjson.Body
	HasChildren   bool
	ChildrenOrder []string
}

// IsRoot reports whether this record is the synthetic tree root. Only the
// root has an empty route.
func (p PageRecord) IsRoot() bool {
	return p.Route == ""
}

// Flatten walks a page tree pre-order into a flat record list: a page always
// appears before its descendants. ChildrenOrder captures the last route
// segment of each direct child, which becomes the navigation ordering.
func Flatten(root docjson.Page) []PageRecord {
	var records []PageRecord
	flattenInto(root, &records)
	return records
}

// FlattenForest flattens an ordered sequence of top-level trees into one list.
func FlattenForest(trees []docjson.Page) []PageRecord {
	var records []PageRecord
	for _, tree := range trees {
		flattenInto(tree, &records)
	}
	return records
}

func flattenInto(page docjson.Page, records *[]PageRecord) {
	order := make([]string, 0, len(page.Children))
	for _, child := range page.Children {
		order = append(order, LastRouteSegment(child.Route))
	}

	*records = append(*records, PageRecord{
		Title:         page.Title,
		Route:         strings.Trim(page.Route, "/"),
		Description:   collapseNewlines(page.Description),
		Part:          page.Part,
		Body:          page.Body,
		HasChildren:   len(page.Children) > 0,
		ChildrenOrder: order,
	})

	for _, child := range page.Children {
		flattenInto(child, records)
	}
}

// LastRouteSegment returns the final non-empty segment of a slash-delimited
// route ("" for the root route).
func LastRouteSegment(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")
	return segments[len(segments)-1]
}

func collapseNewlines(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
