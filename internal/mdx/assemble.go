package mdx

import (
	"path"
	"strings"
)

// widgetImport pairs a marker substring in rendered MDX with the import
// statement its component needs. Order is fixed; each import appears at most
// once per document.
type widgetImport struct {
	marker string
	stmt   string
}

var widgetImports = []widgetImport{
	{"<TypeTable", "import { TypeTable } from 'fumadocs-ui/components/type-table';"},
	{"<TypstPreview", "import { TypstPreview } from '@/components/typst/preview';"},
}

// Document is one assembled output unit: the full MDX text plus its target
// location relative to the version output root.
type Document struct {
	Content     string
	Path        string
	IsContainer bool
	Meta        *Meta // navigation descriptor for container directories
	MetaPath    string
}

// Meta is the per-directory navigation descriptor.
type Meta struct {
	Title       string
	Description string
	Pages       []string
	Root        bool
}

// Serialize emits the descriptor in its published shape: 2-space indent,
// inline pages array, optional trailing root flag, trailing newline.
func (m Meta) Serialize() string {
	quoted := make([]string, 0, len(m.Pages))
	for _, p := range m.Pages {
		quoted = append(quoted, `"`+p+`"`)
	}
	rootSuffix := ""
	if m.Root {
		rootSuffix = ",\n  \"root\": true"
	}
	return "{\n" +
		"  \"title\": \"" + m.Title + "\",\n" +
		"  \"description\": \"" + strings.ReplaceAll(m.Description, "\n", " ") + "\",\n" +
		"  \"pages\": [" + strings.Join(quoted, ", ") + "]" + rootSuffix + "\n" +
		"}\n"
}

// ConvertPage assembles the full MDX document for one page: front-matter,
// derived imports, and the rendered body.
func ConvertPage(page PageRecord) string {
	title := page.Title
	if title == "" {
		title = "Untitled"
	}
	description := escapeQuotes(page.Description)

	var body string
	if page.Body != nil {
		body = RenderBody(page.Body.Kind, page.Body.Content)
	}

	var imports string
	for _, wi := range widgetImports {
		if strings.Contains(body, wi.marker) {
			imports += wi.stmt + "\n"
		}
	}
	if imports != "" {
		imports = "\n" + imports
	}

	return "---\n" +
		"title: \"" + escapeQuotes(title) + "\"\n" +
		"description: \"" + description + "\"\n" +
		"---\n" + imports + "\n" +
		body + "\n"
}

// Assemble produces the output unit for a page. The root page becomes the
// top-level index; container pages get a directory with an index file and a
// navigation descriptor; leaf pages get a single file.
func Assemble(page PageRecord) Document {
	content := ConvertPage(page)

	switch {
	case page.IsRoot():
		return Document{Content: content, Path: "index.mdx"}
	case page.HasChildren:
		return Document{
			Content:     content,
			Path:        path.Join(page.Route, "index.mdx"),
			IsContainer: true,
			Meta: &Meta{
				Title:       page.Title,
				Description: page.Description,
				Pages:       page.ChildrenOrder,
			},
			MetaPath: path.Join(page.Route, "meta.json"),
		}
	default:
		return Document{Content: content, Path: page.Route + ".mdx"}
	}
}
