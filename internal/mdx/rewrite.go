package mdx

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/typdocs/internal/logfields"
)

// codeLanguage annotates inline code spans and fences in the generated MDX.
const codeLanguage = "typst"

// tagClass buckets every HTML element into one rendering rule. Classification
// happens once per element; rendering dispatches on the class, not on
// repeated string comparisons.
type tagClass int

const (
	classFallback tagClass = iota
	classHeading
	classParagraph
	classCodeBlock
	classInlineCode
	classTable
	classList
	classContainer
	classLink
	classSpan
	classPassthrough
	classImage
	classBold
	classItalic
)

func classify(n *html.Node) tagClass {
	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return classHeading
	case atom.P:
		return classParagraph
	case atom.Pre:
		return classCodeBlock
	case atom.Code:
		return classInlineCode
	case atom.Table:
		return classTable
	case atom.Ul, atom.Ol:
		return classList
	case atom.Div:
		return classContainer
	case atom.A:
		return classLink
	case atom.Span:
		return classSpan
	case atom.Details:
		return classPassthrough
	case atom.Img:
		return classImage
	case atom.Strong, atom.B:
		return classBold
	case atom.Em, atom.I:
		return classItalic
	default:
		return classFallback
	}
}

// HTMLToMDX rewrites an HTML fragment into MDX. Top-level children render in
// block context and are joined with blank lines. A fragment that cannot be
// parsed yields an empty string; rewriting never aborts a page.
func HTMLToMDX(fragment string) string {
	if fragment == "" {
		return ""
	}

	nodes, err := parseFragment(fragment)
	if err != nil {
		slog.Warn("Skipping unparseable HTML fragment", logfields.Error(err))
		return ""
	}

	// Titles come from front-matter; drop h1 elements wherever they appear.
	nodes = dropH1(nodes)

	var blocks []string
	for _, n := range nodes {
		if s := renderBlock(n); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func parseFragment(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(fragment), ctx)
}

func dropH1(nodes []*html.Node) []*html.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.H1 {
			continue
		}
		removeDescendantH1(n)
		kept = append(kept, n)
	}
	return kept
}

func removeDescendantH1(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.H1 {
			n.RemoveChild(c)
		} else {
			removeDescendantH1(c)
		}
		c = next
	}
}

// renderBlock renders one top-level node in block context.
func renderBlock(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return ""
		}
		return EscapeText(text)
	case html.ElementNode:
		// handled below
	default:
		return ""
	}

	switch classify(n) {
	case classContainer:
		return renderDiv(n)
	case classLink:
		return renderLink(n)
	case classParagraph:
		return renderInlineChildren(n)
	case classHeading:
		level := int(n.Data[1] - '0')
		return strings.Repeat("#", level) + " " + flattenTextStripped(n)
	case classInlineCode:
		text := strings.TrimRight(flattenText(n), " \t\n\r")
		return "`" + text + "{:" + codeLanguage + "}`"
	case classCodeBlock:
		return renderCodeFence(n)
	case classTable:
		return renderTable(n)
	case classSpan:
		// A span that reached block dispatch unprocessed passes through raw.
		return renderRaw(n)
	case classPassthrough:
		// No Markdown equivalent for interactive disclosure; keep verbatim.
		return renderRaw(n)
	case classList:
		return renderList(n, 0)
	default:
		return renderInlineChildren(n)
	}
}

// renderInline renders a node in inline context: no block separators, text
// joinable with its surroundings.
func renderInline(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return EscapeText(strings.ReplaceAll(n.Data, "\n", " "))
	case html.ElementNode:
		// handled below
	default:
		return ""
	}

	switch classify(n) {
	case classImage:
		return renderImage(n)
	case classSpan:
		return renderRaw(n)
	case classLink:
		return renderLink(n)
	case classBold:
		return "**" + flattenText(n) + "**"
	case classItalic:
		return "_" + flattenText(n) + "_"
	case classInlineCode:
		return renderInlineCode(n)
	default:
		return renderInlineChildren(n)
	}
}

func renderInlineChildren(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(renderInline(c))
	}
	return b.String()
}

func renderInlineCode(n *html.Node) string {
	text := strings.TrimSpace(flattenText(n))
	text = strings.ReplaceAll(text, "{", "\\{")
	text = strings.ReplaceAll(text, "}", "\\}")
	// A code span holding a single backtick cannot be delimited by one.
	if text == "`" {
		return "```"
	}
	return "`" + text + "{:" + codeLanguage + "}`"
}

func renderLink(n *html.Node) string {
	href := strings.TrimLeft(attrVal(n, "href"), "/")
	text := strings.TrimSpace(renderInlineChildren(n))
	return "[" + text + "](" + href + ")"
}

func renderImage(n *html.Node) string {
	attrs := fmt.Sprintf("src=%q alt=%q", attrVal(n, "src"), attrVal(n, "alt"))
	if style := attrVal(n, "style"); style != "" {
		attrs += " style=" + styleToJSX(style)
	}
	if width := attrVal(n, "width"); width != "" {
		attrs += fmt.Sprintf(" width=%q", width)
	}
	if height := attrVal(n, "height"); height != "" {
		attrs += fmt.Sprintf(" height=%q", height)
	}
	return "<img " + attrs + " />"
}

func renderCodeFence(n *html.Node) string {
	code := strings.TrimRight(flattenText(n), " \t\n\r")
	return "```" + codeLanguage + "\n" + code + "\n```"
}

// renderDiv dispatches on marker classes; unmarked divs become generic JSX
// containers carrying their class list and transliterated style.
func renderDiv(n *html.Node) string {
	switch {
	case hasClass(n, "previewed-code"):
		return renderPreviewCode(n)
	case hasClass(n, "info-box"):
		return renderInfoBox(n)
	case hasClass(n, "footnote-definition"):
		return renderFootnoteDefinition(n)
	}

	children := renderInlineChildren(n)

	var attrs string
	if class := attrVal(n, "class"); class != "" {
		attrs += fmt.Sprintf(" className=%q", class)
	}
	if style := attrVal(n, "style"); style != "" {
		attrs += " style=" + styleToJSX(style)
	}
	return "<div" + attrs + ">\n" + children + "\n</div>"
}

// renderPreviewCode extracts the code block and preview image from a
// previewed-code container. Without an image it degrades to a plain fence;
// with one it becomes an editable preview widget whose code survives as a
// single template-literal attribute value.
func renderPreviewCode(n *html.Node) string {
	pre := firstElement(n, atom.Pre)
	if pre == nil {
		slog.Warn("Skipping preview block without a code element")
		return ""
	}
	code := strings.TrimRight(flattenText(pre), " \t\n\r")

	img := firstElement(n, atom.Img)
	if img == nil {
		return "```" + codeLanguage + "\n" + code + "\n```"
	}

	src := attrVal(img, "src")
	alt := attrVal(img, "alt")
	code = strings.ReplaceAll(code, "`", "\\`")
	code = indentLines(code, "  ")
	wrapped := "{`\n" + code + "\n`}"

	return "<TypstPreview\n  code=" + wrapped + "\n  image='" + src + "'\n  alt='" + alt + "'\n  editable={true}\n/>"
}

func renderInfoBox(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := renderBlock(c); s != "" {
			parts = append(parts, s)
		}
	}
	return "<Callout>\n" + strings.Join(parts, "\n\n") + "\n</Callout>"
}

func renderFootnoteDefinition(n *html.Node) string {
	id := attrVal(n, "id")
	if label := firstElementWithClass(n, "footnote-definition-label"); label != nil && label.Parent != nil {
		label.Parent.RemoveChild(label)
	}
	content := strings.TrimSpace(renderInlineChildren(n))
	return "[^" + id + "]: " + content
}

func renderList(n *html.Node, depth int) string {
	ordered := n.DataAtom == atom.Ol

	var items []string
	index := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		index++

		var parts []string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				// Nested lists slot in at their position within the item,
				// one indent level deeper.
				parts = append(parts, "\n"+renderList(c, depth+1))
				continue
			}
			if s := renderInline(c); s != "" {
				parts = append(parts, s)
			}
		}

		content := strings.TrimSpace(strings.Join(parts, ""))
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
		}
		items = append(items, strings.Repeat("  ", depth)+marker+content)
	}
	return strings.Join(items, "\n")
}

func renderTable(n *html.Node) string {
	var rows []string

	var headers []string
	thead := firstElement(n, atom.Thead)
	if thead != nil {
		if headerRow := firstElement(thead, atom.Tr); headerRow != nil {
			headers = tableCells(headerRow)
		}
	}
	if len(headers) > 0 {
		rows = append(rows, "| "+strings.Join(headers, " | ")+" |")
		sep := make([]string, len(headers))
		for i := range sep {
			sep[i] = "---"
		}
		rows = append(rows, "| "+strings.Join(sep, " | ")+" |")
	}

	trSource := n
	if tbody := firstElement(n, atom.Tbody); tbody != nil {
		trSource = tbody
	}
	for tr := trSource.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.DataAtom != atom.Tr {
			continue
		}
		// Short rows stay short; no padding to the header width.
		if cells := tableCells(tr); len(cells) > 0 {
			rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		}
	}

	return strings.Join(rows, "\n")
}

func tableCells(tr *html.Node) []string {
	var cells []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
				content := strings.TrimSpace(renderInlineChildren(c))
				cells = append(cells, strings.ReplaceAll(content, "\n", " "))
				continue
			}
			walk(c)
		}
	}
	walk(tr)
	return cells
}

// flattenText concatenates the raw text of all descendant text nodes.
func flattenText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(flattenText(c))
	}
	return b.String()
}

// flattenTextStripped concatenates descendant text nodes, trimming each.
func flattenTextStripped(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(flattenTextStripped(c))
	}
	return b.String()
}

func renderRaw(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		slog.Warn("Failed to serialize passthrough element", logfields.Tag(n.Data), logfields.Error(err))
		return ""
	}
	return buf.String()
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

func firstElement(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := firstElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func firstElementWithClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, class) {
			return c
		}
		if found := firstElementWithClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func indentLines(s string, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
