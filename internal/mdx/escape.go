package mdx

import "strings"

// textEscaper rewrites characters MDX would otherwise interpret as markup or
// JSX. Backslash must come first so later escapes are not double-escaped.
var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"&", "\\&",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
)

// EscapeText escapes a raw text node for emission into MDX. Code blocks and
// verbatim passthrough content must not go through here.
func EscapeText(text string) string {
	return textEscaper.Replace(text)
}

// tableCellSpecials are the characters that would break a Markdown table cell
// or be read as inline markup inside one. A narrower rule than EscapeText;
// used for symbol-table cells whose content is arbitrary glyph data.
const tableCellSpecials = "|`'\"\\{}<>-"

// EscapeTableCell backslash-prefixes table-breaking characters in a cell.
func EscapeTableCell(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(tableCellSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeAttrString escapes a string for embedding inside a single-quoted
// JS attribute value: backslashes and quotes are escaped, newlines collapse
// to spaces so the attribute stays on one line.
func escapeAttrString(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "'", "\\'")
	return strings.ReplaceAll(text, "\n", " ")
}

// escapeQuotes escapes double quotes for front-matter values.
func escapeQuotes(text string) string {
	return strings.ReplaceAll(text, `"`, `\"`)
}
