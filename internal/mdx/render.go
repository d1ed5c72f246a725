package mdx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/typdocs/internal/docjson"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
)

// RenderBody renders a page body of the given kind into MDX. Unknown kinds
// and undecodable payloads degrade to empty output with a logged warning;
// body rendering never fails a page.
func RenderBody(kind string, content json.RawMessage) string {
	switch kind {
	case docjson.KindHTML:
		return RenderGeneric(content)
	case docjson.KindCategory:
		var c docjson.Category
		if !decodePayload(kind, content, &c) {
			return ""
		}
		return renderCategory(c)
	case docjson.KindSymbols:
		var s docjson.Symbols
		if !decodePayload(kind, content, &s) {
			return ""
		}
		return renderSymbols(s)
	case docjson.KindFunc:
		var f docjson.Func
		if !decodePayload(kind, content, &f) {
			return ""
		}
		return RenderFunc(f, 2)
	case docjson.KindGroup:
		var g docjson.Group
		if !decodePayload(kind, content, &g) {
			return ""
		}
		return renderGroup(g)
	case docjson.KindType:
		var t docjson.Type
		if !decodePayload(kind, content, &t) {
			return ""
		}
		return renderType(t)
	default:
		slog.Warn("Skipping unsupported body type", logfields.BodyKind(kind))
		return ""
	}
}

func decodePayload(kind string, content json.RawMessage, out any) bool {
	if err := json.Unmarshal(content, out); err != nil {
		slog.Warn("Skipping undecodable body payload", logfields.BodyKind(kind), logfields.Error(err))
		return false
	}
	return true
}

// genericSegment is one entry of a segmented generic fragment.
type genericSegment struct {
	Kind    string          `json:"kind"`
	Content json.RawMessage `json:"content"`
}

// RenderGeneric renders a generic fragment value: either a raw HTML string or
// an ordered sequence of html/example segments. Example segments carry the
// fragment under a nested body field.
func RenderGeneric(raw json.RawMessage) string {
	if !rawPresent(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return HTMLToMDX(s)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}

	var parts []string
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			parts = append(parts, HTMLToMDX(str))
			continue
		}

		var seg genericSegment
		if err := json.Unmarshal(item, &seg); err != nil {
			continue
		}
		kind := seg.Kind
		if kind == "" {
			kind = docjson.KindHTML
		}
		switch kind {
		case docjson.KindHTML:
			var content string
			_ = json.Unmarshal(seg.Content, &content)
			parts = append(parts, HTMLToMDX(content))
		case "example":
			var ex docjson.Example
			_ = json.Unmarshal(seg.Content, &ex)
			parts = append(parts, HTMLToMDX(ex.Body))
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderCategory(c docjson.Category) string {
	details := RenderGeneric(c.Details)
	if len(c.Items) == 0 {
		return details
	}

	rows := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		rows = append(rows,
			"    <tr>\n"+
				"      <td width=\"20px\" align=\"center\">—</td>\n"+
				fmt.Sprintf("      <td><code><a href=%q>%s</a></code></td>\n", item.Route, item.Name)+
				"      <td>"+item.Oneliner+"</td>\n"+
				"    </tr>")
	}

	table := "<table>\n" +
		"  <thead>\n" +
		"    <tr>\n" +
		"      <th width=\"20px\"></th>\n" +
		"      <th align=\"left\">Name</th>\n" +
		"      <th align=\"left\">Description</th>\n" +
		"    </tr>\n" +
		"  </thead>\n" +
		"  <tbody>\n" +
		strings.Join(rows, "\n") + "\n" +
		"  </tbody>\n" +
		"</table>"

	return details + "\n\n## Definitions\n\n" + table + "\n"
}

func renderSymbols(s docjson.Symbols) string {
	var b strings.Builder
	b.WriteString(RenderGeneric(s.Details))
	b.WriteString("\n\n")
	b.WriteString("| Symbol | Name | Math Class |\n")
	b.WriteString("| ----- | ----- | ----- |\n")

	for _, sym := range s.List {
		value := sym.Value
		if value == "" {
			value = rawScalarString(sym.Codepoint)
		}
		mathClass := sym.MathClass
		if mathClass == "" {
			mathClass = sym.MathShorthand
		}
		b.WriteString("| " + EscapeTableCell(value) + " | " + sym.Name + " | " + EscapeTableCell(mathClass) + " |\n")
	}
	return b.String()
}

func renderGroup(g docjson.Group) string {
	var b strings.Builder
	b.WriteString(RenderGeneric(g.Details))
	b.WriteString("\n\n")
	for _, f := range g.Functions {
		b.WriteString(RenderFunc(f, 2))
	}
	return b.String()
}

func renderType(t docjson.Type) string {
	var b strings.Builder
	b.WriteString(RenderGeneric(t.Details))
	b.WriteString("\n\n")

	if t.Constructor != nil {
		b.WriteString("## Constructor\n")
		b.WriteString(RenderFunc(*t.Constructor, 3))
	}
	if len(t.Scope) > 0 {
		b.WriteString("\n## Methods\n")
		for _, m := range t.Scope {
			b.WriteString(RenderFunc(m, 3))
		}
	}
	return b.String()
}

// RenderFunc renders a documented function at the given heading level. The
// level threads through recursion into nested scopes, one deeper per level.
func RenderFunc(f docjson.Func, headingLevel int) string {
	head := strings.Repeat("#", headingLevel)
	dottedPath := strings.Join(append(append([]string{}, f.Path...), f.Name), ".")

	var b strings.Builder
	b.WriteString(RenderGeneric(f.Details))
	b.WriteString("\n\n")

	if len(f.Params) > 0 {
		b.WriteString("\n" + head + " Parameters\n\n")

		sigParams := make([]string, 0, len(f.Params))
		for _, p := range f.Params {
			param := "  " + p.Name
			if p.Named {
				param += ": " + strings.Join(p.Types, " | ")
			}
			sigParams = append(sigParams, param)
		}
		signature := "#" + dottedPath + "(\n" + strings.Join(sigParams, ",\n") + "\n)"
		if len(f.Returns) > 0 {
			signature += " -> " + strings.Join(f.Returns, " ")
		}
		b.WriteString("```" + codeLanguage + "\n" + signature + "\n```\n\n")
		b.WriteString(renderParams(f.Params))
	}

	if rawPresent(f.Example) {
		b.WriteString("\n**Example:**\n")
		b.WriteString(renderExample(f.Example))
		b.WriteString("\n")
	}

	if len(f.Scope) > 0 {
		b.WriteString("\n" + head + "# Definitions\n")
		for _, sub := range f.Scope {
			b.WriteString(RenderFunc(sub, headingLevel+1))
		}
	}
	return b.String()
}

func renderParams(params []docjson.Param) string {
	if len(params) == 0 {
		return ""
	}

	entries := make([]string, 0, len(params))
	for _, p := range params {
		types := strings.Join(p.Types, " | ")
		if types == "" {
			types = "any"
		}
		description := strings.TrimSpace(RenderGeneric(p.Details))
		defaultStr := ""
		if def := RenderGeneric(p.Default); def != "" {
			defaultStr = "Default: " + def
		}
		entries = append(entries, "### "+p.Name+" ("+types+")\n\n"+description+"\n\n"+defaultStr)
	}
	return strings.Join(entries, "\n\n") + "\n"
}

// renderExample prefers a structured example's body field, falling back to
// generic rendering.
func renderExample(raw json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		if bodyRaw, ok := fields["body"]; ok {
			var body string
			_ = json.Unmarshal(bodyRaw, &body)
			return HTMLToMDX(body)
		}
	}
	return RenderGeneric(raw)
}

// rawPresent reports whether a raw JSON value holds renderable content.
// Absent fields, nulls, and empty strings/objects/arrays all count as empty.
func rawPresent(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", `""`, "{}", "[]":
		return false
	}
	return true
}

// rawScalarString formats a raw JSON scalar the way it should appear in a
// table cell: strings verbatim, integral numbers without an exponent.
func rawScalarString(raw json.RawMessage) string {
	if !rawPresent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strings.Trim(string(raw), `"`)
}
