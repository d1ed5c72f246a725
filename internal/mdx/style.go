package mdx

import "strings"

// styleToJSX transliterates an inline CSS style attribute into a JSX style
// object: kebab-case properties become camelCase keys, values are
// single-quoted with internal quotes escaped.
//
//	"font-size: 10px; color: red" -> "{{fontSize: '10px', color: 'red'}}"
func styleToJSX(style string) string {
	if style == "" {
		return ""
	}

	var props []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = camelCase(strings.TrimSpace(prop))
		val = strings.ReplaceAll(strings.TrimSpace(val), "'", "\\'")
		props = append(props, prop+": '"+val+"'")
	}

	return "{{" + strings.Join(props, ", ") + "}}"
}

func camelCase(prop string) string {
	if !strings.Contains(prop, "-") {
		return prop
	}
	parts := strings.Split(prop, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
