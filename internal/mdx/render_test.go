package mdx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/typdocs/internal/docjson"
)

func TestRenderBody_UnknownKind_EmptyOutput(t *testing.T) {
	require.Equal(t, "", RenderBody("weird", json.RawMessage(`{}`)))
}

func TestRenderBody_UndecodablePayload_EmptyOutput(t *testing.T) {
	require.Equal(t, "", RenderBody(docjson.KindFunc, json.RawMessage(`"not an object"`)))
}

func TestRenderBody_HTMLString(t *testing.T) {
	got := RenderBody(docjson.KindHTML, json.RawMessage(`"<p>Hello <strong>World</strong></p>"`))
	require.Equal(t, "Hello **World**", got)
}

func TestRenderGeneric_Empty_ReturnsEmpty(t *testing.T) {
	require.Equal(t, "", RenderGeneric(nil))
	require.Equal(t, "", RenderGeneric(json.RawMessage(`null`)))
	require.Equal(t, "", RenderGeneric(json.RawMessage(`""`)))
}

func TestRenderGeneric_SegmentSequence_JoinedWithBlankLine(t *testing.T) {
	raw := json.RawMessage(`[
		{"kind":"html","content":"<p>A</p>"},
		{"kind":"example","content":{"body":"<p>B</p>"}}
	]`)
	require.Equal(t, "A\n\nB", RenderGeneric(raw))
}

func TestRenderGeneric_PlainStringArray(t *testing.T) {
	raw := json.RawMessage(`["<p>A</p>", "<p>B</p>"]`)
	require.Equal(t, "A\n\nB", RenderGeneric(raw))
}

func TestRenderBody_Symbols_TableWithFallbacks(t *testing.T) {
	payload := json.RawMessage(`{
		"details": "<p>Sym</p>",
		"list": [
			{"name": "alpha", "value": "α", "mathClass": "Normal"},
			{"name": "beta", "codepoint": 946, "mathShorthand": "β"}
		]
	}`)

	want := "Sym\n\n" +
		"| Symbol | Name | Math Class |\n" +
		"| ----- | ----- | ----- |\n" +
		"| α | alpha | Normal |\n" +
		"| 946 | beta | β |\n"
	require.Equal(t, want, RenderBody(docjson.KindSymbols, payload))
}

func TestRenderBody_Category_DefinitionsTable(t *testing.T) {
	payload := json.RawMessage(`{
		"details": "<p>Layout functions.</p>",
		"items": [
			{"name": "align", "route": "/reference/layout/align/", "oneliner": "Aligns content."}
		]
	}`)

	got := RenderBody(docjson.KindCategory, payload)
	require.Contains(t, got, "Layout functions.\n\n## Definitions\n\n<table>")
	require.Contains(t, got, `<td><code><a href="/reference/layout/align/">align</a></code></td>`)
	require.Contains(t, got, "<td>Aligns content.</td>")
}

func TestRenderBody_Category_NoItems_DetailsOnly(t *testing.T) {
	payload := json.RawMessage(`{"details": "<p>Just prose.</p>", "items": []}`)
	require.Equal(t, "Just prose.", RenderBody(docjson.KindCategory, payload))
}

func TestRenderFunc_SignatureParamsAndReturn(t *testing.T) {
	f := docjson.Func{
		Name:    "min",
		Path:    []string{"calc"},
		Details: json.RawMessage(`"<p>Minimum.</p>"`),
		Params: []docjson.Param{
			{Name: "values", Types: []string{"int", "float"}, Details: json.RawMessage(`"<p>Vals.</p>"`)},
			{Name: "key", Named: true, Types: []string{"function"}},
		},
		Returns: []string{"int"},
	}

	got := RenderFunc(f, 2)
	require.Contains(t, got, "Minimum.")
	require.Contains(t, got, "\n## Parameters\n\n")
	require.Contains(t, got, "```typst\n#calc.min(\n  values,\n  key: function\n) -> int\n```")
	require.Contains(t, got, "### values (int | float)\n\nVals.")
	require.Contains(t, got, "### key (function)")
}

func TestRenderFunc_Scope_DeepensHeadings(t *testing.T) {
	f := docjson.Func{
		Name:    "outer",
		Details: json.RawMessage(`"<p>Outer.</p>"`),
		Scope: []docjson.Func{
			{Name: "inner", Details: json.RawMessage(`"<p>Inner.</p>"`)},
		},
	}

	got := RenderFunc(f, 2)
	require.Contains(t, got, "\n### Definitions\n")
	require.Contains(t, got, "Inner.")
}

func TestRenderFunc_Example_Rendered(t *testing.T) {
	f := docjson.Func{
		Name:    "demo",
		Details: json.RawMessage(`"<p>D.</p>"`),
		Example: json.RawMessage(`{"body": "<pre><code>#demo()</code></pre>"}`),
	}

	got := RenderFunc(f, 2)
	require.Contains(t, got, "\n**Example:**\n```typst\n#demo()\n```\n")
}

func TestRenderBody_Type_ConstructorAndMethods(t *testing.T) {
	payload := json.RawMessage(`{
		"details": "<p>A color.</p>",
		"constructor": {"name": "rgb", "details": "<p>Make one.</p>"},
		"scope": [{"name": "darken", "details": "<p>Darker.</p>"}]
	}`)

	got := RenderBody(docjson.KindType, payload)
	require.Contains(t, got, "A color.")
	require.Contains(t, got, "## Constructor\n")
	require.Contains(t, got, "Make one.")
	require.Contains(t, got, "\n## Methods\n")
	require.Contains(t, got, "Darker.")
}

func TestRenderBody_Group_FunctionsAppended(t *testing.T) {
	payload := json.RawMessage(`{
		"details": "<p>Calc group.</p>",
		"functions": [{"name": "abs", "details": "<p>Absolute.</p>"}]
	}`)

	got := RenderBody(docjson.KindGroup, payload)
	require.Contains(t, got, "Calc group.")
	require.Contains(t, got, "Absolute.")
}
