package mdx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLToMDX_Empty_ReturnsEmpty(t *testing.T) {
	require.Equal(t, "", HTMLToMDX(""))
}

func TestHTMLToMDX_H1_Dropped(t *testing.T) {
	require.Equal(t, "Hello", HTMLToMDX("<h1>Title</h1><p>Hello</p>"))
}

func TestHTMLToMDX_HeadingLevels_HashPrefixes(t *testing.T) {
	require.Equal(t, "## Intro", HTMLToMDX("<h2>Intro</h2>"))
	require.Equal(t, "#### Deep", HTMLToMDX("<h4>Deep</h4>"))
	require.Equal(t, "###### Edge", HTMLToMDX("<h6>Edge</h6>"))
}

func TestHTMLToMDX_Paragraph_InlineEmphasis(t *testing.T) {
	got := HTMLToMDX("<p>Hello <strong>World</strong> and <em>more</em></p>")
	require.Equal(t, "Hello **World** and _more_", got)
}

func TestHTMLToMDX_Blocks_JoinedWithBlankLine(t *testing.T) {
	require.Equal(t, "A\n\nB", HTMLToMDX("<p>A</p><p>B</p>"))
}

func TestHTMLToMDX_Text_Escaped(t *testing.T) {
	require.Equal(t, `2 \* 3 \{x\}`, HTMLToMDX("<p>2 * 3 {x}</p>"))
}

func TestHTMLToMDX_InlineCode_LanguageAnnotated(t *testing.T) {
	require.Equal(t, "Use `set{:typst}`", HTMLToMDX("<p>Use <code>set</code></p>"))
}

func TestHTMLToMDX_InlineCode_BracesEscaped(t *testing.T) {
	require.Equal(t, "`\\{a\\}{:typst}`", HTMLToMDX("<p><code>{a}</code></p>"))
}

func TestHTMLToMDX_InlineCode_SingleBacktick(t *testing.T) {
	require.Equal(t, "```", HTMLToMDX("<p><code>`</code></p>"))
}

func TestHTMLToMDX_CodeBlock_Fenced(t *testing.T) {
	got := HTMLToMDX("<pre><code>let x = 1</code></pre>")
	require.Equal(t, "```typst\nlet x = 1\n```", got)
}

func TestHTMLToMDX_Link_LeadingSlashesTrimmed(t *testing.T) {
	got := HTMLToMDX(`<a href="/reference/styling/">styling</a>`)
	require.Equal(t, "[styling](reference/styling/)", got)
}

func TestHTMLToMDX_NestedList_IndentedTwoSpaces(t *testing.T) {
	got := HTMLToMDX("<ul><li>A</li><li>B<ul><li>C</li></ul></li></ul>")
	require.Equal(t, "- A\n- B\n  - C", got)
}

func TestHTMLToMDX_OrderedList_Numbered(t *testing.T) {
	got := HTMLToMDX("<ol><li>X</li><li>Y</li></ol>")
	require.Equal(t, "1. X\n2. Y", got)
}

func TestHTMLToMDX_Table_HeaderAndSeparator(t *testing.T) {
	input := "<table><thead><tr><th>A</th><th>B</th></tr></thead>" +
		"<tbody><tr><td>1</td><td>2</td></tr></tbody></table>"
	require.Equal(t, "| A | B |\n| --- | --- |\n| 1 | 2 |", HTMLToMDX(input))
}

func TestHTMLToMDX_Table_RaggedRowsKept(t *testing.T) {
	input := "<table><thead><tr><th>A</th><th>B</th></tr></thead>" +
		"<tbody><tr><td>1</td><td>2</td></tr><tr><td>only</td></tr></tbody></table>"
	require.Equal(t, "| A | B |\n| --- | --- |\n| 1 | 2 |\n| only |", HTMLToMDX(input))
}

func TestHTMLToMDX_Table_CellNewlinesFlattened(t *testing.T) {
	input := "<table><tbody><tr><td>one\ntwo</td></tr></tbody></table>"
	require.Equal(t, "| one two |", HTMLToMDX(input))
}

func TestHTMLToMDX_Image_AttributesPreserved(t *testing.T) {
	got := HTMLToMDX(`<p><img src="/a.png" alt="x" width="50"/></p>`)
	require.Equal(t, `<img src="/a.png" alt="x" width="50" />`, got)
}

func TestHTMLToMDX_Image_StyleTransliterated(t *testing.T) {
	got := HTMLToMDX(`<p><img src="/a.png" alt="" style="width: 40%"/></p>`)
	require.Equal(t, `<img src="/a.png" alt="" style={{width: '40%'}} />`, got)
}

func TestHTMLToMDX_Span_PassedThroughRaw(t *testing.T) {
	got := HTMLToMDX(`<p>text <span class="typ-math">x</span></p>`)
	require.Equal(t, `text <span class="typ-math">x</span>`, got)
}

func TestHTMLToMDX_Details_PassedThroughRaw(t *testing.T) {
	input := "<details><summary>More</summary></details>"
	require.Equal(t, input, HTMLToMDX(input))
}

func TestHTMLToMDX_InfoBox_BecomesCallout(t *testing.T) {
	got := HTMLToMDX(`<div class="info-box"><p>Note this</p></div>`)
	require.Equal(t, "<Callout>\nNote this\n</Callout>", got)
}

func TestHTMLToMDX_FootnoteDefinition_LabelStripped(t *testing.T) {
	input := `<div class="footnote-definition" id="1">` +
		`<span class="footnote-definition-label">1</span><p>Note text</p></div>`
	require.Equal(t, "[^1]: Note text", HTMLToMDX(input))
}

func TestHTMLToMDX_GenericDiv_JSXContainer(t *testing.T) {
	got := HTMLToMDX(`<div class="wrap" style="font-size: 10px">text</div>`)
	require.Equal(t,
		"<div className=\"wrap\" style={{fontSize: '10px'}}>\ntext\n</div>",
		got)
}

func TestHTMLToMDX_PreviewCode_WithImage_Widget(t *testing.T) {
	input := `<div class="previewed-code"><pre><code>#set text(red)</code></pre>` +
		`<div class="preview"><img src="/assets/x.png" alt="Preview"/></div></div>`

	want := "<TypstPreview\n" +
		"  code={`\n" +
		"  #set text(red)\n" +
		"`}\n" +
		"  image='/assets/x.png'\n" +
		"  alt='Preview'\n" +
		"  editable={true}\n" +
		"/>"
	require.Equal(t, want, HTMLToMDX(input))
}

func TestHTMLToMDX_PreviewCode_BackticksEscapedInWidget(t *testing.T) {
	input := `<div class="previewed-code"><pre><code>` +
		"`raw`" +
		`</code></pre><img src="/p.png" alt=""/></div>`
	got := HTMLToMDX(input)
	require.Contains(t, got, "  \\`raw\\`")
}

func TestHTMLToMDX_PreviewCode_WithoutImage_PlainFence(t *testing.T) {
	input := `<div class="previewed-code"><pre><code>#let x = 1</code></pre></div>`
	require.Equal(t, "```typst\n#let x = 1\n```", HTMLToMDX(input))
}

func TestHTMLToMDX_PreviewCode_WithoutCode_Empty(t *testing.T) {
	require.Equal(t, "", HTMLToMDX(`<div class="previewed-code"><p>no code</p></div>`))
}

func TestHTMLToMDX_MixedDocument_EndToEnd(t *testing.T) {
	input := "<h1>Page</h1>" +
		"<p>Intro with <code>code</code>.</p>" +
		"<h2>Section</h2>" +
		"<ul><li>one</li><li>two</li></ul>"
	want := "Intro with `code{:typst}`.\n\n" +
		"## Section\n\n" +
		"- one\n- two"
	require.Equal(t, want, HTMLToMDX(input))
}
