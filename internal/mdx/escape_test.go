package mdx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeText_MarkupCharacters_Escaped(t *testing.T) {
	require.Equal(t, `2 \* 3 \{x\}`, EscapeText("2 * 3 {x}"))
	require.Equal(t, `a \< b \> c`, EscapeText("a < b > c"))
	require.Equal(t, `snake\_case \& co`, EscapeText("snake_case & co"))
	require.Equal(t, "a \\` b", EscapeText("a ` b"))
}

func TestEscapeText_Backslash_NotDoubleEscaped(t *testing.T) {
	// The backslash rewrite must not re-escape characters escaped after it.
	require.Equal(t, `\\\*`, EscapeText(`\*`))
	require.Equal(t, `\\n`, EscapeText(`\n`))
}

func TestEscapeText_PlainText_Unchanged(t *testing.T) {
	require.Equal(t, "hello world", EscapeText("hello world"))
}

func TestEscapeTableCell_SpecialCharacters_Escaped(t *testing.T) {
	require.Equal(t, `\|\-\"`, EscapeTableCell(`|-"`))
	require.Equal(t, `\'\\\{\}`, EscapeTableCell(`'\{}`))
	require.Equal(t, "α", EscapeTableCell("α"))
}

func TestEscapeAttrString_QuotesAndNewlines(t *testing.T) {
	require.Equal(t, `it\'s fine`, escapeAttrString("it's fine"))
	require.Equal(t, "one two", escapeAttrString("one\ntwo"))
	require.Equal(t, `a\\b`, escapeAttrString(`a\b`))
	require.Equal(t, "", escapeAttrString(""))
}

func TestEscapeQuotes_DoubleQuotesEscaped(t *testing.T) {
	require.Equal(t, `say \"hi\"`, escapeQuotes(`say "hi"`))
}
