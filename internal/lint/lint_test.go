package lint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckBody_ValidLinks_NoFindings(t *testing.T) {
	body := []byte("# Title\n\nSee [the tutorial](tutorial/basics) and ![img](assets/x.png).\n")
	require.Empty(t, CheckBody("reference/text", body))
}

func TestCheckBody_EmptyLinkDestination_Flagged(t *testing.T) {
	findings := CheckBody("reference/text", []byte("A [broken]() link.\n"))

	require.Len(t, findings, 1)
	require.Equal(t, "reference/text", findings[0].Route)
	require.Contains(t, findings[0].Message, "link")
}

func TestCheckBody_EmptyImageSource_Flagged(t *testing.T) {
	findings := CheckBody("tutorial", []byte("![missing]()\n"))

	require.Len(t, findings, 1)
	require.Contains(t, findings[0].Message, "image")
}

func TestCheckBody_EmptyBody_NoFindings(t *testing.T) {
	require.Empty(t, CheckBody("x", nil))
}

func TestFinding_String_IncludesRoute(t *testing.T) {
	f := Finding{Route: "tutorial", Message: "link with empty destination"}
	require.Equal(t, "tutorial: link with empty destination", f.String())
}
