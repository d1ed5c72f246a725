package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionTags_FiltersAndSortsAscending(t *testing.T) {
	tags := []string{"v0.13.1", "v0.10.0", "v0.11.0", "v0.12.0-rc1", "nightly"}

	got := VersionTags(tags, "0.11.0")
	require.Equal(t, []string{"v0.11.0", "v0.13.1"}, got)
}

func TestVersionTags_PrereleasesDropped(t *testing.T) {
	got := VersionTags([]string{"v0.12.0-rc1", "v0.12.0"}, "0.11.0")
	require.Equal(t, []string{"v0.12.0"}, got)
}

func TestVersionTags_MinVersionWithPrefix(t *testing.T) {
	got := VersionTags([]string{"v0.10.0", "v0.11.0"}, "v0.11.0")
	require.Equal(t, []string{"v0.11.0"}, got)
}

func TestVersionTags_NoMinimum_KeepsAllReleases(t *testing.T) {
	got := VersionTags([]string{"v0.2.0", "v0.1.0"}, "")
	require.Equal(t, []string{"v0.1.0", "v0.2.0"}, got)
}

func TestVersionFromTag_StripsPrefix(t *testing.T) {
	require.Equal(t, "0.12.0", VersionFromTag("v0.12.0"))
	require.Equal(t, "0.12.0", VersionFromTag("0.12.0"))
}
