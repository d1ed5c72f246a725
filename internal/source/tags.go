package source

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionTags filters tag names down to stable release tags at or above
// minVersion, sorted ascending. Prerelease tags and anything that does not
// parse as a version are dropped. minVersion may be given with or without a
// leading "v".
func VersionTags(tags []string, minVersion string) []string {
	min := minVersion
	if min != "" && !strings.HasPrefix(min, "v") {
		min = "v" + min
	}

	var releases []string
	for _, tag := range tags {
		v := tag
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) || semver.Prerelease(v) != "" {
			continue
		}
		if min != "" && semver.Compare(v, min) < 0 {
			continue
		}
		releases = append(releases, tag)
	}

	sort.Slice(releases, func(i, j int) bool {
		return semver.Compare(normalize(releases[i]), normalize(releases[j])) < 0
	})
	return releases
}

// VersionFromTag strips the conventional "v" prefix from a release tag.
func VersionFromTag(tag string) string {
	return strings.TrimPrefix(tag, "v")
}

func normalize(tag string) string {
	if strings.HasPrefix(tag, "v") {
		return tag
	}
	return "v" + tag
}
