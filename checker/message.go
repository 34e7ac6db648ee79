package checker

import "strings"

const (
	titlePrefix = "New Folia version `"
	titleSuffix = "`"
)

// Title returns the issue title announcing version.
func Title(version string) string {
	return titlePrefix + version + titleSuffix
}

// Body returns the issue body announcing version.
func Body(version string) string {
	return "Version `" + version + "` is not supported by this " +
		"repository yet. Please add support for this version."
}

// ExtractVersion returns the version announced by an issue
// title produced by Title.
func ExtractVersion(title string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(title), titlePrefix)
	if !ok {
		return "", false
	}

	v, ok := strings.CutSuffix(rest, titleSuffix)
	if !ok || v == "" || strings.Contains(v, "`") {
		return "", false
	}

	return v, true
}
