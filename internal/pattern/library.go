// internal/pattern/library.go
package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholder is written in place of every masked version.
const Placeholder = "_"

// PluginsOpen is searched for in the whitespace-collapsed line.
const PluginsOpen = "plugins {"

// PluginsClose ends a plugins block.
const PluginsClose = "}"

// VersionAssignmentPrefix marks a top-level project/group version assignment.
const VersionAssignmentPrefix = "version"

const qualifier = `(?:[.-]?(?:alpha|beta|rc|eap|ALPHA|BETA|RC|EAP|RELEASE|Final|M)[-.]?\d*)?`

const numericVersion = `(?:\d+\.){1,2}\d+`

// propertyPath matches versions.kotlin, rootProject.ext.kotlin_version and similar.
const propertyPath = `(?:versions|rootProject)(?:\.\w+)+`

var versionPayload = strings.Join([]string{
	`\$\w+ersion`,
	`\$\{\w+ersion\}`,
	`\$\w*VERSION`,
	`\$\{\w*VERSION\}`,
	`\$` + propertyPath,
	`\$\{` + propertyPath + `\}`,
	numericVersion,
}, "|")

// VersionToken matches a quoted version literal or interpolation. Group 1 is the opening
// delimiter (quote or colon), group 2 the closing quote.
var VersionToken = regexp.MustCompile(`(['":])(?:` + versionPayload + `)` + qualifier + `(["'])`)

// VersionTokenReplacement keeps both delimiters around the placeholder.
const VersionTokenReplacement = "${1}" + Placeholder + "${2}"

// PluginVersionClause matches ` version "1.4.0"`, `.version("1.4.0")` and friends,
// including the whitespace or dot in front of the keyword.
var PluginVersionClause = regexp.MustCompile(`[ \t.]*version[ \t]*\(?[ \t]*['"]` + numericVersion + `['"](?:[ \t]*\))?`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces every whitespace run with a single space.
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// DefaultDenylist lists keywords of non-dependency version usages (SDK, tool and
// compatibility versions). A line containing any of them is never rewritten.
var DefaultDenylist = []string{
	"jvmTarget",
	"versionName",
	"useVersion",
	"gradleVersion",
	"gradleLatestVersion",
	"toolVersion",
	"ndkVersion",
	"force",
	"targetCompatibility",
	"sourceCompatibility",
}

// BuildFileExtensions are the extensions of files that may hold dependency notations.
var BuildFileExtensions = []string{"gradle", "kts", "groovy", "kt"}

// BuildFileNames are the lower-cased file names, extension removed, that may hold
// dependency notations.
var BuildFileNames = []string{"build", "build.gradle", "deps", "dependencies", "libs", "libraries", "versions"}

// Library bundles the matchers used by the rewriter. It is not modified after
// NewLibrary returns and is safe for concurrent use.
type Library struct {
	VersionToken        *regexp.Regexp
	PluginVersionClause *regexp.Regexp
	denylist            []string
}

// Default is the library without any configured extras.
var Default = NewLibrary()

// NewLibrary returns the default patterns with extra denylist keywords appended.
// Blank and duplicate keywords are dropped.
func NewLibrary(extraDenylist ...string) *Library {
	seen := make(map[string]struct{}, len(DefaultDenylist)+len(extraDenylist))
	deny := make([]string, 0, len(DefaultDenylist)+len(extraDenylist))
	for _, kw := range append(append([]string{}, DefaultDenylist...), extraDenylist...) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		deny = append(deny, kw)
	}
	return &Library{
		VersionToken:        VersionToken,
		PluginVersionClause: PluginVersionClause,
		denylist:            deny,
	}
}

// Denylisted reports the first denylist keyword found in line.
func (l *Library) Denylisted(line string) (string, bool) {
	for _, kw := range l.denylist {
		if strings.Contains(line, kw) {
			return kw, true
		}
	}
	return "", false
}

// Denylist returns a sorted copy of the keywords.
func (l *Library) Denylist() []string {
	out := append([]string{}, l.denylist...)
	sort.Strings(out)
	return out
}

// IsBuildFile applies the name policy to a base file name.
func IsBuildFile(baseName string) bool {
	dot := strings.LastIndex(baseName, ".")
	if dot < 0 {
		return false
	}
	ext, name := baseName[dot+1:], strings.ToLower(baseName[:dot])
	return contains(BuildFileExtensions, ext) && contains(BuildFileNames, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
