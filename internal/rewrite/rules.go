// internal/rewrite/rules.go
package rewrite

import (
	"strings"
	"unicode"

	"github.com/gagin/versionmask/internal/pattern"
)

// Rule names, as reported in Decision.Rule.
const (
	RulePluginsClause     = "plugins-clause"
	RuleVersionAssignment = "version-assignment"
	RuleDenylist          = "denylist"
	RuleVersionToken      = "version-token"
	RuleNoMatch           = "no-match"
)

// Rule is one step of the decision cascade. The first rule whose Match returns true
// decides the line.
type Rule struct {
	Name  string
	Match func(lib *pattern.Library, l Line) bool
	Apply func(lib *pattern.Library, text string) string
}

func keep(_ *pattern.Library, text string) string { return text }

// DefaultRules is the cascade applied to every line.
var DefaultRules = []Rule{
	{
		Name:  RulePluginsClause,
		Match: func(_ *pattern.Library, l Line) bool { return l.InPlugins },
		Apply: func(lib *pattern.Library, text string) string {
			return lib.PluginVersionClause.ReplaceAllLiteralString(text, "")
		},
	},
	{
		Name: RuleVersionAssignment,
		Match: func(_ *pattern.Library, l Line) bool {
			return strings.HasPrefix(strings.TrimLeftFunc(l.Text, unicode.IsSpace), pattern.VersionAssignmentPrefix)
		},
		Apply: keep,
	},
	{
		Name: RuleDenylist,
		Match: func(lib *pattern.Library, l Line) bool {
			_, hit := lib.Denylisted(l.Text)
			return hit
		},
		Apply: keep,
	},
	{
		Name:  RuleVersionToken,
		Match: func(lib *pattern.Library, l Line) bool { return lib.VersionToken.MatchString(l.Text) },
		Apply: func(lib *pattern.Library, text string) string {
			return lib.VersionToken.ReplaceAllString(text, pattern.VersionTokenReplacement)
		},
	},
	{
		Name:  RuleNoMatch,
		Match: func(*pattern.Library, Line) bool { return true },
		Apply: keep,
	},
}
