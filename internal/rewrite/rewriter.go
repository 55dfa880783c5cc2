// internal/rewrite/rewriter.go
package rewrite

import (
	"log/slog"

	"github.com/gagin/versionmask/internal/pattern"
)

// Decision is the outcome of classifying one line. Replaced is set only when Text
// differs from the input line.
type Decision struct {
	Text     string
	Replaced bool
	Rule     string
}

// Change records a replaced line of a file.
type Change struct {
	Index  int    `yaml:"index"`
	Rule   string `yaml:"rule"`
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// Rewriter applies an ordered rule cascade over a pattern library. It holds no mutable
// state and can be shared between goroutines.
type Rewriter struct {
	lib   *pattern.Library
	rules []Rule
}

// New returns a rewriter using DefaultRules. A nil library means pattern.Default.
func New(lib *pattern.Library) *Rewriter {
	if lib == nil {
		lib = pattern.Default
	}
	return &Rewriter{lib: lib, rules: DefaultRules}
}

// Rewrite decides a single tagged line.
func (r *Rewriter) Rewrite(l Line) Decision {
	for _, rule := range r.rules {
		if !rule.Match(r.lib, l) {
			continue
		}
		out := rule.Apply(r.lib, l.Text)
		return Decision{Text: out, Replaced: out != l.Text, Rule: rule.Name}
	}
	return Decision{Text: l.Text, Rule: RuleNoMatch}
}

// RewriteString rewrites a line that is known to be outside any plugins block.
func (r *Rewriter) RewriteString(text string) Decision {
	return r.Rewrite(Line{Text: text})
}

// RewriteLines tags the lines of one file and rewrites each of them. The returned slice
// has the same length and order as lines.
func (r *Rewriter) RewriteLines(lines []string) ([]string, []Change) {
	out := make([]string, len(lines))
	var changes []Change
	for _, l := range TagPluginsBlocks(lines) {
		d := r.Rewrite(l)
		out[l.Index] = d.Text
		if d.Replaced {
			slog.Debug("Line rewritten.", "line", l.Index+1, "rule", d.Rule)
			changes = append(changes, Change{Index: l.Index, Rule: d.Rule, Before: l.Text, After: d.Text})
		}
	}
	return out, changes
}
