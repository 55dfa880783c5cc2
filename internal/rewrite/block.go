// internal/rewrite/block.go
package rewrite

import (
	"strings"

	"github.com/gagin/versionmask/internal/pattern"
)

// Line is one line of a build file tagged with its plugins-block state.
type Line struct {
	Index     int
	Text      string
	InPlugins bool
}

type blockState int

const (
	outside blockState = iota
	inside
)

// step advances the block state machine by one line. The opening and the closing line
// are structural and are reported as outside.
func (s blockState) step(text string) (next blockState, inPlugins bool) {
	switch {
	case s == outside && strings.Contains(pattern.CollapseWhitespace(text), pattern.PluginsOpen):
		return inside, false
	case s == inside && strings.Contains(text, pattern.PluginsClose):
		return outside, false
	case s == inside:
		return inside, true
	default:
		return outside, false
	}
}

// TagPluginsBlocks folds the block state machine over the lines of one file. Nested
// braces are not tracked: the first "}" seen inside a block closes it.
func TagPluginsBlocks(lines []string) []Line {
	tagged := make([]Line, len(lines))
	state := outside
	for i, text := range lines {
		var in bool
		state, in = state.step(text)
		tagged[i] = Line{Index: i, Text: text, InPlugins: in}
	}
	return tagged
}
