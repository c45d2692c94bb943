package tree

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LevelMode selects how a connector prefix is turned into a nesting level.
type LevelMode string

const (
	// LevelCount adds up the '|' and '`' characters in the prefix. Prefixes
	// drawn differently but holding the same number of connectors land on
	// the same level.
	LevelCount LevelMode = "count"
	// LevelColumn uses the column of the last connector divided by the
	// indent width.
	LevelColumn LevelMode = "column"
)

// DefaultIndentWidth is the column width of one generation in tree(1)-style
// drawings ("|   ").
const DefaultIndentWidth = 4

// ParseLevelMode converts a string to a LevelMode.
// Empty string defaults to LevelCount.
func ParseLevelMode(s string) (LevelMode, error) {
	switch LevelMode(strings.ToLower(strings.TrimSpace(s))) {
	case LevelCount, "":
		return LevelCount, nil
	case LevelColumn:
		return LevelColumn, nil
	default:
		return "", fmt.Errorf("invalid level mode %q (expected count|column)", s)
	}
}

func countLevel(prefix string) int {
	return strings.Count(prefix, "|") + strings.Count(prefix, "`")
}

func columnLevel(prefix string, width int) int {
	if width <= 0 {
		width = DefaultIndentWidth
	}
	idx := strings.LastIndexAny(prefix, "|`")
	if idx < 0 {
		return 0
	}
	// Columns count runes, so a no-break space is one column wide.
	return utf8.RuneCountInString(prefix[:idx])/width + 1
}
