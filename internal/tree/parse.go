package tree

import (
	"regexp"
	"strings"
	"unicode"
)

// space matches every rune isSpace accepts. RE2's \s is ASCII only.
const space = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

var (
	linePattern       = regexp.MustCompile("^([|" + space + "`\\-]+)(.*)")
	annotationPattern = regexp.MustCompile(`^\*by \p{Nd}+\*[` + space + `]*`)
)

// isSpace is unicode.IsSpace widened to the separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f) || unicode.Is(unicode.Z, r)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// rootLevel sits below any level a line can produce, so the root is never
// popped off the stack.
const rootLevel = -1

// Option configures Parse.
type Option func(*parser)

type parser struct {
	mode  LevelMode
	width int
}

// WithLevelMode sets how prefixes are turned into levels.
func WithLevelMode(mode LevelMode) Option {
	return func(p *parser) {
		if mode != "" {
			p.mode = mode
		}
	}
}

// WithIndentWidth sets the generation width used by LevelColumn.
func WithIndentWidth(width int) Option {
	return func(p *parser) {
		if width > 0 {
			p.width = width
		}
	}
}

type frame struct {
	node  *Node
	level int
}

// Parse builds a tree from ASCII text. It returns nil when the text holds no
// non-blank line. Lines without a connector prefix are skipped.
func Parse(text string, opts ...Option) *Node {
	p := &parser{mode: LevelCount, width: DefaultIndentWidth}
	for _, opt := range opts {
		opt(p)
	}

	trimmed := trimSpace(text)
	if trimmed == "" {
		return nil
	}

	lines := strings.Split(trimmed, "\n")
	root := &Node{Name: trimSpace(lines[0])}
	stack := []frame{{node: root, level: rootLevel}}

	for _, line := range lines[1:] {
		if trimSpace(line) == "" {
			continue
		}

		prefix, label, ok := splitLine(line)
		if !ok {
			continue
		}

		level := p.level(prefix)
		node := &Node{Name: CleanLabel(label)}

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, frame{node: node, level: level})
	}

	prune(root)
	return root
}

// CleanLabel trims a label and drops a leading "*by N*" annotation.
func CleanLabel(label string) string {
	return annotationPattern.ReplaceAllString(trimSpace(label), "")
}

func splitLine(line string) (prefix, label string, ok bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func (p *parser) level(prefix string) int {
	if p.mode == LevelColumn {
		return columnLevel(prefix, p.width)
	}
	return countLevel(prefix)
}
