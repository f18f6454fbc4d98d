package content

import (
	"strings"
	"unicode/utf8"
)

// PlainText flattens the tree: text of each block, blocks joined by newlines.
// Anchor offsets are rune positions in this string.
func PlainText(d Doc) string {
	blocks := make([]string, 0, len(d.Content))
	for _, n := range d.Content {
		blocks = appendBlocks(blocks, n)
	}
	return strings.Join(blocks, "\n")
}

func appendBlocks(blocks []string, n Node) []string {
	if isTextBlock(n) {
		return append(blocks, inlineText(n.Content))
	}
	for _, child := range n.Content {
		blocks = appendBlocks(blocks, child)
	}
	return blocks
}

// isTextBlock reports whether n holds inline content directly.
func isTextBlock(n Node) bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, "codeBlock":
		return true
	}
	for _, child := range n.Content {
		if child.Type == TypeText || child.Type == TypeHardBreak {
			return true
		}
	}
	return false
}

func inlineText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case TypeText:
			b.WriteString(n.Text)
		case TypeHardBreak:
			b.WriteString(" ")
		default:
			b.WriteString(inlineText(n.Content))
		}
	}
	return b.String()
}

// Len is the rune length of the flattened text.
func Len(d Doc) int {
	return utf8.RuneCountInString(PlainText(d))
}

// FromPlainText builds a document with one paragraph per non-blank line.
func FromPlainText(s string) Doc {
	doc := Empty()
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Content = append(doc.Content, Paragraph(line))
	}
	return doc
}
