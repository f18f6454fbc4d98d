// Package content models the persisted rich-text document tree and converts
// older string-shaped content into it.
package content

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Node types understood by the editor.
const (
	TypeDoc       = "doc"
	TypeHeading   = "heading"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeHardBreak = "hardBreak"
)

// ErrInvalid is returned when a payload is neither a document tree nor a legacy string.
var ErrInvalid = errors.New("invalid document content")

// Mark is an inline formatting mark on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is a block or inline node of the tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Doc is the root of a document tree: {"type":"doc","content":[...]}.
type Doc struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Empty returns a document with no blocks.
func Empty() Doc {
	return Doc{Type: TypeDoc, Content: []Node{}}
}

// IsEmpty reports whether the document has no text.
func (d Doc) IsEmpty() bool {
	return Len(d) == 0
}

// MarshalJSON always emits a content array, never null.
func (d Doc) MarshalJSON() ([]byte, error) {
	type alias Doc
	out := alias(d)
	if out.Type == "" {
		out.Type = TypeDoc
	}
	if out.Content == nil {
		out.Content = []Node{}
	}
	return json.Marshal(out)
}

// Parse decodes stored or submitted content. A JSON object must be a doc tree;
// a JSON string is treated as legacy content and converted; null or empty input
// yields an empty document.
func Parse(raw []byte) (Doc, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Empty(), nil
	}

	switch trimmed[0] {
	case '{':
		return parseTree(trimmed)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Doc{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return FromLegacyString(s), nil
	default:
		return Doc{}, ErrInvalid
	}
}

func parseTree(raw []byte) (Doc, error) {
	var doc Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Doc{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc.Type != TypeDoc {
		return Doc{}, fmt.Errorf("%w: root type %q", ErrInvalid, doc.Type)
	}
	if doc.Content == nil {
		doc.Content = []Node{}
	}
	return doc, nil
}

// FromLegacyString converts string-shaped content. Serialized trees are parsed,
// markup goes through the HTML converter, and anything else is plain text.
func FromLegacyString(s string) Doc {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	if strings.HasPrefix(trimmed, "{") {
		if doc, err := parseTree([]byte(trimmed)); err == nil {
			return doc
		}
	}
	if strings.HasPrefix(trimmed, "<") {
		return FromHTML(trimmed)
	}
	return FromPlainText(trimmed)
}

// Value stores the document as JSON.
func (d Doc) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan reads a document from a JSON column, converting legacy strings.
func (d *Doc) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = Empty()
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("content: unsupported scan type %T", src)
	}
	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// Paragraph builds a paragraph block holding a single text node.
func Paragraph(text string) Node {
	n := Node{Type: TypeParagraph}
	if text != "" {
		n.Content = []Node{{Type: TypeText, Text: text}}
	}
	return n
}

// Heading builds a heading block of the given level.
func Heading(level int, text string) Node {
	if level < 1 {
		level = 1
	}
	n := Node{Type: TypeHeading, Attrs: map[string]any{"level": level}}
	if text != "" {
		n.Content = []Node{{Type: TypeText, Text: text}}
	}
	return n
}

// HeadingLevel reads the level attribute, defaulting to 1.
func HeadingLevel(n Node) int {
	switch v := n.Attrs["level"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return 1
}
