package content

import (
	"fmt"
	stdhtml "html"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML renders the tree as HTML.
func ToHTML(d Doc) string {
	var b strings.Builder
	for _, n := range d.Content {
		renderNode(&b, n)
	}
	return b.String()
}

func renderNode(b *strings.Builder, n Node) {
	switch n.Type {
	case TypeParagraph:
		b.WriteString("<p>")
		renderChildren(b, n.Content)
		b.WriteString("</p>\n")
	case TypeHeading:
		level := HeadingLevel(n)
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		renderChildren(b, n.Content)
		fmt.Fprintf(b, "</h%d>\n", level)
	case "bulletList":
		b.WriteString("<ul>\n")
		renderChildren(b, n.Content)
		b.WriteString("</ul>\n")
	case "orderedList":
		b.WriteString("<ol>\n")
		renderChildren(b, n.Content)
		b.WriteString("</ol>\n")
	case "listItem":
		b.WriteString("<li>")
		renderChildren(b, n.Content)
		b.WriteString("</li>\n")
	case "blockquote":
		b.WriteString("<blockquote>\n")
		renderChildren(b, n.Content)
		b.WriteString("</blockquote>\n")
	case "codeBlock":
		b.WriteString("<pre><code>")
		b.WriteString(stdhtml.EscapeString(inlineText(n.Content)))
		b.WriteString("</code></pre>\n")
	case "horizontalRule":
		b.WriteString("<hr>\n")
	case TypeHardBreak:
		b.WriteString("<br>")
	case TypeText:
		b.WriteString(renderText(n.Text, n.Marks))
	default:
		renderChildren(b, n.Content)
	}
}

func renderChildren(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		renderNode(b, n)
	}
}

func renderText(text string, marks []Mark) string {
	if text == "" {
		return ""
	}
	out := stdhtml.EscapeString(text)
	for i := len(marks) - 1; i >= 0; i-- {
		switch marks[i].Type {
		case "bold":
			out = "<strong>" + out + "</strong>"
		case "italic":
			out = "<em>" + out + "</em>"
		case "underline":
			out = "<u>" + out + "</u>"
		case "strike":
			out = "<s>" + out + "</s>"
		case "code":
			out = "<code>" + out + "</code>"
		case "link":
			href, _ := marks[i].Attrs["href"].(string)
			out = fmt.Sprintf(`<a href="%s">%s</a>`, stdhtml.EscapeString(href), out)
		}
	}
	return out
}

var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Article:    true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

var markTags = map[atom.Atom]string{
	atom.Strong: "bold",
	atom.B:      "bold",
	atom.Em:     "italic",
	atom.I:      "italic",
	atom.U:      "underline",
	atom.S:      "strike",
	atom.Del:    "strike",
	atom.Code:   "code",
}

// FromHTML converts editor HTML into a document tree. Headings keep their
// level, other blocks become paragraphs, and inline formatting becomes marks.
func FromHTML(s string) Doc {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return FromPlainText(s)
	}
	b := &htmlBuilder{doc: Empty()}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	b.walk(body)
	b.flush()
	return b.doc
}

type htmlBuilder struct {
	doc     Doc
	pending []Node
}

func (b *htmlBuilder) walk(parent *html.Node) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			b.pending = append(b.pending, inlineChild(c, nil)...)
			continue
		}
		if level, ok := headingLevels[c.DataAtom]; ok {
			b.flush()
			h := Heading(level, "")
			h.Content = trimEdges(inlineNodes(c, nil))
			b.doc.Content = append(b.doc.Content, h)
			continue
		}
		switch {
		case c.DataAtom == atom.Script || c.DataAtom == atom.Style:
		case blockTags[c.DataAtom] && hasBlockChild(c):
			b.flush()
			b.walk(c)
			b.flush()
		case blockTags[c.DataAtom]:
			b.flush()
			b.doc.Content = append(b.doc.Content, Node{Type: TypeParagraph, Content: trimEdges(inlineNodes(c, nil))})
		default:
			b.pending = append(b.pending, inlineChild(c, nil)...)
		}
	}
}

func (b *htmlBuilder) flush() {
	if len(b.pending) == 0 {
		return
	}
	if strings.TrimSpace(inlineText(b.pending)) != "" {
		b.doc.Content = append(b.doc.Content, Node{Type: TypeParagraph, Content: trimEdges(b.pending)})
	}
	b.pending = nil
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if blockTags[c.DataAtom] {
			return true
		}
		if _, ok := headingLevels[c.DataAtom]; ok {
			return true
		}
	}
	return false
}

// inlineNodes collects the inline children of n as text nodes carrying marks.
func inlineNodes(n *html.Node, marks []Mark) []Node {
	var out []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, inlineChild(c, marks)...)
	}
	return out
}

func inlineChild(c *html.Node, marks []Mark) []Node {
	switch c.Type {
	case html.TextNode:
		return textNode(c.Data, marks)
	case html.ElementNode:
		if c.DataAtom == atom.Br {
			return []Node{{Type: TypeHardBreak}}
		}
		if c.DataAtom == atom.Script || c.DataAtom == atom.Style {
			return nil
		}
		childMarks := marks
		if mark, ok := markTags[c.DataAtom]; ok {
			childMarks = withMark(marks, Mark{Type: mark})
		} else if c.DataAtom == atom.A {
			childMarks = withMark(marks, Mark{Type: "link", Attrs: map[string]any{"href": attr(c, "href")}})
		}
		return inlineNodes(c, childMarks)
	}
	return nil
}

// trimEdges strips leading whitespace from the first text node and trailing
// whitespace from the last, dropping nodes left empty.
func trimEdges(nodes []Node) []Node {
	for len(nodes) > 0 && nodes[0].Type == TypeText {
		nodes[0].Text = strings.TrimLeft(nodes[0].Text, " ")
		if nodes[0].Text != "" {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Type == TypeText {
		last := len(nodes) - 1
		nodes[last].Text = strings.TrimRight(nodes[last].Text, " ")
		if nodes[last].Text != "" {
			break
		}
		nodes = nodes[:last]
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes
}

func textNode(data string, marks []Mark) []Node {
	text := collapseSpace(data)
	if text == "" {
		return nil
	}
	return []Node{{Type: TypeText, Text: text, Marks: marks}}
}

func withMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
