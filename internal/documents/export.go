package documents

import (
	"html"
	"strings"

	"aari-docs/internal/content"
)

func renderPage(doc Document) string {
	var b strings.Builder
	title := html.EscapeString(doc.Title)
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(title)
	b.WriteString("</title>\n</head>\n<body>\n<h1>")
	b.WriteString(title)
	b.WriteString("</h1>\n")
	b.WriteString(content.ToHTML(doc.Content))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// exportFileName builds a download name from the title.
func exportFileName(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	name := b.String()
	if name == "" {
		name = "document"
	}
	return name + ".html"
}
