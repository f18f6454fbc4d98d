// Package extract converts uploaded files into document content trees.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"aari-docs/internal/content"
)

const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
	MimeHTML     = "text/html"
)

// ErrUnsupported is returned for file types that cannot be imported.
var ErrUnsupported = errors.New("unsupported file type")

// ErrEmpty is returned when a file yields no text.
var ErrEmpty = errors.New("no text found")

// ToDoc converts an uploaded payload into a content tree. mimeType may be
// empty or generic; the file name and payload are used to narrow it down.
func ToDoc(ctx context.Context, data []byte, mimeType string, fileName string) (content.Doc, error) {
	if err := ctx.Err(); err != nil {
		return content.Doc{}, err
	}
	normalized := NormalizeMimeType(mimeType, fileName, data)

	var (
		doc content.Doc
		err error
	)
	switch normalized {
	case MimePDF:
		var text string
		text, err = extractPDF(data)
		doc = content.FromPlainText(text)
	case MimeDOCX:
		doc, err = extractDOCX(data)
	case MimeHTML:
		doc = content.FromHTML(string(data))
	case MimeText, MimeMarkdown:
		if !utf8.Valid(data) {
			return content.Doc{}, fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupported)
		}
		if normalized == MimeMarkdown {
			doc, err = fromMarkdown(data)
		} else {
			doc = content.FromPlainText(string(data))
		}
	default:
		return content.Doc{}, fmt.Errorf("%w: %s", ErrUnsupported, normalized)
	}
	if err != nil {
		return content.Doc{}, fmt.Errorf("extract %s: %w", normalized, err)
	}
	if doc.IsEmpty() {
		return content.Doc{}, ErrEmpty
	}
	return doc, nil
}

// NormalizeMimeType resolves the effective type of an upload.
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "", "application/octet-stream", "application/zip":
	default:
		return clean
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".md", ".markdown":
		return MimeMarkdown
	case ".txt":
		return MimeText
	case ".html", ".htm":
		return MimeHTML
	}

	if clean == "application/zip" {
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		return clean
	}
	if len(data) == 0 {
		return clean
	}
	return strings.Split(http.DetectContentType(data), ";")[0]
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (content.Doc, error) {
	if len(data) == 0 {
		return content.Doc{}, errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return content.Doc{}, err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return content.Doc{}, errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return content.Doc{}, err
	}
	defer rc.Close()

	return docxParagraphs(rc)
}

// docxParagraphs walks WordprocessingML, turning each w:p into a paragraph and
// HeadingN styles into headings.
func docxParagraphs(r io.Reader) (content.Doc, error) {
	decoder := xml.NewDecoder(r)
	doc := content.Empty()
	var (
		text    strings.Builder
		inPara  bool
		heading int
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return content.Doc{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				heading = 0
				text.Reset()
			case "pStyle":
				heading = headingFromStyle(xmlAttr(t, "val"))
			case "tab":
				text.WriteString("\t")
			case "br":
				text.WriteString(" ")
			}
		case xml.CharData:
			if inPara {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local != "p" {
				continue
			}
			inPara = false
			line := strings.TrimSpace(text.String())
			if line == "" {
				continue
			}
			if heading > 0 {
				doc.Content = append(doc.Content, content.Heading(heading, line))
			} else {
				doc.Content = append(doc.Content, content.Paragraph(line))
			}
		}
	}
	return doc, nil
}

func headingFromStyle(style string) int {
	style = strings.ToLower(style)
	if style == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 {
		return 0
	}
	if level > 6 {
		level = 6
	}
	return level
}

func xmlAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// fromMarkdown renders CommonMark (with GitHub extensions) to HTML and reads
// the result back as a content tree. Raw HTML in the source is dropped.
func fromMarkdown(data []byte) (content.Doc, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(data, &buf); err != nil {
		return content.Doc{}, err
	}
	return content.FromHTML(buf.String()), nil
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch strings.ReplaceAll(f.Name, "\\", "/") {
		case "word/document.xml":
			return MimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}
