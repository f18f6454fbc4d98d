package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTree = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Intro"}]},
	{"type":"paragraph","content":[{"type":"text","text":"Hello "},{"type":"text","text":"world","marks":[{"type":"bold"}]}]}
]}`

func TestParseTree(t *testing.T) {
	doc, err := Parse([]byte(sampleTree))
	require.NoError(t, err)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, TypeHeading, doc.Content[0].Type)
	assert.Equal(t, 2, HeadingLevel(doc.Content[0]))
	assert.Equal(t, "Intro\nHello world", PlainText(doc))
}

func TestParseEmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		doc, err := Parse([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, Empty(), doc)
	}
}

func TestParseRejectsWrongRoot(t *testing.T) {
	_, err := Parse([]byte(`{"type":"paragraph"}`))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse([]byte(`42`))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseLegacyStrings(t *testing.T) {
	doc, err := Parse([]byte(`"<h1>Title</h1><p>Body <em>text</em></p>"`))
	require.NoError(t, err)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, TypeHeading, doc.Content[0].Type)
	assert.Equal(t, 1, HeadingLevel(doc.Content[0]))
	assert.Equal(t, "Title\nBody text", PlainText(doc))
	last := doc.Content[1].Content
	require.Len(t, last, 2)
	assert.Equal(t, "italic", last[1].Marks[0].Type)

	doc, err = Parse([]byte(`"first line\n\nsecond line"`))
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", PlainText(doc))

	serialized, err := json.Marshal(sampleTree)
	require.NoError(t, err)
	doc, err = Parse(serialized)
	require.NoError(t, err)
	assert.Equal(t, "Intro\nHello world", PlainText(doc))
}

func TestFromHTMLLists(t *testing.T) {
	doc := FromHTML("<ul>\n<li>One</li>\n<li>Two<br>lines</li>\n</ul>\n<p>  tail  </p>")
	assert.Equal(t, "One\nTwo lines\ntail", PlainText(doc))
}

func TestMarshalEmptyDoc(t *testing.T) {
	b, err := json.Marshal(Doc{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[]}`, string(b))
}

func TestScanAndValue(t *testing.T) {
	var doc Doc
	require.NoError(t, doc.Scan([]byte(sampleTree)))
	assert.Equal(t, "Intro\nHello world", PlainText(doc))

	v, err := doc.Value()
	require.NoError(t, err)
	var back Doc
	require.NoError(t, back.Scan(v))
	assert.Equal(t, PlainText(doc), PlainText(back))

	require.NoError(t, back.Scan(nil))
	assert.True(t, back.IsEmpty())

	require.Error(t, back.Scan(12))
}

func TestToHTML(t *testing.T) {
	doc, err := Parse([]byte(sampleTree))
	require.NoError(t, err)
	assert.Equal(t, "<h2>Intro</h2>\n<p>Hello <strong>world</strong></p>\n", ToHTML(doc))

	escaped := Doc{Type: TypeDoc, Content: []Node{Paragraph("a < b & c")}}
	assert.Equal(t, "<p>a &lt; b &amp; c</p>\n", ToHTML(escaped))
}

func TestFromPlainTextSkipsBlankLines(t *testing.T) {
	doc := FromPlainText("one\r\n\r\n  two  \n")
	require.Len(t, doc.Content, 2)
	assert.Equal(t, "one\ntwo", PlainText(doc))
	assert.True(t, FromPlainText("   ").IsEmpty())
}
