// Package anchors maps comment anchor offsets onto the current document text.
package anchors

import (
	"sort"
	"unicode/utf8"

	"aari-docs/internal/content"
)

// Anchor is a comment's captured selection.
type Anchor struct {
	CommentID       string
	From            int
	To              int
	HighlightedText string
	Resolved        bool
}

// Highlight is a renderable mark over the flattened text in [From, To).
type Highlight struct {
	CommentID string `json:"commentId"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Text      string `json:"text"`
	// Drifted is set when the text under the range no longer matches the snapshot
	// taken when the comment was created.
	Drifted bool `json:"drifted"`
}

// Compute returns highlights for open anchors against doc. Offsets are clamped
// into [0, len(text)] and ranges that end up empty are skipped. Offsets are
// never remapped.
func Compute(doc content.Doc, list []Anchor) []Highlight {
	return ComputeText(content.PlainText(doc), list)
}

// ComputeText is Compute over already flattened text.
func ComputeText(text string, list []Anchor) []Highlight {
	runes := []rune(text)
	size := len(runes)
	out := make([]Highlight, 0, len(list))
	for _, a := range list {
		if a.Resolved {
			continue
		}
		from, to := Clamp(a.From, a.To, size)
		if from == to {
			continue
		}
		covered := string(runes[from:to])
		out = append(out, Highlight{
			CommentID: a.CommentID,
			From:      from,
			To:        to,
			Text:      covered,
			Drifted:   a.HighlightedText != "" && covered != a.HighlightedText,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Clamp bounds [from, to) into [0, size]. An inverted range collapses to empty.
func Clamp(from, to, size int) (int, int) {
	if size < 0 {
		size = 0
	}
	from = bound(from, size)
	to = bound(to, size)
	if to < from {
		to = from
	}
	return from, to
}

func bound(v, size int) int {
	if v < 0 {
		return 0
	}
	if v > size {
		return size
	}
	return v
}

// DefaultTo is the end offset used when a client omits selectionTo.
func DefaultTo(from int, highlighted string) int {
	return from + utf8.RuneCountInString(highlighted)
}

// Layer holds the highlights currently applied to an editor view. Every change
// to the comment set or the document clears and reapplies all marks.
type Layer struct {
	highlights []Highlight
	byComment  map[string]Highlight
}

// Reset recomputes the layer from scratch.
func (l *Layer) Reset(doc content.Doc, list []Anchor) {
	l.highlights = Compute(doc, list)
	l.byComment = make(map[string]Highlight, len(l.highlights))
	for _, h := range l.highlights {
		l.byComment[h.CommentID] = h
	}
}

// Highlights returns the applied marks ordered by position.
func (l *Layer) Highlights() []Highlight {
	return append([]Highlight(nil), l.highlights...)
}

// For returns the mark for a comment, if it is currently rendered.
func (l *Layer) For(commentID string) (Highlight, bool) {
	h, ok := l.byComment[commentID]
	return h, ok
}

// At returns the comment IDs whose marks cover offset pos.
func (l *Layer) At(pos int) []string {
	var ids []string
	for _, h := range l.highlights {
		if pos >= h.From && pos < h.To {
			ids = append(ids, h.CommentID)
		}
	}
	return ids
}
