package search

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"aari-docs/internal/comments"
	"aari-docs/internal/content"
	"aari-docs/internal/documents"
)

// DocumentLister lists every document.
type DocumentLister interface {
	List(ctx context.Context) ([]documents.Document, error)
}

// CommentLister lists a document's comment threads.
type CommentLister interface {
	ListByDocument(ctx context.Context, documentID string, status comments.Status) ([]comments.Comment, error)
}

// Scanner searches by reading records straight from the repositories. It is
// the fallback when no search server is configured or reachable.
type Scanner struct {
	Documents DocumentLister
	Comments  CommentLister
}

// Healthy is always true; a scan only fails when storage does.
func (s *Scanner) Healthy() bool {
	return true
}

// Search does a case-insensitive substring match on every term of the query.
// Documents rank by title hits first, then recency; comments keep list order.
func (s *Scanner) Search(ctx context.Context, q Query) ([]Result, int, error) {
	terms := strings.Fields(strings.ToLower(q.Text))
	if len(terms) == 0 {
		return nil, 0, nil
	}
	docs, err := s.Documents.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	type scored struct {
		result Result
		score  int
	}
	var docHits []scored
	var commentHits []Result
	for _, doc := range docs {
		body := content.PlainText(doc.Content)
		if q.wants(ResultDocument) {
			titleHit := containsAll(doc.Title, terms)
			if titleHit || containsAll(doc.Title+"\n"+body, terms) {
				score := 0
				if titleHit {
					score = 1
				}
				docHits = append(docHits, scored{
					result: Result{
						Type:       ResultDocument,
						ID:         doc.ID,
						Title:      doc.Title,
						Snippet:    excerpt(body, terms[0]),
						DocumentID: doc.ID,
					},
					score: score,
				})
			}
		}
		if !q.wants(ResultComment) || s.Comments == nil {
			continue
		}
		threads, err := s.Comments.ListByDocument(ctx, doc.ID, comments.StatusAll)
		if err != nil {
			return nil, 0, err
		}
		for _, c := range threads {
			record := CommentRecordFrom(c)
			if !containsAll(record.HighlightedText+"\n"+record.Body, terms) {
				continue
			}
			commentHits = append(commentHits, Result{
				Type:       ResultComment,
				ID:         c.ID,
				Title:      c.HighlightedText,
				Snippet:    excerpt(record.Body, terms[0]),
				DocumentID: c.DocumentID,
				Resolved:   c.IsResolved,
			})
		}
	}

	sort.SliceStable(docHits, func(i, j int) bool { return docHits[i].score > docHits[j].score })

	limit := q.limit()
	results := make([]Result, 0)
	for i, h := range docHits {
		if i == limit {
			break
		}
		results = append(results, h.result)
	}
	if len(commentHits) > limit {
		results = append(results, commentHits[:limit]...)
	} else {
		results = append(results, commentHits...)
	}
	return results, len(docHits) + len(commentHits), nil
}

func containsAll(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if !strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

const snippetRunes = 160

// excerpt returns a window of text around the first occurrence of term.
func excerpt(text, term string) string {
	idx := strings.Index(strings.ToLower(text), term)
	if idx < 0 {
		return snippet(text)
	}
	start := utf8.RuneCountInString(text[:idx]) - snippetRunes/4
	if start < 0 {
		start = 0
	}
	runes := []rune(text)
	end := start + snippetRunes
	if end > len(runes) {
		end = len(runes)
	}
	out := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}

func snippet(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= snippetRunes {
		return string(runes)
	}
	return string(runes[:snippetRunes]) + "…"
}
