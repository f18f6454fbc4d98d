package search

import (
	"context"
	"strings"

	"aari-docs/internal/comments"
	"aari-docs/internal/content"
	"aari-docs/internal/documents"
	"aari-docs/internal/shared/telemetry"
)

// Service tries Meilisearch first and falls back to scanning the repositories.
// It also keeps the index current as documents and comments change.
type Service struct {
	meili *Meili
	scan  *Scanner
}

// NewService creates a search service. meili may be nil when Meilisearch is not configured.
func NewService(meili *Meili, scan *Scanner) *Service {
	return &Service{meili: meili, scan: scan}
}

// Search runs q and always returns a response; failures degrade to empty results.
func (s *Service) Search(ctx context.Context, q Query) Response {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Response{Results: []Result{}, Query: q.Text}
	}
	if s.indexing() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		telemetry.Warn("search.meili_failed", map[string]any{"error": err})
	}
	if s.scan == nil {
		return Response{Results: []Result{}, Query: q.Text}
	}

	results, total, err := s.scan.Search(ctx, q)
	if err != nil {
		telemetry.Error("search.scan_failed", map[string]any{"error": err})
		return Response{Results: []Result{}, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

func (s *Service) indexing() bool {
	return s != nil && s.meili != nil && s.meili.Healthy()
}

// IndexDocument pushes a document to the index.
func (s *Service) IndexDocument(ctx context.Context, doc documents.Document) error {
	if !s.indexing() {
		return nil
	}
	return s.meili.IndexDocument(DocumentRecordFrom(doc))
}

// RemoveDocument drops a document and its threads from the index.
func (s *Service) RemoveDocument(ctx context.Context, documentID string) error {
	if !s.indexing() {
		return nil
	}
	return s.meili.DeleteDocument(documentID)
}

// IndexComment pushes a comment thread to the index.
func (s *Service) IndexComment(ctx context.Context, c comments.Comment) error {
	if !s.indexing() {
		return nil
	}
	return s.meili.IndexComment(CommentRecordFrom(c))
}

// RemoveComment drops a comment thread from the index.
func (s *Service) RemoveComment(ctx context.Context, commentID string) error {
	if !s.indexing() {
		return nil
	}
	return s.meili.DeleteComment(commentID)
}

// Reindex pushes every document and thread to Meilisearch. Used on startup.
func (s *Service) Reindex(ctx context.Context) error {
	if !s.indexing() || s.scan == nil {
		return nil
	}
	docs, err := s.scan.Documents.List(ctx)
	if err != nil {
		return err
	}
	docRecords := make([]DocumentRecord, 0, len(docs))
	var commentRecords []CommentRecord
	for _, doc := range docs {
		docRecords = append(docRecords, DocumentRecordFrom(doc))
		if s.scan.Comments == nil {
			continue
		}
		threads, err := s.scan.Comments.ListByDocument(ctx, doc.ID, comments.StatusAll)
		if err != nil {
			return err
		}
		for _, c := range threads {
			commentRecords = append(commentRecords, CommentRecordFrom(c))
		}
	}
	if err := s.meili.IndexDocuments(docRecords); err != nil {
		return err
	}
	return s.meili.IndexComments(commentRecords)
}

// DocumentRecordFrom flattens a document into its index record.
func DocumentRecordFrom(doc documents.Document) DocumentRecord {
	return DocumentRecord{
		ID:    doc.ID,
		Title: doc.Title,
		Body:  content.PlainText(doc.Content),
	}
}

// CommentRecordFrom flattens a thread into its index record.
func CommentRecordFrom(c comments.Comment) CommentRecord {
	parts := make([]string, 0, len(c.Replies)+1)
	parts = append(parts, c.Content)
	for _, r := range c.Replies {
		parts = append(parts, r.Content)
	}
	status := string(comments.StatusOpen)
	if c.IsResolved {
		status = string(comments.StatusResolved)
	}
	return CommentRecord{
		ID:              c.ID,
		DocumentID:      c.DocumentID,
		HighlightedText: c.HighlightedText,
		Body:            strings.Join(parts, "\n"),
		Status:          status,
	}
}

var (
	_ documents.Indexer = (*Service)(nil)
	_ comments.Indexer  = (*Service)(nil)
)
